package score

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"git.lost.host/meutraa/lanes/internal/game"
	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	_ "github.com/mattn/go-sqlite3"
)

var log = logging.Logger("score")

// Session is the record of one finished session
type Session struct {
	ID         uuid.UUID
	Difficulty game.Difficulty
	Seed       uint64
	Score      int
	MaxCombo   int
	Hits       int
	Misses     int
	Inputs     []game.Input
	EndedAt    time.Time
}

// Store keeps best scores and finished sessions in an in-memory database.
// Nothing outlives the process.
type Store struct {
	db *sql.DB
}

func Open() (*Store, error) {
	// Each store gets its own named in-memory database, shared between the
	// pool's connections
	dsn := fmt.Sprintf("file:lanes-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite3", dsn)
	if nil != err {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	initStatement := `
	create table if not exists best
	  (
		  difficulty text not null primary key,
		  score integer not null default 0
	  );
	create table if not exists sessions
	  (
		  id text not null primary key,
		  difficulty text not null,
		  seed integer,
		  score integer,
		  max_combo integer,
		  hits integer,
		  misses integer,
		  inputs blob,
		  ended_at datetime
	  );
	`
	if _, err := db.Exec(initStatement); nil != err {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	for _, d := range game.Difficulties {
		if _, err := db.Exec("insert or ignore into best(difficulty, score) values(?, 0)", d.String()); nil != err {
			db.Close()
			return nil, fmt.Errorf("seed best scores: %w", err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if nil == s.db {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Best(d game.Difficulty) (int, error) {
	var best int
	err := s.db.QueryRow("select score from best where difficulty = ?", d.String()).Scan(&best)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if nil != err {
		return 0, fmt.Errorf("load best score for %v: %w", d, err)
	}
	return best, nil
}

// BestScores returns the best score of every difficulty
func (s *Store) BestScores() (map[game.Difficulty]int, error) {
	scores := make(map[game.Difficulty]int, len(game.Difficulties))
	for _, d := range game.Difficulties {
		best, err := s.Best(d)
		if nil != err {
			return nil, err
		}
		scores[d] = best
	}
	return scores, nil
}

// Offer replaces the best score of the difficulty when score is strictly
// higher, and reports whether it did
func (s *Store) Offer(d game.Difficulty, score int) (bool, error) {
	res, err := s.db.Exec("update best set score = ? where difficulty = ? and score < ?", score, d.String(), score)
	if nil != err {
		return false, fmt.Errorf("update best score for %v: %w", d, err)
	}
	n, err := res.RowsAffected()
	if nil != err {
		return false, err
	}
	if n > 0 {
		log.Infow("new best score", "difficulty", d.String(), "score", score)
	}
	return n > 0, nil
}

func (s *Store) Save(session Session) error {
	data, err := json.Marshal(compactInputs(session.Inputs))
	if nil != err {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	_, err = s.db.Exec(
		"insert into sessions(id, difficulty, seed, score, max_combo, hits, misses, inputs, ended_at) values(?, ?, ?, ?, ?, ?, ?, ?, ?)",
		session.ID.String(), session.Difficulty.String(), int64(session.Seed),
		session.Score, session.MaxCombo, session.Hits, session.Misses, data, session.EndedAt,
	)
	if nil != err {
		return fmt.Errorf("save session %v: %w", session.ID, err)
	}
	return nil
}

// Load returns the sessions played on a difficulty, best score first
func (s *Store) Load(d game.Difficulty) ([]Session, error) {
	rows, err := s.db.Query(
		"select id, seed, score, max_combo, hits, misses, inputs, ended_at from sessions where difficulty = ? order by score desc, ended_at",
		d.String(),
	)
	if nil != err {
		return nil, fmt.Errorf("load sessions for %v: %w", d, err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var (
			id     string
			seed   int64
			inputs []byte
			ss     = Session{Difficulty: d}
		)
		if err := rows.Scan(&id, &seed, &ss.Score, &ss.MaxCombo, &ss.Hits, &ss.Misses, &inputs, &ss.EndedAt); nil != err {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		ss.ID, err = uuid.Parse(id)
		if nil != err {
			log.Warnw("skipping session with a bad id", "id", id, "err", err)
			continue
		}
		ss.Seed = uint64(seed)

		var compact []InputsCompact
		if err := json.Unmarshal(inputs, &compact); nil != err {
			log.Warnw("unable to unmarshal session inputs", "id", id, "err", err)
			continue
		}
		ss.Inputs = uncompactInputs(compact)
		sessions = append(sessions, ss)
	}
	return sessions, rows.Err()
}
