package engine

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"git.lost.host/meutraa/lanes/internal/game"
	"git.lost.host/meutraa/lanes/internal/score"
	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("engine")

var ErrSessionActive = errors.New("session in progress")

const (
	UpdateInterval = 16 * time.Millisecond
	ClockInterval  = time.Second
	BeatInterval   = 600 * time.Millisecond
	EffectDuration = 300 * time.Millisecond

	SessionLength = 60 // Seconds
)

type Phase uint8

const (
	Idle Phase = iota
	Playing
	Paused
)

func (p Phase) String() string {
	switch p {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "idle"
}

// BestScores receives the result of every finished session
type BestScores interface {
	Offer(d game.Difficulty, score int) (bool, error)
	Save(session score.Session) error
}

type Options struct {
	Seed     uint64 // Zero picks a random seed
	Scorer   score.Scorer
	Store    BestScores
	Listener Listener
}

// View is a consistent copy of the engine for the presentation layer
type View struct {
	Phase      Phase
	Difficulty game.Difficulty
	State      game.State
	Feedback   string
	Effects    [game.NLanes]game.Effect
	Remaining  int // Seconds left in the session
	Last       *Summary
}

type Engine struct {
	mu sync.Mutex

	scorer   score.Scorer
	store    BestScores
	listener Listener
	seeds    *rand.Rand

	phase      Phase
	difficulty game.Difficulty
	state      game.State
	sched      *Scheduler
	rng        *rand.Rand

	// Transient output, timed on the ui clock so it clears while paused
	uiNow         time.Duration
	feedback      string
	feedbackUntil time.Duration
	effects       [game.NLanes]game.Effect
	effectUntil   [game.NLanes]time.Duration

	// Session record
	seed     uint64
	inputs   []game.Input
	hits     int
	misses   int
	maxCombo int
	last     *Summary

	pending []Event
}

func New(opts Options) *Engine {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	scorer := opts.Scorer
	if nil == scorer {
		scorer = &score.DefaultScorer{}
	}
	return &Engine{
		scorer:     scorer,
		store:      opts.Store,
		listener:   opts.Listener,
		seeds:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		difficulty: game.Normal,
		state:      game.NewState(game.Normal),
	}
}

func (e *Engine) SetDifficulty(d game.Difficulty) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != Idle {
		return ErrSessionActive
	}
	e.difficulty = d
	e.state = game.NewState(d)
	return nil
}

func (e *Engine) Difficulty() game.Difficulty {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.difficulty
}

func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Start begins a session on the selected difficulty
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.phase != Idle {
		e.mu.Unlock()
		return ErrSessionActive
	}
	e.start(e.seeds.Uint64())
	e.mu.Unlock()
	return nil
}

func (e *Engine) start(seed uint64) {
	e.seed = seed
	e.rng = rand.New(rand.NewPCG(seed, seed))
	e.state = game.NewState(e.difficulty)
	e.state.Running = true
	e.phase = Playing
	e.inputs = []game.Input{}
	e.hits, e.misses, e.maxCombo = 0, 0, 0
	e.feedback = ""
	e.effects = [game.NLanes]game.Effect{}

	e.sched = &Scheduler{}
	e.sched.Every("update", UpdateInterval, e.update)
	e.sched.Every("spawn", e.difficulty.Profile().Interval, e.spawn)
	e.sched.Every("clock", ClockInterval, e.clock)
	e.sched.Every("beat", BeatInterval, e.beat)

	log.Infow("session started", "difficulty", e.difficulty.String(), "seed", seed)
}

func (e *Engine) TogglePause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case Playing:
		e.phase = Paused
	case Paused:
		e.phase = Playing
	}
	e.state.Running = e.phase == Playing
}

// Reset abandons the session without recording it
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if nil != e.sched {
		e.sched.Stop()
	}
	e.phase = Idle
	e.state = game.NewState(e.difficulty)
	e.feedback = ""
	e.effects = [game.NLanes]game.Effect{}
}

// Tick moves the engine forward by dt. Session triggers only run while playing.
func (e *Engine) Tick(dt time.Duration) {
	e.mu.Lock()
	e.uiNow += dt
	if e.phase == Playing && !e.sched.Stopped() {
		e.sched.Advance(dt)
	}
	e.expire()
	events := e.flush()
	e.mu.Unlock()

	e.dispatch(events)
}

// Press judges a press in lane. Ignored unless a session is playing.
func (e *Engine) Press(lane uint8) {
	e.mu.Lock()
	if e.phase != Playing || lane >= game.NLanes {
		e.mu.Unlock()
		return
	}

	input := game.Input{Lane: lane, Time: e.sched.Now()}
	e.inputs = append(e.inputs, input)

	var result score.Result
	e.state, result = e.scorer.ApplyInput(e.state, input)
	if result.Hit() {
		e.hits++
		if e.state.Combo > e.maxCombo {
			e.maxCombo = e.state.Combo
		}
		e.pending = append(e.pending, Event{Kind: EventHit, Lane: lane, Result: result})
	} else {
		e.misses++
		e.pending = append(e.pending, Event{Kind: EventMiss, Lane: lane, Result: result})
	}
	e.feedback = result.Feedback()
	e.feedbackUntil = e.uiNow + EffectDuration
	e.effects[lane] = result.Effect()
	e.effectUntil[lane] = e.uiNow + EffectDuration

	events := e.flush()
	e.mu.Unlock()

	e.dispatch(events)
}

func (e *Engine) Snapshot() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		Phase:      e.phase,
		Difficulty: e.difficulty,
		State:      e.state.Clone(),
		Feedback:   e.feedback,
		Effects:    e.effects,
		Remaining:  SessionLength - e.state.Elapsed,
		Last:       e.last,
	}
	if v.Remaining < 0 {
		v.Remaining = 0
	}
	return v
}

func (e *Engine) update(at time.Duration) {
	var missed int
	e.state, missed = game.Advance(e.state)
	if missed > 0 {
		e.misses += missed
		e.pending = append(e.pending, Event{Kind: EventDrop, Count: missed})
	}
}

func (e *Engine) spawn(at time.Duration) {
	e.state = game.Spawn(e.state, e.rng)
}

func (e *Engine) beat(at time.Duration) {
	e.pending = append(e.pending, Event{Kind: EventBeat})
}

func (e *Engine) clock(at time.Duration) {
	e.state.Elapsed++
	if e.state.Elapsed >= SessionLength {
		e.end()
	}
}

func (e *Engine) end() {
	e.sched.Stop()
	e.state.Running = false
	e.phase = Idle

	summary := &Summary{
		Session: score.Session{
			ID:         uuid.New(),
			Difficulty: e.difficulty,
			Seed:       e.seed,
			Score:      e.state.Score,
			MaxCombo:   e.maxCombo,
			Hits:       e.hits,
			Misses:     e.misses,
			Inputs:     e.inputs,
			EndedAt:    time.Now(),
		},
	}
	if nil != e.store {
		replaced, err := e.store.Offer(e.difficulty, e.state.Score)
		if nil != err {
			log.Errorw("unable to update best score", "err", err)
		}
		summary.NewBest = replaced
		if err := e.store.Save(summary.Session); nil != err {
			log.Errorw("unable to save session", "err", err)
		}
	}
	e.last = summary
	e.pending = append(e.pending, Event{Kind: EventEnd, Summary: summary})

	log.Infow("session ended",
		"difficulty", e.difficulty.String(),
		"score", e.state.Score,
		"hits", e.hits,
		"misses", e.misses,
		"best", summary.NewBest,
	)
}

func (e *Engine) expire() {
	if e.feedback != "" && e.uiNow >= e.feedbackUntil {
		e.feedback = ""
	}
	for i := range e.effects {
		if e.effects[i] != game.EffectNone && e.uiNow >= e.effectUntil[i] {
			e.effects[i] = game.EffectNone
		}
	}
}

func (e *Engine) flush() []Event {
	events := e.pending
	e.pending = nil
	return events
}

func (e *Engine) dispatch(events []Event) {
	if nil == e.listener {
		return
	}
	for _, ev := range events {
		e.listener(ev)
	}
}
