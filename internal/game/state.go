package game

import "math/rand/v2"

// State is everything the rhythm engine mutates during a session.
// Handlers take a State and return the next one, the notes slice is
// never shared between the two.
type State struct {
	Score      int
	Combo      int
	Elapsed    int // Whole seconds played
	Difficulty Difficulty
	Running    bool
	NextID     uint64 // Next id to mint, never reused within a session
	Notes      []Note // Live notes in spawn order
}

func NewState(d Difficulty) State {
	return State{Difficulty: d}
}

// Clone returns a copy that does not share the notes slice
func (s State) Clone() State {
	notes := make([]Note, len(s.Notes))
	copy(notes, s.Notes)
	s.Notes = notes
	return s
}

// Spawn picks one pattern of the difficulty at random and adds a note at
// the spawn position for every lane in it
func Spawn(s State, r *rand.Rand) State {
	patterns := s.Difficulty.Profile().Patterns
	pattern := patterns[r.IntN(len(patterns))]

	next := s.Clone()
	for i, lane := range pattern {
		next.Notes = append(next.Notes, Note{
			ID:       s.NextID + uint64(i),
			Lane:     lane,
			Position: SpawnPosition,
		})
	}
	next.NextID += uint64(len(pattern))
	return next
}

// Advance moves every live note by the difficulty speed. Notes that pass the
// end of travel without being hit are dropped and break the combo.
// Returns the next state and the number of notes missed.
func Advance(s State) (State, int) {
	speed := s.Difficulty.Profile().Speed

	next := s
	next.Notes = make([]Note, 0, len(s.Notes))
	missed := 0
	for _, note := range s.Notes {
		note.Position += speed
		if note.Position > EndPosition {
			if !note.Hit {
				missed++
			}
			continue
		}
		next.Notes = append(next.Notes, note)
	}
	if missed > 0 {
		next.Combo = 0
	}
	return next, missed
}

// Remove drops the note with the given id
func Remove(s State, id uint64) State {
	next := s
	next.Notes = make([]Note, 0, len(s.Notes))
	for _, note := range s.Notes {
		if note.ID != id {
			next.Notes = append(next.Notes, note)
		}
	}
	return next
}
