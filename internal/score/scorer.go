package score

import (
	"git.lost.host/meutraa/lanes/internal/game"
)

type Scorer interface {
	// Judge a lane press against the live notes
	ApplyInput(state game.State, input game.Input) (game.State, Result)

	Distance(note *game.Note) float64
}

// Result of a single lane press. Note is nil when nothing was in the window.
type Result struct {
	Lane      uint8
	Note      *game.Note
	Distance  float64
	Judgement game.Judgement
	Index     int // Index of Judgement in game.Judgements
	Points    int // Points added, including the combo bonus
}

func (r Result) Hit() bool {
	return r.Note != nil
}

func (r Result) Feedback() string {
	if !r.Hit() {
		return game.MissFeedback
	}
	return r.Judgement.Feedback
}

func (r Result) Effect() game.Effect {
	if !r.Hit() {
		return game.EffectMiss
	}
	return game.EffectHit
}
