package score

import (
	"math"

	"git.lost.host/meutraa/lanes/internal/game"
)

type DefaultScorer struct{}

func (s *DefaultScorer) Distance(n *game.Note) float64 {
	return game.Distance(n.Position)
}

func (s *DefaultScorer) ApplyInput(state game.State, input game.Input) (game.State, Result) {
	var closestNote *game.Note
	distance := math.Inf(1)

	for i := range state.Notes {
		note := &state.Notes[i]
		if !note.Live() || note.Lane != input.Lane {
			continue
		}
		if !game.InHitWindow(note.Position) {
			continue
		}
		// Strictly closer only, so the earliest spawned note wins a tie
		d := s.Distance(note)
		if d < distance {
			distance = d
			closestNote = note
		}
	}

	if nil == closestNote {
		next := state
		next.Combo = 0
		return next, Result{Lane: input.Lane}
	}

	hit := *closestNote
	hit.Hit = true
	index, judgement := game.Judge(distance)
	points := judgement.Points + state.Combo*game.ComboBonus

	next := game.Remove(state, hit.ID)
	next.Score += points
	next.Combo++

	return next, Result{
		Lane:      input.Lane,
		Note:      &hit,
		Distance:  distance,
		Judgement: judgement,
		Index:     index,
		Points:    points,
	}
}
