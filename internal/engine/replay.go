package engine

import (
	"time"

	"git.lost.host/meutraa/lanes/internal/game"
)

// Replay plays a recorded session again from its seed and inputs and returns
// the final state
func Replay(d game.Difficulty, seed uint64, inputs []game.Input) game.State {
	e := New(Options{})
	e.difficulty = d
	e.start(seed)

	for _, in := range inputs {
		e.Tick(in.Time - e.sched.Now())
		e.Press(in.Lane)
	}
	e.Tick(SessionLength*time.Second - e.sched.Now())

	return e.Snapshot().State
}
