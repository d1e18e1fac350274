package score

import (
	"time"

	"git.lost.host/meutraa/lanes/internal/game"
)

// InputsCompact groups the press times of one lane, for storage
type InputsCompact struct {
	Lane  uint8
	Times []time.Duration
}

func compactInputs(inputs []game.Input) []InputsCompact {
	laneCount := 0
	for _, i := range inputs {
		if int(i.Lane) >= laneCount {
			laneCount = int(i.Lane) + 1
		}
	}
	ins := make([]InputsCompact, laneCount)
	for l := range ins {
		ins[l].Lane = uint8(l)
		ins[l].Times = []time.Duration{}
	}
	for _, i := range inputs {
		ins[i.Lane].Times = append(ins[i.Lane].Times, i.Time)
	}
	return ins
}

// uncompactInputs restores the press order by time, presses at the same
// instant keep lane order
func uncompactInputs(inputs []InputsCompact) []game.Input {
	ins := []game.Input{}
	cursors := make([]int, len(inputs))
	for {
		best := -1
		for l, c := range inputs {
			if cursors[l] >= len(c.Times) {
				continue
			}
			if best == -1 || c.Times[cursors[l]] < inputs[best].Times[cursors[best]] {
				best = l
			}
		}
		if best == -1 {
			return ins
		}
		ins = append(ins, game.Input{Lane: inputs[best].Lane, Time: inputs[best].Times[cursors[best]]})
		cursors[best]++
	}
}
