package game

import "math"

const (
	HitWindowStart = 80.0
	HitWindowEnd   = 100.0
	IdealPosition  = 90.0

	ComboBonus = 5 // Points per combo step, applied before the combo increments
)

type Judgement struct {
	Name     string
	Feedback string
	Distance float64 // Exclusive upper bound on the distance from IdealPosition
	Points   int
}

// Ordered from best to worst, the last entry catches everything left
// inside the hit window
var Judgements = []Judgement{
	{Name: "perfect", Feedback: "PERFECT!", Distance: 4, Points: 100},
	{Name: "great", Feedback: "GREAT!", Distance: 7, Points: 50},
	{Name: "good", Feedback: "GOOD", Distance: math.Inf(1), Points: 25},
}

const MissFeedback = "MISS"

func Judge(distance float64) (int, Judgement) {
	for i := 0; i < len(Judgements)-1; i++ {
		if distance < Judgements[i].Distance {
			return i, Judgements[i]
		}
	}
	last := len(Judgements) - 1
	return last, Judgements[last]
}

// InHitWindow reports whether a position can be judged
func InHitWindow(position float64) bool {
	return position >= HitWindowStart && position <= HitWindowEnd
}

// Distance from the ideal hit position
func Distance(position float64) float64 {
	return math.Abs(position - IdealPosition)
}
