package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

const (
	C2 = 65.41
	C4 = 261.63
	E4 = 329.63
	G4 = 392.00
)

// HitTones by judgement index, the best judgement has the highest note
var HitTones = []float64{G4, E4, C4}

const (
	HitLength  = 125 * time.Millisecond
	BeatLength = 500 * time.Millisecond

	attack  = 0.01
	decay   = 0.1
	sustain = 0.3
	release = 0.2
)

// Tone is a sine note with a short attack, a decay to the sustain level and a
// linear release after length
func Tone(sr beep.SampleRate, freq float64, length time.Duration) beep.Streamer {
	total := sr.N(length + time.Duration(release*float64(time.Second)))
	held := length.Seconds()
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			t := float64(pos) / float64(sr)
			v := 0.25 * envelope(t, held) * math.Sin(2*math.Pi*freq*t)
			samples[i][0], samples[i][1] = v, v
			pos++
			n++
		}
		return n, true
	})
}

func envelope(t, held float64) float64 {
	switch {
	case t < attack:
		return t / attack
	case t < attack+decay:
		return 1 - (1-sustain)*(t-attack)/decay
	case t < held:
		return sustain
	}
	left := 1 - (t-held)/release
	if left < 0 {
		return 0
	}
	return sustain * left
}

// Drum is a membrane hit: the pitch falls four octaves onto C2 within 50ms
// while the level decays
func Drum(sr beep.SampleRate) beep.Streamer {
	total := sr.N(BeatLength)
	pos := 0
	phase := 0.0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for i := range samples {
			if pos >= total {
				break
			}
			t := float64(pos) / float64(sr)
			freq := C2 * (1 + 15*math.Exp(-t/0.05))
			phase += 2 * math.Pi * freq / float64(sr)
			level := math.Exp(-t / 0.1)
			if t < 0.001 {
				level *= t / 0.001
			}
			v := 0.5 * level * math.Sin(phase)
			samples[i][0], samples[i][1] = v, v
			pos++
			n++
		}
		return n, true
	})
}
