package game

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

type Difficulty uint8

const (
	Easy Difficulty = iota
	Normal
	Hard
)

// Difficulties in menu order
var Difficulties = []Difficulty{Easy, Normal, Hard}

var difficultyNames = map[Difficulty]string{
	Easy:   "easy",
	Normal: "normal",
	Hard:   "hard",
}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return fmt.Sprintf("difficulty(%d)", uint8(d))
}

func ParseDifficulty(name string) (Difficulty, error) {
	for d, n := range difficultyNames {
		if n == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, name)
}

// Pattern is a set of lanes that spawn together
type Pattern []uint8

type Profile struct {
	Speed    float64       // Position units added per update tick
	Interval time.Duration // Time between spawns
	Patterns []Pattern
}

var (
	simplePatterns  = []Pattern{{0}, {1}, {2}, {3}}
	mediumPatterns  = []Pattern{{0}, {1}, {2}, {3}, {0, 2}, {1, 3}}
	complexPatterns = []Pattern{{0}, {1}, {2}, {3}, {0, 2}, {1, 3}, {0, 3}, {1, 2}, {0, 1, 2, 3}}

	profiles = map[Difficulty]Profile{
		Easy:   {Speed: 1.5, Interval: 1200 * time.Millisecond, Patterns: simplePatterns},
		Normal: {Speed: 2, Interval: 800 * time.Millisecond, Patterns: mediumPatterns},
		Hard:   {Speed: 2.5, Interval: 500 * time.Millisecond, Patterns: complexPatterns},
	}
)

func (d Difficulty) Profile() Profile {
	p, ok := profiles[d]
	if !ok {
		return profiles[Normal]
	}
	return p
}
