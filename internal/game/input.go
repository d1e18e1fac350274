package game

import "time"

type Input struct {
	Lane uint8
	Time time.Duration // Game time since the session started
}
