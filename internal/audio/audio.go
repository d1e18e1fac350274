package audio

// Sounds plays the feedback of a session
type Sounds interface {
	PlayHit(judgement int)
	PlayBeat()
	PlayMusic() // From the start of the track
	SetPaused(paused bool)
	Close() error
}
