package engine

import "git.lost.host/meutraa/lanes/internal/score"

type EventKind uint8

const (
	EventHit  EventKind = iota // A press judged a note
	EventMiss                  // A press found nothing in the window
	EventDrop                  // Notes passed the end of travel unhit
	EventBeat                  // Metronome
	EventEnd                   // The session ran out of time
)

type Event struct {
	Kind    EventKind
	Lane    uint8
	Count   int // Notes dropped, for EventDrop
	Result  score.Result
	Summary *Summary
}

// Listener is called outside the engine lock, it may call back into the engine
type Listener func(Event)

type Summary struct {
	Session score.Session
	NewBest bool
}
