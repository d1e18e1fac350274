package parser

import (
	"sync"
	"time"
)

// Object is one complete object read from the stream
type Object struct {
	Timestamp time.Time
	Data      map[string]any
}

// Slot is a single value register, every Set overwrites the previous value
type Slot[T any] struct {
	mu      sync.RWMutex
	value   T
	ok      bool
	updated chan struct{}
}

func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{updated: make(chan struct{}, 1)}
}

func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	s.ok = true
	s.mu.Unlock()
	s.notify()
}

func (s *Slot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.ok
}

func (s *Slot[T]) Clear() {
	var zero T
	s.mu.Lock()
	s.value = zero
	s.ok = false
	s.mu.Unlock()
	s.notify()
}

// Updated receives after any Set or Clear. Signals coalesce, a reader that
// falls behind sees one signal and reads the latest value.
func (s *Slot[T]) Updated() <-chan struct{} {
	return s.updated
}

func (s *Slot[T]) notify() {
	select {
	case s.updated <- struct{}{}:
	default:
	}
}
