package engine

import "time"

type task struct {
	name  string
	every time.Duration
	next  time.Duration
	run   func(at time.Duration)
}

// Scheduler runs periodic tasks against game time supplied by the caller.
// Nothing here reads the wall clock, so tests can move time as fast as they like.
type Scheduler struct {
	now     time.Duration
	tasks   []*task
	stopped bool
}

// Every registers run to fire once per period, first after one period.
// Tasks due at the same instant fire in registration order.
func (s *Scheduler) Every(name string, every time.Duration, run func(at time.Duration)) {
	if every <= 0 {
		panic("engine: task period must be positive: " + name)
	}
	s.tasks = append(s.tasks, &task{name: name, every: every, next: s.now + every, run: run})
}

func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Advance moves time forward by dt, firing every deadline crossed on the way
// in chronological order
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		return
	}
	target := s.now + dt
	for !s.stopped {
		var due *task
		for _, t := range s.tasks {
			if t.next > target {
				continue
			}
			if nil == due || t.next < due.next {
				due = t
			}
		}
		if nil == due {
			break
		}
		s.now = due.next
		due.next += due.every
		due.run(s.now)
	}
	if !s.stopped {
		s.now = target
	}
}

// Stop cancels every task, including the rest of a running Advance
func (s *Scheduler) Stop() {
	s.stopped = true
}

func (s *Scheduler) Stopped() bool {
	return s.stopped
}
