package search

import (
	"sync"
	"sync/atomic"
)

// Control is what a running search needs from whoever started it.
type Control interface {
	Aborted() bool
	Abort()
	// Park blocks until the run is aborted.
	Park()
}

// Signal is the abort flag shared by a search run and its controller, with a
// condition variable so a finished infinite search can wait for stop without
// spinning.
type Signal struct {
	aborted atomic.Bool
	mu      sync.Mutex
	cond    *sync.Cond
}

func NewSignal() *Signal {
	s := &Signal{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *Signal) Reset()        { s.aborted.Store(false) }
func (s *Signal) Aborted() bool { return s.aborted.Load() }
func (s *Signal) Abort()        { s.aborted.Store(true) }

// Wake releases a parked search. The broadcast happens under the lock Park
// checks the flag with, so a wake issued after Abort is never lost.
func (s *Signal) Wake() {
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *Signal) Park() {
	s.mu.Lock()
	for !s.aborted.Load() {
		s.cond.Wait()
	}
	s.mu.Unlock()
}
