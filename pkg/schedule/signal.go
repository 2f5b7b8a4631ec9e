package schedule

import (
	"context"
	"sync/atomic"
)

// Signal is the readiness flag between the tick context and the polling context.
// It holds at most one pending tick: arming an already armed signal is coalesced.
// Arm is the only operation meant for the tick context.
type Signal struct {
	c         chan struct{}
	armed     atomic.Uint64
	coalesced atomic.Uint64
}

// NewSignal returns a disarmed signal.
func NewSignal() *Signal {
	return &Signal{c: make(chan struct{}, 1)}
}

// Arm sets the signal. It never blocks. It reports false when the signal was
// already armed and the tick was coalesced.
func (s *Signal) Arm() bool {
	select {
	case s.c <- struct{}{}:
		s.armed.Add(1)
		return true
	default:
		s.coalesced.Add(1)
		return false
	}
}

// Consume disarms the signal and reports whether it was armed.
func (s *Signal) Consume() bool {
	select {
	case <-s.c:
		return true
	default:
		return false
	}
}

// Wait blocks until the signal is armed and consumes it.
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Armed reports whether a tick is pending without consuming it.
func (s *Signal) Armed() bool {
	return len(s.c) > 0
}

// Ticks returns the number of ticks that armed the signal.
func (s *Signal) Ticks() uint64 {
	return s.armed.Load()
}

// Coalesced returns the number of ticks merged into an already pending one.
func (s *Signal) Coalesced() uint64 {
	return s.coalesced.Load()
}
