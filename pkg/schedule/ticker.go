package schedule

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultPeriod is the sampling period of the station.
const DefaultPeriod = 5 * time.Second

var errAlreadyStarted = errors.New("schedule: already started")

// Acker acknowledges the pending-event indicator of the underlying timer
// so that the next period can fire.
type Acker interface {
	Ack()
}

// AckFunc adapts a function to Acker.
type AckFunc func()

func (f AckFunc) Ack() { f() }

// Scheduler arms a Signal once per period.
type Scheduler struct {
	period time.Duration
	sig    *Signal
	ack    Acker

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New creates a scheduler. ack may be nil when the timer needs no acknowledgement.
func New(period time.Duration, sig *Signal, ack Acker) (*Scheduler, error) {
	if period <= 0 {
		return nil, errors.New("schedule: period must be > 0")
	}
	if sig == nil {
		return nil, errors.New("schedule: signal required")
	}
	return &Scheduler{period: period, sig: sig, ack: ack}, nil
}

// Period returns the fixed period.
func (s *Scheduler) Period() time.Duration {
	return s.period
}

// Start starts the tick goroutine. The goroutine stops when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errAlreadyStarted
	}
	s.started = true

	cctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(cctx, s.done)
	return nil
}

// Stop stops the tick goroutine and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// run only arms the signal and acknowledges the timer. It never touches sensors or the transport.
func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick handles one period expiry: acknowledge the timer and arm the signal.
// Firmware timer handlers call it directly.
func (s *Scheduler) Tick() {
	if s.ack != nil {
		s.ack.Ack()
	}
	s.sig.Arm()
}
