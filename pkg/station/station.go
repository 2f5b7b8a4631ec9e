package station

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/itohio/wxstation/pkg/classify"
	"github.com/itohio/wxstation/pkg/link"
	"github.com/itohio/wxstation/pkg/report"
	"github.com/itohio/wxstation/pkg/schedule"
	"github.com/itohio/wxstation/pkg/sensor"
)

// State is the lifecycle state of a station.
type State uint32

const (
	Uninitialized State = iota
	Ready
	Sampling
	Fault
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Sampling:
		return "sampling"
	case Fault:
		return "fault"
	default:
		return fmt.Sprintf("state(%d)", uint32(s))
	}
}

// Step is one startup initialization. Steps run once, in order.
type Step struct {
	Name string
	Init func() error
	// Transport marks the step that brings up the reporting transport.
	// Failure lines are only attempted after it succeeded.
	Transport bool
}

// Config is the immutable station configuration.
type Config struct {
	Channels []Channel
}

// Options are the collaborators of a station.
type Options struct {
	Transport link.Transport
	Signal    *schedule.Signal
	Analog    sensor.AnalogSource
	Digital   sensor.DigitalSource
	Steps     []Step
	Observer  Observer
}

// Station sequences acquisition, classification and reporting once per tick.
// Everything except State and Cycles runs in the single polling context.
type Station struct {
	cfg      Config
	tr       link.Transport
	sig      *schedule.Signal
	acq      *sensor.Acquirer
	reporter *report.Reporter
	steps    []Step
	obs      Observer

	state    atomic.Uint32
	fault    error
	welcomed bool
	cycles   atomic.Uint64
	readings []sensor.Reading
}

// New creates a station in the Uninitialized state.
func New(cfg Config, opts Options) (*Station, error) {
	if len(cfg.Channels) == 0 {
		return nil, errors.New("station: at least one channel required")
	}
	if opts.Transport == nil {
		return nil, errors.New("station: transport required")
	}
	if opts.Signal == nil {
		return nil, errors.New("station: signal required")
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}

	channels := make([]sensor.Channel, len(cfg.Channels))
	for i, ch := range cfg.Channels {
		channels[i] = ch.Channel
	}
	acq, err := sensor.NewAcquirer(channels, opts.Analog, opts.Digital)
	if err != nil {
		return nil, fmt.Errorf("station: %w", err)
	}

	cfg.Channels = append([]Channel(nil), cfg.Channels...)

	return &Station{
		cfg:      cfg,
		tr:       opts.Transport,
		sig:      opts.Signal,
		acq:      acq,
		reporter: report.New(opts.Transport),
		steps:    opts.Steps,
		obs:      opts.Observer,
		readings: make([]sensor.Reading, 0, len(channels)),
	}, nil
}

// State returns the current lifecycle state. Safe for concurrent use.
func (s *Station) State() State {
	return State(s.state.Load())
}

// Cycles returns the number of completed sampling cycles. Safe for concurrent use.
func (s *Station) Cycles() uint64 {
	return s.cycles.Load()
}

// Start runs all startup steps. On the first failure the station enters Fault,
// sends a best-effort failure line if the transport is already up, and stays halted.
func (s *Station) Start() error {
	switch s.State() {
	case Fault:
		return s.fault
	case Uninitialized:
	default:
		return nil
	}

	transportUp := false
	for _, step := range s.steps {
		if err := step.Init(); err != nil {
			ierr := &InitError{Step: step.Name, Code: CodeOf(err), Err: err}
			s.fault = fmt.Errorf("%w: %w", ErrFault, ierr)
			s.state.Store(uint32(Fault))
			s.obs.Fault(ierr)

			if transportUp && s.tr.Ready() {
				if werr := s.reporter.InitFailure(step.Name); werr != nil {
					log.Printf("Failed to report %s failure: %v", step.Name, werr)
				}
			}
			return s.fault
		}
		if step.Transport {
			transportUp = true
		}
	}

	s.state.Store(uint32(Ready))
	return nil
}

// enterSampling sends the greeting exactly once.
func (s *Station) enterSampling() {
	if !s.welcomed {
		s.welcomed = true
		if err := s.reporter.Greet(); err != nil {
			log.Printf("Failed to send greeting: %v", err)
		}
	}
	s.state.Store(uint32(Sampling))
}

// Poll services the signal once without blocking. It reports whether a
// sampling cycle ran. A station that is not started or has faulted never samples.
func (s *Station) Poll() bool {
	switch s.State() {
	case Ready:
		s.enterSampling()
	case Sampling:
	default:
		return false
	}

	if !s.sig.Consume() {
		return false
	}
	s.Cycle()
	return true
}

// Run starts the station if needed and services the signal until ctx is done.
// It returns the startup fault if any step failed.
func (s *Station) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	s.enterSampling()

	for {
		if err := s.sig.Wait(ctx); err != nil {
			return err
		}
		s.Cycle()
	}
}

// Cycle acquires, classifies and reports every channel in configured order.
// A failing channel never affects the others. It does nothing unless the station is sampling.
func (s *Station) Cycle() {
	if s.State() != Sampling {
		return
	}
	start := time.Now()

	s.readings = s.acq.Acquire(s.readings)
	for i, r := range s.readings {
		ch := s.cfg.Channels[i]
		res := classify.Classify(r, ch.Policy)
		s.obs.Classified(ch.Channel, res)

		if err := s.reporter.Report(ch.Label, res); err != nil {
			log.Printf("Failed to report %s: %v", ch.ID, err)
			s.obs.ReportFailed(ch.Channel, err)
		}
	}

	s.cycles.Add(1)
	s.obs.CycleDone(time.Since(start))
}
