package sensor

import (
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/wxstation/pkg/config"
)

// Ensure mocks implement the source interfaces.
var (
	_ AnalogSource  = (*MockAnalog)(nil)
	_ DigitalSource = (*MockDigital)(nil)
)

// MockAnalog simulates an ADC for development without hardware.
// Each input follows a slow sine wave with a per-input phase offset plus a little noise.
type MockAnalog struct {
	cfg config.MockConfig
	now func() time.Time

	mu          sync.Mutex
	startTime   time.Time
	input       uint8
	conversions int
	value       uint16
}

// NewMock creates a simulated analog source.
func NewMock(cfg *config.MockConfig) *MockAnalog {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	m := &MockAnalog{
		cfg: *cfg,
		now: time.Now,
	}
	m.startTime = m.now()
	return m
}

// Start latches the input to convert.
func (m *MockAnalog) Start(input uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = input
	m.conversions++
	return nil
}

// AwaitReady blocks for the configured conversion time, then computes the value.
// Every FailEvery-th conversion reports ErrNotReady.
func (m *MockAnalog) AwaitReady() error {
	if m.cfg.ConversionDelay > 0 {
		time.Sleep(m.cfg.ConversionDelay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.FailEvery > 0 && m.conversions%m.cfg.FailEvery == 0 {
		m.value = AnalogSentinel
		return ErrNotReady
	}
	m.value = m.generate(m.input, m.now().Sub(m.startTime))
	return nil
}

// Value returns the last converted value.
func (m *MockAnalog) Value() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// generate computes the simulated raw value for an input at the given elapsed time.
func (m *MockAnalog) generate(input uint8, elapsed time.Duration) uint16 {
	phase := waveformPhase(input, elapsed, m.cfg.Period)

	v := float32(m.cfg.Base) + float32(m.cfg.Amplitude)*math32.Sin(phase)

	// Deterministic noise
	t := float32(elapsed.Seconds())
	v += (math32.Sin(t*7.3) + math32.Cos(t*11.9)) * float32(m.cfg.NoiseLevel) * 0.5

	if v < 0 {
		v = 0
	}
	// Stay below the sentinel so simulated values are never mistaken for a failed conversion.
	if v > float32(AnalogSentinel-1) {
		v = float32(AnalogSentinel - 1)
	}
	return uint16(math32.Round(v))
}

// MockDigital simulates digital-level inputs that toggle every half period.
type MockDigital struct {
	cfg       config.MockConfig
	now       func() time.Time
	startTime time.Time
}

// NewMockDigital creates a simulated digital source.
func NewMockDigital(cfg *config.MockConfig) *MockDigital {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	m := &MockDigital{
		cfg: *cfg,
		now: time.Now,
	}
	m.startTime = m.now()
	return m
}

// Level returns 1 during the positive half of the input's waveform, 0 otherwise.
func (m *MockDigital) Level(input uint8) uint16 {
	phase := waveformPhase(input, m.now().Sub(m.startTime), m.cfg.Period)
	if math32.Sin(phase) > 0 {
		return 1
	}
	return 0
}

// waveformPhase returns the sine phase for an input; inputs are spread by a quarter turn.
func waveformPhase(input uint8, elapsed, period time.Duration) float32 {
	if period <= 0 {
		period = time.Minute
	}
	frac := float32(elapsed%period) / float32(period)
	return 2*math32.Pi*frac + float32(input)*math32.Pi/2
}
