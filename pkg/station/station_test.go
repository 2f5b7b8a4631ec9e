package station

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/itohio/wxstation/pkg/classify"
	"github.com/itohio/wxstation/pkg/config"
	"github.com/itohio/wxstation/pkg/report"
	"github.com/itohio/wxstation/pkg/schedule"
	"github.com/itohio/wxstation/pkg/sensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport captures transmitted bytes.
type recordingTransport struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	ready  bool
	failOn byte // WriteByte fails for this byte when non-zero
}

func (r *recordingTransport) WriteByte(b byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != 0 && b == r.failOn {
		return errors.New("transmit failed")
	}
	return r.buf.WriteByte(b)
}

func (r *recordingTransport) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

func (r *recordingTransport) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.String()
}

// instantADC converts instantly to the configured per-input values.
type instantADC struct {
	mu     sync.Mutex
	values map[uint8]uint16
	fail   map[uint8]bool
	cur    uint8
}

func (a *instantADC) Start(input uint8) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cur = input
	return nil
}

func (a *instantADC) AwaitReady() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail[a.cur] {
		return sensor.ErrNotReady
	}
	return nil
}

func (a *instantADC) Value() uint16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.values[a.cur]
}

func (a *instantADC) set(input uint8, v uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[input] = v
}

type levels map[uint8]uint16

func (l levels) Level(input uint8) uint16 { return l[input] }

// countingObserver counts pipeline events.
type countingObserver struct {
	classified []classify.State
	cycles     int
	reportErrs int
	faults     []error
}

func (o *countingObserver) Classified(_ sensor.Channel, r classify.Result) {
	o.classified = append(o.classified, r.State)
}
func (o *countingObserver) CycleDone(time.Duration)            { o.cycles++ }
func (o *countingObserver) ReportFailed(sensor.Channel, error) { o.reportErrs++ }
func (o *countingObserver) Fault(err error)                    { o.faults = append(o.faults, err) }

func referenceChannels(t *testing.T) []Channel {
	t.Helper()
	ch, err := ChannelsFromConfig(config.DefaultChannels())
	require.NoError(t, err)
	return ch
}

type fixture struct {
	st  *Station
	tr  *recordingTransport
	sig *schedule.Signal
	adc *instantADC
	obs *countingObserver
}

func newFixture(t *testing.T, steps ...Step) *fixture {
	t.Helper()
	f := &fixture{
		tr:  &recordingTransport{ready: true},
		sig: schedule.NewSignal(),
		adc: &instantADC{values: map[uint8]uint16{0: 1500, 8: 4200}},
		obs: &countingObserver{},
	}
	st, err := New(Config{Channels: referenceChannels(t)}, Options{
		Transport: f.tr,
		Signal:    f.sig,
		Analog:    f.adc,
		Digital:   levels{},
		Steps:     steps,
		Observer:  f.obs,
	})
	require.NoError(t, err)
	f.st = st
	return f
}

const (
	greetingLine = "Welcome to Weather Station\n"
	dhtLine      = "Error: DHT11 sensor reading failed\n"
	soilNormal   = "Soil Moisture: 0\n"
	rainAlarm    = "Rain: 1\n"
)

func TestStation_ReferenceCycle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.st.Start())
	assert.Equal(t, Ready, f.st.State())

	assert.False(t, f.st.Poll(), "no tick pending")
	assert.Equal(t, Sampling, f.st.State())
	assert.Equal(t, greetingLine, f.tr.String(), "greeting precedes the first cycle")

	f.sig.Arm()
	assert.True(t, f.st.Poll())

	assert.Equal(t, greetingLine+dhtLine+soilNormal+rainAlarm, f.tr.String())
	assert.Equal(t, uint64(1), f.st.Cycles())
	assert.Equal(t, []classify.State{classify.Invalid, classify.Normal, classify.Alarm}, f.obs.classified)
}

func TestStation_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		soil uint16
		want string
	}{
		{"above threshold alarms", 4200, "Soil Moisture: 1\n"},
		{"below threshold is normal", 1500, "Soil Moisture: 0\n"},
		{"at threshold is normal", 3000, "Soil Moisture: 0\n"},
		{"above ceiling fails", 6000, "Error: Soil Moisture sensor reading failed\n"},
		{"sentinel fails", sensor.AnalogSentinel, "Error: Soil Moisture sensor reading failed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.adc.set(0, tt.soil)
			require.NoError(t, f.st.Start())

			f.sig.Arm()
			require.True(t, f.st.Poll())

			assert.Contains(t, f.tr.String(), dhtLine+tt.want+rainAlarm)
		})
	}
}

func TestStation_ChannelsIndependent(t *testing.T) {
	f := newFixture(t)
	f.adc.fail = map[uint8]bool{0: true}
	require.NoError(t, f.st.Start())

	f.sig.Arm()
	require.True(t, f.st.Poll())

	assert.Equal(t, greetingLine+dhtLine+"Error: Soil Moisture sensor reading failed\n"+rainAlarm, f.tr.String())
}

func TestStation_GreetingOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.st.Start())

	for i := 0; i < 3; i++ {
		f.sig.Arm()
		require.True(t, f.st.Poll())
	}

	out := f.tr.String()
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte(greetingLine)))
	assert.Equal(t, 3, bytes.Count([]byte(out), []byte(rainAlarm)))
	assert.Equal(t, uint64(3), f.st.Cycles())
}

func TestStation_CoalescedTicksRunOneCycle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.st.Start())

	f.sig.Arm()
	f.sig.Arm()
	f.sig.Arm()

	assert.True(t, f.st.Poll())
	assert.False(t, f.st.Poll())
	assert.Equal(t, uint64(1), f.st.Cycles())
	assert.Equal(t, uint64(2), f.sig.Coalesced())
}

func TestStation_NoCycleBeforeStart(t *testing.T) {
	f := newFixture(t)
	f.sig.Arm()

	assert.False(t, f.st.Poll())
	f.st.Cycle()
	assert.Empty(t, f.tr.String())
	assert.Equal(t, Uninitialized, f.st.State())
}

func TestStation_StepsRunInOrder(t *testing.T) {
	var order []string
	step := func(name string, transport bool) Step {
		return Step{Name: name, Transport: transport, Init: func() error {
			order = append(order, name)
			return nil
		}}
	}

	f := newFixture(t, step("USART", true), step("GPIO", false), step("ADC", false), step("Timer", false))
	require.NoError(t, f.st.Start())
	assert.Equal(t, []string{"USART", "GPIO", "ADC", "Timer"}, order)

	require.NoError(t, f.st.Start(), "second start is a no-op")
	assert.Len(t, order, 4)
}

func TestStation_TransportFailureHalts(t *testing.T) {
	var later bool
	f := newFixture(t,
		Step{Name: "USART", Transport: true, Init: func() error { return Unavailable }},
		Step{Name: "ADC", Init: func() error { later = true; return nil }},
	)

	err := f.st.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFault)
	assert.ErrorIs(t, err, Unavailable)
	assert.False(t, later, "steps after the failing one never run")
	assert.Equal(t, Fault, f.st.State())

	var ierr *InitError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "USART", ierr.Step)
	assert.Equal(t, Unavailable, ierr.Code)

	f.sig.Arm()
	assert.False(t, f.st.Poll())
	assert.Empty(t, f.tr.String(), "no greeting and no lines after a transport fault")

	assert.ErrorIs(t, f.st.Start(), ErrFault)
	assert.ErrorIs(t, f.st.Run(context.Background()), ErrFault)
	assert.Empty(t, f.tr.String())
	require.Len(t, f.obs.faults, 1)
}

func TestStation_LaterFailureReported(t *testing.T) {
	f := newFixture(t,
		Step{Name: "USART", Transport: true, Init: func() error { return nil }},
		Step{Name: "GPIO", Init: func() error { return nil }},
		Step{Name: "ADC", Init: func() error { return Fail(ClockNotEnabled, errors.New("no clock")) }},
		Step{Name: "Timer", Init: func() error { return nil }},
	)

	err := f.st.Start()
	assert.ErrorIs(t, err, ErrFault)
	assert.ErrorIs(t, err, ClockNotEnabled)
	assert.Equal(t, "Error: ADC initialization failed\n", f.tr.String())

	f.sig.Arm()
	assert.False(t, f.st.Poll())
	assert.Equal(t, "Error: ADC initialization failed\n", f.tr.String(), "halted station stays silent")
}

func TestStation_FailureLineNeedsReadyTransport(t *testing.T) {
	f := newFixture(t,
		Step{Name: "USART", Transport: true, Init: func() error { return nil }},
		Step{Name: "Timer", Init: func() error { return VerifyFailed }},
	)
	f.tr.ready = false

	assert.ErrorIs(t, f.st.Start(), ErrFault)
	assert.Empty(t, f.tr.String())
}

func TestStation_ReportErrorsDoNotStopCycle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.st.Start())
	f.st.Poll()

	// Every line containing 'S' fails part way; the others still go out.
	f.tr.failOn = 'S'
	f.sig.Arm()
	require.True(t, f.st.Poll())

	assert.Equal(t, 1, f.obs.reportErrs)
	assert.Contains(t, f.tr.String(), rainAlarm)
	assert.Equal(t, 1, f.obs.cycles)
}

func TestStation_Run(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- f.st.Run(ctx) }()

	f.sig.Arm()
	require.Eventually(t, func() bool { return f.st.Cycles() == 1 }, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, greetingLine+dhtLine+soilNormal+rainAlarm, f.tr.String())
}

func TestStation_RunWithScheduler(t *testing.T) {
	f := newFixture(t)
	sched, err := schedule.New(5*time.Millisecond, f.sig, nil)
	require.NoError(t, err)
	defer sched.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f2, err := New(Config{Channels: referenceChannels(t)}, Options{
		Transport: f.tr,
		Signal:    f.sig,
		Analog:    f.adc,
		Digital:   levels{},
		Steps:     []Step{{Name: "Timer", Init: func() error { return sched.Start(ctx) }}},
	})
	require.NoError(t, err)

	go func() { _ = f2.Run(ctx) }()
	require.Eventually(t, func() bool { return f2.Cycles() >= 2 }, 2*time.Second, time.Millisecond)
	cancel()

	assert.True(t, bytes.HasPrefix([]byte(f.tr.String()), []byte(greetingLine)))
}

func TestNew_Validation(t *testing.T) {
	tr := &recordingTransport{ready: true}
	sig := schedule.NewSignal()
	chans := referenceChannels(t)

	_, err := New(Config{}, Options{Transport: tr, Signal: sig})
	assert.Error(t, err)

	_, err = New(Config{Channels: chans}, Options{Signal: sig, Analog: &instantADC{}})
	assert.Error(t, err)

	_, err = New(Config{Channels: chans}, Options{Transport: tr, Analog: &instantADC{}})
	assert.Error(t, err)

	_, err = New(Config{Channels: chans}, Options{Transport: tr, Signal: sig})
	assert.Error(t, err, "analog channels need an analog source")
}

func TestStation_GreetingIsParseable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.st.Start())
	f.st.Poll()

	st, err := report.ParseLine(f.tr.String())
	require.NoError(t, err)
	assert.Equal(t, report.KindGreeting, st.Kind)
	assert.Equal(t, report.Greeting+"\n", f.tr.String())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "sampling", Sampling.String())
	assert.Equal(t, "fault", Fault.String())
}
