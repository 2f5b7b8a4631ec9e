package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/itohio/wxstation/pkg/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// byteRecorder records every WriteByte call and can fail after a number of bytes.
type byteRecorder struct {
	buf    bytes.Buffer
	calls  int
	failAt int // 0 = never
}

var errLink = errors.New("link down")

func (r *byteRecorder) WriteByte(b byte) error {
	r.calls++
	if r.failAt > 0 && r.calls >= r.failAt {
		return errLink
	}
	return r.buf.WriteByte(b)
}

func TestLine(t *testing.T) {
	tests := []struct {
		name  string
		label string
		state classify.State
		want  string
	}{
		{"normal", "Soil Moisture", classify.Normal, "Soil Moisture: 0\n"},
		{"alarm", "Rain", classify.Alarm, "Rain: 1\n"},
		{"invalid", "DHT11", classify.Invalid, "Error: DHT11 sensor reading failed\n"},
		{"invalid analog", "Rain", classify.Invalid, "Error: Rain sensor reading failed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Line(tt.label, classify.Result{State: tt.state}))
		})
	}
}

func TestAppendLine_Reuse(t *testing.T) {
	buf := make([]byte, 0, 64)
	buf = AppendLine(buf, "Rain", classify.Result{State: classify.Alarm})
	assert.Equal(t, "Rain: 1\n", string(buf))

	buf = AppendLine(buf[:0], "Soil Moisture", classify.Result{State: classify.Normal})
	assert.Equal(t, "Soil Moisture: 0\n", string(buf))
}

func TestInitFailureLine(t *testing.T) {
	assert.Equal(t, "Error: ADC initialization failed\n", InitFailureLine("ADC"))
}

func TestReporter_ByteByByte(t *testing.T) {
	rec := &byteRecorder{}
	r := New(rec)

	require.NoError(t, r.Greet())
	require.NoError(t, r.Report("DHT11", classify.Result{State: classify.Invalid}))
	require.NoError(t, r.Report("Soil Moisture", classify.Result{State: classify.Normal}))
	require.NoError(t, r.Report("Rain", classify.Result{State: classify.Alarm}))

	want := "Welcome to Weather Station\n" +
		"Error: DHT11 sensor reading failed\n" +
		"Soil Moisture: 0\n" +
		"Rain: 1\n"
	assert.Equal(t, want, rec.buf.String())
	assert.Equal(t, len(want), rec.calls, "one WriteByte per byte")
}

func TestReporter_InitFailure(t *testing.T) {
	rec := &byteRecorder{}
	require.NoError(t, New(rec).InitFailure("Timer"))
	assert.Equal(t, "Error: Timer initialization failed\n", rec.buf.String())
}

func TestReporter_WriteError(t *testing.T) {
	rec := &byteRecorder{failAt: 3}
	r := New(rec)

	err := r.Report("Rain", classify.Result{State: classify.Alarm})
	assert.ErrorIs(t, err, errLink)
	assert.Equal(t, "Ra", rec.buf.String(), "transmission stops at the failing byte")

	// A later line is attempted independently.
	rec.failAt = 0
	require.NoError(t, r.Report("Soil Moisture", classify.Result{State: classify.Normal}))
	assert.Equal(t, "RaSoil Moisture: 0\n", rec.buf.String())
}
