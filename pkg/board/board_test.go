package board

import (
	"testing"
	"time"

	"github.com/itohio/wxstation/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, line string) report.Status {
	t.Helper()
	st, err := report.ParseLine(line)
	require.NoError(t, err)
	return st
}

func TestBoard_Apply(t *testing.T) {
	b := New()
	now := time.Unix(100, 0)

	var updates int
	b.OnUpdate(func() { updates++ })

	b.Apply(mustParse(t, "Welcome to Weather Station"), now)
	b.Apply(mustParse(t, "Error: DHT11 sensor reading failed"), now)
	b.Apply(mustParse(t, "Soil Moisture: 0"), now)
	b.Apply(mustParse(t, "Rain: 1"), now)
	b.Apply(mustParse(t, "Soil Moisture: 1"), now.Add(5*time.Second))

	assert.Equal(t, 5, updates)
	assert.Equal(t, 1, b.Greetings())
	assert.Empty(t, b.Fault())

	entries := b.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"DHT11", "Soil Moisture", "Rain"},
		[]string{entries[0].Label, entries[1].Label, entries[2].Label})

	assert.Equal(t, "sensor failed", Describe(entries[0]))
	assert.Equal(t, "alarm", Describe(entries[1]))
	assert.Equal(t, 2, entries[1].Count)
	assert.Equal(t, now.Add(5*time.Second), entries[1].At)
	assert.Equal(t, "alarm", Describe(entries[2]))
}

func TestBoard_Fault(t *testing.T) {
	b := New()
	b.Apply(mustParse(t, "Error: Timer initialization failed"), time.Now())

	assert.Equal(t, "Timer", b.Fault())
	assert.Empty(t, b.Entries())

	b.Apply(mustParse(t, "Welcome to Weather Station"), time.Now())
	assert.Empty(t, b.Fault(), "restarted station is no longer halted")
	assert.Equal(t, 1, b.Greetings())
}

func TestBoard_Consume(t *testing.T) {
	b := New()
	in := make(chan report.Status, 2)
	in <- mustParse(t, "Rain: 0")
	in <- mustParse(t, "Rain: 1")
	close(in)

	other := New()
	var seenByOther int
	b.OnUpdate(func() { seenByOther = len(other.Entries()) })

	b.Consume(in, other)

	assert.Equal(t, 1, seenByOther, "sinks are applied before update callbacks")
	assert.Len(t, other.Entries(), 1)

	entries := b.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "alarm", Describe(entries[0]))
	assert.Equal(t, 2, entries[0].Count)
}

func TestDescribe_Unknown(t *testing.T) {
	assert.Equal(t, "unknown", Describe(Entry{Status: report.Status{Kind: report.KindGreeting}}))
	assert.Equal(t, "normal", Describe(Entry{Status: report.Status{Kind: report.KindValue}}))
}
