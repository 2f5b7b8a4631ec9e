package board

import (
	"sync"
	"time"

	"github.com/itohio/wxstation/pkg/report"
)

// Entry is the latest status of one channel.
type Entry struct {
	Label  string
	Status report.Status
	At     time.Time
	Count  int // number of statuses received for this label
}

// Board keeps the latest status per channel label, in order of first appearance.
type Board struct {
	mu       sync.RWMutex
	entries  []Entry
	index    map[string]int
	greeted  int
	faulted  string
	onUpdate []func()
}

// New creates an empty board.
func New() *Board {
	return &Board{index: make(map[string]int)}
}

// Apply records a received status.
func (b *Board) Apply(st report.Status, at time.Time) {
	b.mu.Lock()
	switch st.Kind {
	case report.KindGreeting:
		// A greeting means the station started up, clearing any earlier fault.
		b.greeted++
		b.faulted = ""
	case report.KindInitFailure:
		b.faulted = st.Label
	default:
		i, ok := b.index[st.Label]
		if !ok {
			i = len(b.entries)
			b.index[st.Label] = i
			b.entries = append(b.entries, Entry{Label: st.Label})
		}
		e := &b.entries[i]
		e.Status = st
		e.At = at
		e.Count++
	}
	callbacks := b.onUpdate
	b.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// Entries returns a snapshot of all channel entries.
func (b *Board) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Entry(nil), b.entries...)
}

// Greetings returns how many greetings were received, i.e. station restarts seen.
func (b *Board) Greetings() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.greeted
}

// Fault returns the failed startup step reported by the station, if any.
func (b *Board) Fault() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.faulted
}

// OnUpdate registers a callback invoked after every applied status.
func (b *Board) OnUpdate(cb func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onUpdate = append(b.onUpdate, cb)
}

// Sink receives every status applied to a board.
type Sink interface {
	Apply(st report.Status, at time.Time)
}

var _ Sink = (*Board)(nil)

// Consume applies statuses until the channel closes. Each status goes to the
// extra sinks first, so update callbacks observe all of them up to date.
func (b *Board) Consume(in <-chan report.Status, sinks ...Sink) {
	for st := range in {
		now := time.Now()
		for _, s := range sinks {
			s.Apply(st, now)
		}
		b.Apply(st, now)
	}
}

// Describe returns the human-readable state of an entry.
func Describe(e Entry) string {
	switch e.Status.Kind {
	case report.KindError:
		return "sensor failed"
	case report.KindValue:
		if e.Status.Code == 1 {
			return "alarm"
		}
		return "normal"
	}
	return "unknown"
}
