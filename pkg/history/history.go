package history

import (
	"sync"
	"time"

	"github.com/itohio/wxstation/pkg/report"
)

// DefaultWindow is how much history a Timeline keeps per channel.
const DefaultWindow = 10 * time.Minute

// Level is the plotted state of a channel at one point in time.
type Level int8

const (
	Failed Level = -1
	Normal Level = 0
	Alarm  Level = 1
)

// Point is one received channel status.
type Point struct {
	At    time.Time
	Level Level
}

// LevelOf maps a channel status to its Level. ok is false for statuses
// that do not belong to a channel (greeting, startup failure).
func LevelOf(st report.Status) (Level, bool) {
	switch st.Kind {
	case report.KindError:
		return Failed, true
	case report.KindValue:
		if st.Code == 1 {
			return Alarm, true
		}
		return Normal, true
	}
	return 0, false
}

// Timeline keeps a sliding window of points per channel label,
// in order of first appearance.
type Timeline struct {
	window time.Duration

	mu     sync.RWMutex
	labels []string
	series map[string][]Point
}

// NewTimeline creates a Timeline keeping window worth of points per channel.
func NewTimeline(window time.Duration) *Timeline {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Timeline{
		window: window,
		series: make(map[string][]Point),
	}
}

// Window returns the retention window.
func (t *Timeline) Window() time.Duration {
	return t.window
}

// Apply records a status received at the given time. Non-channel statuses are ignored.
func (t *Timeline) Apply(st report.Status, at time.Time) {
	level, ok := LevelOf(st)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	points, seen := t.series[st.Label]
	if !seen {
		t.labels = append(t.labels, st.Label)
	}
	points = append(points, Point{At: at, Level: level})
	t.series[st.Label] = trim(points, at.Add(-t.window))
}

// trim drops points older than cutoff in place.
func trim(points []Point, cutoff time.Time) []Point {
	i := 0
	for i < len(points) && points[i].At.Before(cutoff) {
		i++
	}
	if i == 0 {
		return points
	}
	n := copy(points, points[i:])
	return points[:n]
}

// Labels returns the channel labels in order of first appearance.
func (t *Timeline) Labels() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.labels...)
}

// Series copies the points of a channel into dst[:0].
// Destination-based: reuses dst if it has sufficient capacity.
func (t *Timeline) Series(dst []Point, label string) []Point {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append(dst[:0], t.series[label]...)
}

// Latest returns the time of the most recent point across all channels.
func (t *Timeline) Latest() (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var latest time.Time
	for _, points := range t.series {
		if n := len(points); n > 0 && points[n-1].At.After(latest) {
			latest = points[n-1].At
		}
	}
	return latest, !latest.IsZero()
}
