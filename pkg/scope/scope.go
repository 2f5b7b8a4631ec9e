package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/wxstation/pkg/history"
)

// lane is the display data of one channel.
type lane struct {
	label  string
	points []history.Point
}

// ScopeWidget is a custom Fyne widget that plots channel levels over time,
// one lane per channel.
type ScopeWidget struct {
	widget.BaseWidget

	timeline *history.Timeline

	// Data (protected by mu)
	mu    sync.RWMutex
	lanes []lane
	xMin  time.Time
	xMax  time.Time

	// Display buffers (reused for downsampling)
	scratch []history.Point

	maxDisplayPoints int
}

// New creates a new ScopeWidget plotting tl.
func New(tl *history.Timeline) *ScopeWidget {
	s := &ScopeWidget{
		timeline:         tl,
		scratch:          make([]history.Point, 0, 1000),
		maxDisplayPoints: 500, // Limit points for efficient rendering
	}
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// Update snapshots the timeline for display.
// This should be called from the status callback using fyne.Do().
func (s *ScopeWidget) Update() {
	s.mu.Lock()
	s.snapshot()
	s.mu.Unlock()

	// Refresh the widget (must be outside lock to avoid potential deadlock)
	s.Refresh()
}

// snapshot copies and downsamples every channel and computes the time axis.
func (s *ScopeWidget) snapshot() {
	labels := s.timeline.Labels()

	if cap(s.lanes) < len(labels) {
		lanes := make([]lane, len(labels))
		copy(lanes, s.lanes)
		s.lanes = lanes
	}
	s.lanes = s.lanes[:len(labels)]

	for i, label := range labels {
		s.scratch = s.timeline.Series(s.scratch, label)
		s.lanes[i].label = label
		s.lanes[i].points = history.Downsample(s.lanes[i].points, s.scratch, s.maxDisplayPoints)
	}

	s.xMax = time.Now()
	if latest, ok := s.timeline.Latest(); ok {
		s.xMax = latest
	}
	s.xMin = s.xMax.Add(-s.timeline.Window())
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:    s,
		grid:     grid,
		objects:  []fyne.CanvasObject{grid},
		lastSize: fyne.Size{Width: 0, Height: 0},
	}
}
