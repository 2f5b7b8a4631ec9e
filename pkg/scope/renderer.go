package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/wxstation/pkg/history"
)

var (
	colorGrid   = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	colorText   = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	colorNormal = color.RGBA{R: 40, G: 170, B: 70, A: 255}
	colorAlarm  = color.RGBA{R: 210, G: 50, B: 40, A: 255}
	colorFailed = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 160)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	lanes := r.scope.lanes
	xMin := r.scope.xMin
	xMax := r.scope.xMax
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = r.objects[:1]

	marginLeft := float32(110.0)
	marginRight := float32(20.0)
	marginTop := float32(10.0)
	marginBottom := float32(30.0)

	plotWidth := size.Width - marginLeft - marginRight
	plotHeight := size.Height - marginTop - marginBottom
	plotX := marginLeft
	plotY := marginTop

	r.drawTimeGrid(plotX, plotY, plotWidth, plotHeight, xMin, xMax)

	if len(lanes) == 0 || !xMax.After(xMin) {
		return
	}

	laneHeight := plotHeight / float32(len(lanes))
	for i, l := range lanes {
		y := plotY + float32(i)*laneHeight
		r.drawLane(plotX, y, plotWidth, laneHeight, l, xMin, xMax)
	}
}

// drawTimeGrid draws vertical time lines labeled relative to the newest point.
func (r *scopeRenderer) drawTimeGrid(plotX, plotY, plotWidth, plotHeight float32, xMin, xMax time.Time) {
	numVLines := 10
	span := xMax.Sub(xMin)
	for i := range numVLines + 1 {
		x := plotX + float32(i)*plotWidth/float32(numVLines)
		line := canvas.NewLine(colorGrid)
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotHeight)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		ago := span - time.Duration(i)*span/time.Duration(numVLines)
		text := canvas.NewText(formatAgo(ago), colorText)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, plotY+plotHeight+5))
		r.objects = append(r.objects, text)
	}
}

// drawLane draws the label, separator and step plot of one channel.
// Alarm is plotted high, normal in the middle and failed readings low.
func (r *scopeRenderer) drawLane(plotX, laneY, plotWidth, laneHeight float32, l lane, xMin, xMax time.Time) {
	sep := canvas.NewLine(colorGrid)
	sep.Position1 = fyne.NewPos(plotX, laneY+laneHeight)
	sep.Position2 = fyne.NewPos(plotX+plotWidth, laneY+laneHeight)
	sep.StrokeWidth = 1
	r.objects = append(r.objects, sep)

	label := canvas.NewText(l.label, colorText)
	label.TextSize = 11
	label.Alignment = fyne.TextAlignTrailing
	label.Move(fyne.NewPos(plotX-8, laneY+laneHeight/2-7))
	r.objects = append(r.objects, label)

	if len(l.points) == 0 {
		return
	}

	span := xMax.Sub(xMin).Seconds()
	xOf := func(t time.Time) float32 {
		f := t.Sub(xMin).Seconds() / span
		if f < 0 {
			f = 0
		}
		return plotX + float32(f)*plotWidth
	}
	yOf := func(level history.Level) float32 {
		// Levels -1..1 map to 80%..20% of the lane height
		return laneY + laneHeight*(0.5-0.3*float32(level))
	}

	for i, p := range l.points {
		x1 := xOf(p.At)
		x2 := plotX + plotWidth
		if i+1 < len(l.points) {
			x2 = xOf(l.points[i+1].At)
		}
		y := yOf(p.Level)

		seg := canvas.NewLine(levelColor(p.Level))
		seg.Position1 = fyne.NewPos(x1, y)
		seg.Position2 = fyne.NewPos(x2, y)
		seg.StrokeWidth = 2
		r.objects = append(r.objects, seg)

		if i+1 < len(l.points) && l.points[i+1].Level != p.Level {
			edge := canvas.NewLine(colorGrid)
			edge.Position1 = fyne.NewPos(x2, y)
			edge.Position2 = fyne.NewPos(x2, yOf(l.points[i+1].Level))
			edge.StrokeWidth = 1
			r.objects = append(r.objects, edge)
		}
	}
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {
	// Cleanup handled by Fyne
}

func levelColor(level history.Level) color.Color {
	switch level {
	case history.Alarm:
		return colorAlarm
	case history.Normal:
		return colorNormal
	}
	return colorFailed
}

func formatAgo(d time.Duration) string {
	if d <= 0 {
		return "now"
	}
	if d < time.Minute {
		return fmt.Sprintf("-%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("-%.1fm", d.Minutes())
}
