package board

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/wxstation/pkg/report"
)

var (
	colorBackground = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	colorNormal     = color.RGBA{R: 40, G: 170, B: 70, A: 255}
	colorAlarm      = color.RGBA{R: 210, G: 50, B: 40, A: 255}
	colorError      = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	colorText       = color.RGBA{R: 230, G: 230, B: 230, A: 255}
)

const (
	rowHeight = 36
	padding   = 8
)

// BoardWidget is a custom Fyne widget that shows one row per station channel.
type BoardWidget struct {
	widget.BaseWidget

	board *Board
}

// NewWidget creates a widget rendering b. Refresh it via fyne.Do when b changes.
func NewWidget(b *Board) *BoardWidget {
	w := &BoardWidget{board: b}
	w.ExtendBaseWidget(w)
	return w
}

// CreateRenderer creates the widget renderer.
func (w *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(colorBackground)
	return &boardRenderer{
		w:       w,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}

// boardRenderer renders the board widget.
type boardRenderer struct {
	w       *BoardWidget
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

func (r *boardRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 3*rowHeight+2*padding)
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.w.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the rows from the current board snapshot.
func (r *boardRenderer) Refresh() {
	entries := r.w.board.Entries()
	size := r.w.Size()

	r.objects = r.objects[:1]
	r.bg.Resize(size)

	y := float32(padding)
	if step := r.w.board.Fault(); step != "" {
		txt := canvas.NewText(fmt.Sprintf("Station halted: %s initialization failed", step), colorAlarm)
		txt.TextStyle = fyne.TextStyle{Bold: true}
		txt.Move(fyne.NewPos(padding, y))
		r.objects = append(r.objects, txt)
		y += rowHeight
	}

	for _, e := range entries {
		dot := canvas.NewRectangle(stateColor(e))
		dot.Resize(fyne.NewSize(rowHeight-2*padding, rowHeight-2*padding))
		dot.Move(fyne.NewPos(padding, y+padding/2))

		label := canvas.NewText(e.Label, colorText)
		label.TextStyle = fyne.TextStyle{Bold: true}
		label.Move(fyne.NewPos(rowHeight+padding, y+padding/2))

		state := canvas.NewText(fmt.Sprintf("%s  (%s)", Describe(e), e.At.Format("15:04:05")), colorText)
		state.Alignment = fyne.TextAlignTrailing
		state.Resize(fyne.NewSize(size.Width/2-padding, rowHeight))
		state.Move(fyne.NewPos(size.Width/2, y))

		r.objects = append(r.objects, dot, label, state)
		y += rowHeight
	}
}

func (r *boardRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *boardRenderer) Destroy() {}

func stateColor(e Entry) color.Color {
	switch {
	case e.Status.Kind == report.KindError:
		return colorError
	case e.Status.Code == 1:
		return colorAlarm
	default:
		return colorNormal
	}
}
