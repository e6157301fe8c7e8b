package interaction

import (
	"math"

	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/render/canvas"
	"github.com/matzehuels/trackview/pkg/render/scale"
)

// Default overlay styling.
const (
	DefaultMarkerColor = "rgba(0, 0, 255, 0.15)"
	DefaultCloseSize   = 10.0
)

// Action is the outcome of a finished gesture.
type Action int

const (
	ActionNone Action = iota
	ActionZoom
	ActionHighlight
	ActionMarker
	ActionMarkerRemoved
)

func (a Action) String() string {
	switch a {
	case ActionZoom:
		return "zoom"
	case ActionHighlight:
		return "highlight"
	case ActionMarker:
		return "marker"
	case ActionMarkerRemoved:
		return "marker-removed"
	default:
		return "none"
	}
}

// Result describes what a gesture did.
type Result struct {
	Action Action
	Range  genome.Range
}

// Marker is the overlay rectangle in logical pixels. It spans the full track
// height.
type Marker struct {
	Left       float64
	Width      float64
	Visible    bool
	Persistent bool
	// CloseVisible is set while the pointer hovers a persistent marker that
	// can be removed.
	CloseVisible bool
}

// CloseBox returns the close affordance area in the marker's top-right corner.
func (m Marker) CloseBox(size float64) (x1, y1, x2, y2 float64) {
	right := m.Left + m.Width
	return right - size, 0, right, size
}

// Callbacks are invoked when a gesture completes. Nil callbacks are skipped.
type Callbacks struct {
	Zoom         func(genome.Range)
	AddHighlight func(genome.Range)
	// RemoveMarker enables the close affordance on persistent markers.
	RemoveMarker func()
}

// Option configures a DragSelect.
type Option func(*DragSelect)

// WithZoomKey sets the modifier that turns a selection into a zoom.
// The default is [KeyControl].
func WithZoomKey(k Key) Option {
	return func(d *DragSelect) { d.zoomKey = k }
}

// WithMarkerMode starts the handler in marker mode.
func WithMarkerMode(on bool) Option {
	return func(d *DragSelect) { d.markerMode = on }
}

// WithCloseSize sets the side length of the close affordance.
func WithCloseSize(px float64) Option {
	return func(d *DragSelect) { d.closeSize = px }
}

// DragSelect tracks one drag gesture at a time over a plot area that starts
// after a gutter of fixed width.
//
// A DragSelect is not safe for concurrent use; the owning track serializes
// pointer events.
type DragSelect struct {
	gutter     float64
	mods       *Modifiers
	cb         Callbacks
	zoomKey    Key
	markerMode bool
	closeSize  float64

	dragging bool
	startX   float64
	marker   Marker
}

// NewDragSelect creates a handler ignoring presses left of gutter.
func NewDragSelect(gutter float64, mods *Modifiers, cb Callbacks, opts ...Option) *DragSelect {
	d := &DragSelect{
		gutter:    gutter,
		mods:      mods,
		cb:        cb,
		zoomKey:   KeyControl,
		closeSize: DefaultCloseSize,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// SetMarkerMode switches marker mode on or off.
func (d *DragSelect) SetMarkerMode(on bool) { d.markerMode = on }

// MarkerMode reports whether marker mode is on.
func (d *DragSelect) MarkerMode() bool { return d.markerMode }

// Dragging reports whether a gesture is in progress.
func (d *DragSelect) Dragging() bool { return d.dragging }

// Marker returns the current overlay state.
func (d *DragSelect) Marker() Marker { return d.marker }

// Down starts a gesture at x. Presses inside the gutter are ignored and
// reported as false.
func (d *DragSelect) Down(x float64) bool {
	if x < d.gutter {
		return false
	}
	d.dragging = true
	d.startX = x
	d.marker = Marker{Left: x, Width: 0, Visible: true}
	return true
}

// Move updates the marker to the sorted span between the press and x.
func (d *DragSelect) Move(x float64) {
	if !d.dragging {
		return
	}
	x = math.Max(x, d.gutter)
	lo, hi := math.Min(d.startX, x), math.Max(d.startX, x)
	d.marker.Left, d.marker.Width = lo, hi-lo
}

// Up finishes the gesture at x and resolves it through inverse, the
// pixel-to-position scale of the plot area.
//
// With the zoom modifier held the span becomes a zoom request: both ends are
// floored, the start is clamped at 0 and the request is dropped unless
// start < end. Otherwise the span becomes a highlight. In marker mode the
// marker stays on screen instead and no callback runs.
func (d *DragSelect) Up(x float64, inverse scale.Func) Result {
	if !d.dragging {
		return Result{}
	}
	d.Move(x)
	d.dragging = false
	lo, hi := d.marker.Left, d.marker.Left+d.marker.Width

	if d.markerMode {
		if d.marker.Width < 1 {
			d.marker.Left, d.marker.Width = lo-0.5, 1
		}
		d.marker.Persistent = true
		return Result{Action: ActionMarker, Range: genome.NewRange(inverse(lo), inverse(hi))}
	}
	d.marker = Marker{}

	r := genome.NewRange(inverse(lo), inverse(hi)).Floor()
	r.Start = math.Max(0, r.Start)
	if !(r.Start < r.End) {
		return Result{}
	}
	if d.mods.Held(d.zoomKey) {
		if d.cb.Zoom != nil {
			d.cb.Zoom(r)
		}
		return Result{Action: ActionZoom, Range: r}
	}
	if d.cb.AddHighlight != nil {
		d.cb.AddHighlight(r)
	}
	return Result{Action: ActionHighlight, Range: r}
}

// Cancel aborts the gesture and hides a transient marker.
func (d *DragSelect) Cancel() {
	d.dragging = false
	if !d.marker.Persistent {
		d.marker = Marker{}
	}
}

// Hover updates the close affordance for a pointer at (x, y) and reports
// whether the pointer is over the close box.
func (d *DragSelect) Hover(x, y float64) bool {
	m := &d.marker
	inside := m.Persistent && x >= m.Left && x <= m.Left+m.Width
	m.CloseVisible = inside && d.cb.RemoveMarker != nil
	if !m.CloseVisible {
		return false
	}
	x1, y1, x2, y2 := m.CloseBox(d.closeSize)
	return x >= x1 && x <= x2 && y >= y1 && y <= y2
}

// Click removes a persistent marker when (x, y) hits its visible close box.
func (d *DragSelect) Click(x, y float64) Result {
	if !d.Hover(x, y) {
		return Result{}
	}
	d.marker = Marker{}
	d.cb.RemoveMarker()
	return Result{Action: ActionMarkerRemoved}
}

// ClearMarker hides any marker.
func (d *DragSelect) ClearMarker() {
	d.marker = Marker{}
	d.dragging = false
}

// Draw paints the marker and, when visible, its close affordance over the
// full height of the track.
func (d *DragSelect) Draw(ctx canvas.Context, height float64) {
	m := d.marker
	if !m.Visible {
		return
	}
	ctx.Save()
	defer ctx.Restore()
	ctx.SetFillColor(DefaultMarkerColor)
	ctx.FillRect(m.Left, 0, math.Max(m.Width, 1), height)
	if !m.CloseVisible {
		return
	}
	x1, y1, x2, y2 := m.CloseBox(d.closeSize)
	ctx.SetFillColor("white")
	ctx.FillRect(x1, y1, x2-x1, y2-y1)
	ctx.SetStrokeColor("black")
	ctx.SetLineWidth(1)
	p := canvas.NewPath()
	p.MoveTo(x1+2, y1+2)
	p.LineTo(x2-2, y2-2)
	p.MoveTo(x2-2, y1+2)
	p.LineTo(x1+2, y2-2)
	ctx.StrokePath(p)
}
