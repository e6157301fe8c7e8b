package track

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/interaction"
	"github.com/matzehuels/trackview/pkg/observability"
	"github.com/matzehuels/trackview/pkg/render/canvas"
	"github.com/matzehuels/trackview/pkg/render/canvas/raster"
	"github.com/matzehuels/trackview/pkg/render/hittest"
	"github.com/matzehuels/trackview/pkg/render/scale"
)

// Status is what the last frame of a track shows.
type Status int

const (
	StatusEmpty Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "unavailable"
	default:
		return "empty"
	}
}

// Frame is the drawing state handed to a variant.
type Frame struct {
	Ctx      canvas.Context
	Dims     genome.Dimensions
	View     View
	Expanded bool
	Logger   *log.Logger
}

// Variant fetches and draws one kind of track data.
type Variant[T any] interface {
	Kind() Kind
	// Fetch loads the data for view. It runs without the track lock held.
	Fetch(ctx context.Context, view View) (T, error)
	// ExpandedHeight returns the height data needs when expanded, or 0 to
	// keep the configured expanded height.
	ExpandedHeight(data T, view View, width float64) float64
	// Draw paints data and returns one hover box per hit target.
	Draw(f Frame, data T) []hittest.HoverBox
}

// plotter is implemented by variants whose x axis is the viewed range. Only
// those accept drag selection and show highlights.
type plotter interface {
	PlotRange(width float64) (x0, x1 float64)
}

// Renderer is the type-erased view of a Track used by orchestration code.
type Renderer interface {
	ID() string
	Label() string
	Kind() Kind
	Initialize(host canvas.Host) error
	Render(ctx context.Context, view View) error
	RenderLoading() error
	Resize() error
	Toggle() error
	Expanded() bool
	Status() Status
	Surface() *canvas.Surface
	HoverBoxes() []hittest.HoverBox
	Hover(x, y float64) Hover
	Click(x, y float64) (Click, bool)
	PointerDown(x, y float64) bool
	PointerMove(x, y float64)
	PointerUp(x, y float64) (interaction.Result, error)
}

// Layout defaults shared by all tracks.
const (
	DefaultHeight         = 40.0
	DefaultExpandedHeight = 120.0
	LabelFontSize         = 11.0
	PlaceholderColor      = "#f2f2f2"
)

type options struct {
	label          string
	logger         *log.Logger
	backend        canvas.Backend
	height         float64
	expandedHeight float64
	expanded       bool
	viewport       Viewport
	mods           *interaction.Modifiers
	onDetail       func(featureID string)
	popup          PopupPositioner
	removeMarker   func()
}

// Option configures a Track.
type Option func(*options)

// WithLabel sets the text drawn in the track's top-left corner.
func WithLabel(s string) Option { return func(o *options) { o.label = s } }

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

// WithBackend selects the drawing backend. The default is the raster backend.
func WithBackend(b canvas.Backend) Option { return func(o *options) { o.backend = b } }

// WithHeight sets the collapsed height in logical pixels.
func WithHeight(h float64) Option { return func(o *options) { o.height = h } }

// WithExpandedHeight sets the expanded height used when the data does not
// determine one.
func WithExpandedHeight(h float64) Option { return func(o *options) { o.expandedHeight = h } }

// WithExpanded starts the track expanded.
func WithExpanded(on bool) Option { return func(o *options) { o.expanded = on } }

// WithViewport enables drag selection. Completed gestures call back into vp;
// mods is consulted for the zoom modifier.
func WithViewport(vp Viewport, mods *interaction.Modifiers) Option {
	return func(o *options) { o.viewport, o.mods = vp, mods }
}

// WithDetail sets the callback invoked with the id of a clicked feature.
func WithDetail(fn func(featureID string)) Option { return func(o *options) { o.onDetail = fn } }

// WithPopup sets the collaborator that positions detail popups.
func WithPopup(p PopupPositioner) Option { return func(o *options) { o.popup = p } }

// WithMarkerRemoval enables the close affordance on persistent markers.
func WithMarkerRemoval(fn func()) Option { return func(o *options) { o.removeMarker = fn } }

// Track renders one variant onto its own surface.
//
// All methods are safe for concurrent use. Render releases the lock while
// data is fetched; results of superseded renders are discarded.
type Track[T any] struct {
	id      string
	variant Variant[T]
	opts    options
	surface *canvas.Surface
	hits    *hittest.Registry
	drag    *interaction.DragSelect
	logger  *log.Logger

	mu        sync.Mutex
	expanded  bool
	lastExpH  float64
	status    Status
	data      T
	hasData   bool
	requested View
	issued    uint64
	lastErr   error
}

// New creates an uninitialized track.
func New[T any](id string, v Variant[T], opts ...Option) *Track[T] {
	o := options{
		height:         DefaultHeight,
		expandedHeight: DefaultExpandedHeight,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.backend == nil {
		o.backend = raster.New()
	}
	t := &Track[T]{
		id:       id,
		variant:  v,
		opts:     o,
		surface:  canvas.NewSurface(o.backend, o.height),
		hits:     hittest.New(),
		logger:   o.logger.With("track", id),
		expanded: o.expanded,
	}
	if p, ok := v.(plotter); ok && o.viewport != nil {
		x0, _ := p.PlotRange(0)
		cb := interaction.Callbacks{}
		if o.removeMarker != nil {
			// the track runs the real callback once its lock is released
			cb.RemoveMarker = func() {}
		}
		t.drag = interaction.NewDragSelect(x0, o.mods, cb)
	}
	return t
}

func (t *Track[T]) ID() string               { return t.id }
func (t *Track[T]) Label() string            { return t.opts.label }
func (t *Track[T]) Kind() Kind               { return t.variant.Kind() }
func (t *Track[T]) Surface() *canvas.Surface { return t.surface }

// HoverBoxes returns the hit targets of the current frame.
func (t *Track[T]) HoverBoxes() []hittest.HoverBox { return t.hits.Boxes() }

// Initialize attaches the track to host and allocates its backing store.
func (t *Track[T]) Initialize(host canvas.Host) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.surface.Initialize(host); err != nil {
		return errors.Wrap(errors.GetCode(err), err, "initialize track %s", t.id)
	}
	t.logger.Debug("track initialized", "kind", t.variant.Kind())
	return nil
}

// Initialized reports whether Initialize succeeded.
func (t *Track[T]) Initialized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.surface.Initialized()
}

// Status returns what the current frame shows.
func (t *Track[T]) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// HitTargetsStale reports whether the hit-test registry does not describe
// a real frame, e.g. while the loading placeholder is shown.
func (t *Track[T]) HitTargetsStale() bool {
	return t.Status() != StatusReady
}

// Err returns the error of the last failed fetch, if the track currently
// shows the unavailable placeholder.
func (t *Track[T]) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusFailed {
		return nil
	}
	return t.lastErr
}

// Data returns the committed data.
func (t *Track[T]) Data() (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data, t.hasData
}

// Expanded reports whether the track is expanded.
func (t *Track[T]) Expanded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expanded
}

// Render draws view. It shows the loading placeholder immediately, fetches
// the data and draws it unless a newer Render was issued meanwhile, in which
// case the result is dropped and nil is returned.
func (t *Track[T]) Render(ctx context.Context, view View) error {
	kind := string(t.variant.Kind())
	start := time.Now()
	observability.Track().OnRenderStart(ctx, t.id, kind)

	t.mu.Lock()
	if !t.surface.Initialized() {
		t.mu.Unlock()
		return t.notInitialized("render")
	}
	t.issued++
	token := t.issued
	t.requested = view
	if err := t.drawPlaceholderLocked(StatusLoading); err != nil {
		t.mu.Unlock()
		return err
	}
	t.mu.Unlock()

	data, err := t.variant.Fetch(ctx, view)

	t.mu.Lock()
	defer t.mu.Unlock()
	if token != t.issued {
		t.logger.Debug("discarding stale fetch result", "token", token, "latest", t.issued)
		observability.Track().OnFetchDiscarded(ctx, t.id, token)
		return nil
	}
	if err != nil {
		t.logger.Error("track data unavailable", "region", view.Region(), "err", err)
		t.hasData = false
		t.lastErr = err
		if derr := t.drawPlaceholderLocked(StatusFailed); derr != nil {
			t.logger.Warn("failed to draw placeholder", "err", derr)
		}
		ferr := errors.Wrap(errors.ErrCodeFetchFailed, err, "track %s", t.id)
		observability.Track().OnRenderComplete(ctx, t.id, kind, time.Since(start), ferr)
		return ferr
	}
	t.data, t.hasData, t.lastErr = data, true, nil
	err = t.drawLocked()
	observability.Track().OnRenderComplete(ctx, t.id, kind, time.Since(start), err)
	return err
}

// RenderLoading shows the loading placeholder and marks hit targets stale.
func (t *Track[T]) RenderLoading() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.surface.Initialized() {
		return t.notInitialized("render loading placeholder")
	}
	return t.drawPlaceholderLocked(StatusLoading)
}

// Resize re-syncs the backing store to the host and redraws the current
// frame if the store was reallocated.
func (t *Track[T]) Resize() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.surface.Initialized() {
		return t.notInitialized("resize")
	}
	changed, err := t.surface.SyncDimensions()
	if err != nil || !changed {
		return err
	}
	return t.redrawLocked()
}

// Toggle switches between collapsed and expanded.
func (t *Track[T]) Toggle() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setExpandedLocked(!t.expanded)
}

// Expand expands the track.
func (t *Track[T]) Expand() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setExpandedLocked(true)
}

// Collapse collapses the track.
func (t *Track[T]) Collapse() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setExpandedLocked(false)
}

func (t *Track[T]) setExpandedLocked(on bool) error {
	if !t.surface.Initialized() {
		return t.notInitialized("toggle")
	}
	if t.expanded == on {
		return nil
	}
	t.expanded = on
	t.logger.Debug("track toggled", "expanded", on)
	return t.redrawLocked()
}

// Hover looks up the feature under (x, y).
func (t *Track[T]) Hover(x, y float64) Hover {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.drag != nil {
		before := t.drag.Marker().CloseVisible
		overClose := t.drag.Hover(x, y)
		if t.drag.Marker().CloseVisible != before {
			t.redrawIfReadyLocked()
		}
		if overClose {
			return Hover{Cursor: "pointer"}
		}
	}
	if t.status != StatusReady {
		return Hover{Cursor: "default"}
	}
	hb, ok := t.hits.FindAt(x, y)
	if !ok {
		return Hover{Cursor: "default"}
	}
	return Hover{Found: true, Label: hb.Label, Feature: hb.Element, Box: hb.Box, Cursor: "pointer"}
}

// Click resolves a click at (x, y). A click on a feature invokes the detail
// callback with its id; a click on a marker's close box removes the marker.
func (t *Track[T]) Click(x, y float64) (Click, bool) {
	t.mu.Lock()
	if t.drag != nil {
		if res := t.drag.Click(x, y); res.Action == interaction.ActionMarkerRemoved {
			t.redrawIfReadyLocked()
			t.mu.Unlock()
			t.opts.removeMarker()
			return Click{}, false
		}
	}
	if t.status != StatusReady {
		t.mu.Unlock()
		return Click{}, false
	}
	hb, ok := t.hits.FindAt(x, y)
	t.mu.Unlock()
	if !ok || hb.Element == nil {
		return Click{}, false
	}

	c := Click{FeatureID: hb.Element.FeatureID(), Feature: hb.Element, Anchor: hb.Box}
	if t.opts.popup != nil {
		c.PopupX, c.PopupY = t.opts.popup.PositionPopup(hb.Box)
	}
	if t.opts.onDetail != nil {
		t.opts.onDetail(c.FeatureID)
	}
	return c, true
}

// PointerDown starts a drag selection. It reports false when the track
// does not accept drags or the press is inside the axis gutter.
func (t *Track[T]) PointerDown(x, y float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.drag == nil {
		return false
	}
	t.drag.SetMarkerMode(t.opts.viewport.MarkerMode())
	if !t.drag.Down(x) {
		return false
	}
	t.redrawIfReadyLocked()
	return true
}

// PointerMove updates the selection marker of a drag in progress.
func (t *Track[T]) PointerMove(x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.drag == nil || !t.drag.Dragging() {
		return
	}
	t.drag.Move(x)
	t.redrawIfReadyLocked()
}

// PointerUp finishes a drag. Zoom and highlight requests are sent to the
// viewport after the track lock is released.
func (t *Track[T]) PointerUp(x, y float64) (interaction.Result, error) {
	t.mu.Lock()
	if t.drag == nil || !t.drag.Dragging() {
		t.mu.Unlock()
		return interaction.Result{}, nil
	}
	res := t.drag.Up(x, t.inverseLocked())
	t.redrawIfReadyLocked()
	t.mu.Unlock()

	vp := t.opts.viewport
	switch res.Action {
	case interaction.ActionZoom:
		t.logger.Debug("zoom to selection", "range", res.Range)
		return res, vp.SetViewRange(res.Range)
	case interaction.ActionHighlight:
		_, err := vp.AddHighlight(res.Range)
		return res, err
	}
	return res, nil
}

// ClearMarker removes a persistent marker.
func (t *Track[T]) ClearMarker() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.drag != nil {
		t.drag.ClearMarker()
		t.redrawIfReadyLocked()
	}
}

// XScale returns the position-to-pixel scale of the current view, or nil
// for tracks without a genomic x axis.
func (t *Track[T]) XScale() scale.Func {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.variant.(plotter)
	if !ok || !t.surface.Initialized() {
		return nil
	}
	dims, _ := t.surface.Dimensions()
	x0, x1 := p.PlotRange(dims.Width)
	r := t.requested.Range
	return scale.Linear([2]float64{r.Start, r.End}, [2]float64{x0, x1})
}

func (t *Track[T]) inverseLocked() scale.Func {
	dims, _ := t.surface.Dimensions()
	x0, x1 := t.variant.(plotter).PlotRange(dims.Width)
	r := t.requested.Range
	return scale.Inverse([2]float64{r.Start, r.End}, [2]float64{x0, x1})
}

func (t *Track[T]) notInitialized(op string) error {
	return errors.Wrap(errors.ErrCodeNotInitialized, canvas.ErrNotInitialized, "%s track %s", op, t.id)
}

func (t *Track[T]) redrawIfReadyLocked() {
	if t.status != StatusReady {
		return
	}
	if err := t.drawLocked(); err != nil {
		t.logger.Warn("redraw failed", "err", err)
	}
}

// redrawLocked repeats the current frame, data or placeholder, at the
// current size.
func (t *Track[T]) redrawLocked() error {
	if t.status == StatusReady && t.hasData {
		return t.drawLocked()
	}
	return t.drawPlaceholderLocked(t.status)
}

func (t *Track[T]) heightLocked(width float64) float64 {
	if !t.expanded {
		return t.opts.height
	}
	if t.hasData {
		if h := t.variant.ExpandedHeight(t.data, t.requested, width); h > 0 {
			t.lastExpH = h
			return h
		}
	}
	if t.lastExpH > 0 {
		return t.lastExpH
	}
	return t.opts.expandedHeight
}

// drawLocked draws the committed data. The expanded height is derived from
// the data before the surface is resized.
func (t *Track[T]) drawLocked() error {
	dims, err := t.surface.Dimensions()
	if err != nil {
		return err
	}
	t.surface.SetHeight(t.heightLocked(dims.Width))
	if _, err := t.surface.SyncDimensions(); err != nil {
		return err
	}
	if err := t.surface.Clear(); err != nil {
		return err
	}
	ctx, _ := t.surface.Context()
	dims, _ = t.surface.Dimensions()

	ctx.Save()
	boxes := t.variant.Draw(Frame{
		Ctx:      ctx,
		Dims:     dims,
		View:     t.requested,
		Expanded: t.expanded,
		Logger:   t.logger,
	}, t.data)
	ctx.Restore()
	t.hits.Replace(boxes)

	t.drawOverlaysLocked(ctx, dims)
	t.drawLabel(ctx, dims)
	t.status = StatusReady
	return nil
}

func (t *Track[T]) drawPlaceholderLocked(status Status) error {
	t.status = status
	t.hits.Clear()

	dims, err := t.surface.Dimensions()
	if err != nil {
		return err
	}
	if !t.expanded {
		t.surface.SetHeight(t.opts.height)
	} else {
		t.surface.SetHeight(t.heightLocked(dims.Width))
	}
	if _, err := t.surface.SyncDimensions(); err != nil {
		return err
	}
	if err := t.surface.Clear(); err != nil {
		return err
	}
	ctx, _ := t.surface.Context()
	dims, _ = t.surface.Dimensions()

	ctx.Save()
	ctx.SetFillColor(PlaceholderColor)
	ctx.FillRect(0, 0, dims.Width, dims.Height)
	if status == StatusLoading || status == StatusFailed {
		ctx.SetFillColor("#888888")
		ctx.SetFontSize(LabelFontSize)
		text := "Loading…"
		if status == StatusFailed {
			text = "Unavailable"
		}
		ctx.FillText(text, dims.Width/2, dims.Height/2, canvas.AlignCenter)
	}
	ctx.Restore()
	t.drawLabel(ctx, dims)
	return nil
}

func (t *Track[T]) drawOverlaysLocked(ctx canvas.Context, dims genome.Dimensions) {
	p, ok := t.variant.(plotter)
	if !ok {
		return
	}
	x0, x1 := p.PlotRange(dims.Width)
	view := t.requested
	xs := scale.Linear([2]float64{view.Range.Start, view.Range.End}, [2]float64{x0, x1})

	ctx.Save()
	clip := canvas.NewPath()
	clip.Rect(x0, 0, x1-x0, dims.Height)
	ctx.ClipPath(clip)
	for _, h := range view.Highlights {
		if h.Chromosome != view.Chrom || !h.Range.Overlaps(view.Range) {
			continue
		}
		hx0, hx1 := xs(h.Range.Start), xs(h.Range.End)
		ctx.SetFillColor(h.Color)
		ctx.FillRect(hx0, 0, max(hx1-hx0, 1), dims.Height)
	}
	ctx.Restore()

	if t.drag != nil {
		t.drag.Draw(ctx, dims.Height)
	}
}

func (t *Track[T]) drawLabel(ctx canvas.Context, dims genome.Dimensions) {
	if t.opts.label == "" {
		return
	}
	x := 4.0
	if p, ok := t.variant.(plotter); ok {
		x0, _ := p.PlotRange(dims.Width)
		x += x0
	}
	ctx.Save()
	ctx.SetFontSize(LabelFontSize)
	w := ctx.MeasureText(t.opts.label)
	ctx.SetFillColor("rgba(255, 255, 255, 0.7)")
	ctx.FillRect(x-2, 1, w+4, LabelFontSize+2)
	ctx.SetFillColor("#333333")
	ctx.FillText(t.opts.label, x, 2+LabelFontSize/2, canvas.AlignLeft)
	ctx.Restore()
}
