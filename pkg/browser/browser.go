// Package browser assembles tracks, the session and a data source into a
// genome browser view.
//
// A Browser builds one track per configured [[track]] entry, mounts all of
// them in a shared host container and renders them concurrently:
//
//	b, err := browser.New(cfg, sess, src, browser.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//
//	if err := b.RenderAll(ctx); err != nil {
//	    logger.Warn("some tracks failed", "err", err)
//	}
//	b.ComposePNG(w)
//
// Host resizes are debounced; only the last width within the debounce
// window triggers a redraw.
package browser

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/trackview/pkg/config"
	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/interaction"
	"github.com/matzehuels/trackview/pkg/render/canvas"
	"github.com/matzehuels/trackview/pkg/render/canvas/raster"
	"github.com/matzehuels/trackview/pkg/render/canvas/svg"
	"github.com/matzehuels/trackview/pkg/session"
	"github.com/matzehuels/trackview/pkg/source"
	"github.com/matzehuels/trackview/pkg/track"
)

// DefaultConcurrency bounds concurrent track renders.
const DefaultConcurrency = 4

// DetailFunc receives clicks on features of band tracks.
type DetailFunc func(trackID, featureID string)

// Option configures a Browser.
type Option func(*Browser)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(b *Browser) { b.logger = l }
}

// WithDetail sets the handler for feature clicks.
func WithDetail(fn DetailFunc) Option {
	return func(b *Browser) { b.onDetail = fn }
}

// WithPopup sets the popup positioner passed to every track.
func WithPopup(p track.PopupPositioner) Option {
	return func(b *Browser) { b.popup = p }
}

// WithConcurrency bounds concurrent track renders.
func WithConcurrency(n int) Option {
	return func(b *Browser) { b.concurrency = n }
}

// viewCache is implemented by caching sources.
type viewCache interface {
	InvalidateSample(sample string)
	RetainView(sample, chrom string, r genome.Range) int
}

// Browser owns the tracks of one view.
type Browser struct {
	cfg     *config.Config
	sess    *session.Session
	src     source.Source
	host    *canvas.Container
	mods    *interaction.Modifiers
	backend canvas.Backend

	tracks []track.Renderer
	byID   map[string]track.Renderer

	resize      *Debouncer
	concurrency int
	onDetail    DetailFunc
	popup       track.PopupPositioner
	logger      *log.Logger
	unsubscribe func()

	mu       sync.Mutex
	rendered bool
}

// New builds the tracks described by cfg and mounts them.
func New(cfg *config.Config, sess *session.Session, src source.Source, opts ...Option) (*Browser, error) {
	if cfg == nil || sess == nil || src == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "browser needs a config, a session and a source")
	}
	b := &Browser{
		cfg:         cfg,
		sess:        sess,
		src:         src,
		host:        canvas.NewContainer(cfg.Browser.Width, cfg.Browser.PixelRatio),
		mods:        interaction.NewModifiers(),
		byID:        make(map[string]track.Renderer),
		resize:      NewDebouncer(cfg.Browser.ResizeDebounce),
		concurrency: DefaultConcurrency,
	}
	for _, o := range opts {
		o(b)
	}
	if b.logger == nil {
		b.logger = log.Default()
	}
	b.backend = backendFor(cfg.Browser.Backend)

	for _, tc := range cfg.Tracks {
		t, err := b.build(tc)
		if err != nil {
			return nil, err
		}
		if err := t.Initialize(b.host); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "mount track %s", tc.ID)
		}
		b.tracks = append(b.tracks, t)
		b.byID[tc.ID] = t
	}

	b.unsubscribe = sess.Subscribe(b.onSessionChange)
	return b, nil
}

func backendFor(name string) canvas.Backend {
	if name == "svg" {
		return svg.New()
	}
	return raster.New()
}

func (b *Browser) onSessionChange(c session.Change) {
	b.logger.Debug("view changed", "kind", c.Kind, "region", c.State.Range)
	vc, ok := b.src.(viewCache)
	if !ok {
		return
	}
	switch c.Kind {
	case session.ChangeSample:
		vc.InvalidateSample(c.State.Sample)
	case session.ChangeView, session.ChangeChromosome:
		vc.RetainView(c.State.Sample, c.State.Chrom, c.State.Range)
	}
}

// Session returns the session.
func (b *Browser) Session() *session.Session { return b.sess }

// Modifiers returns the modifier-key state shared by all tracks.
func (b *Browser) Modifiers() *interaction.Modifiers { return b.mods }

// Host returns the container all tracks are mounted in.
func (b *Browser) Host() *canvas.Container { return b.host }

// Tracks returns the tracks in display order.
func (b *Browser) Tracks() []track.Renderer { return b.tracks }

// Track returns the track with the given id.
func (b *Browser) Track(id string) (track.Renderer, error) {
	t, ok := b.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeTrackNotFound, "no track %q", id)
	}
	return t, nil
}

// RenderAll renders every track for the current view. Tracks render
// concurrently; a failing track shows its placeholder and does not stop
// the others. The returned error joins all track failures.
func (b *Browser) RenderAll(ctx context.Context) error {
	view := track.ViewOf(b.sess)
	start := time.Now()

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(max(1, b.concurrency))
	for _, t := range b.tracks {
		g.Go(func() error {
			if err := t.Render(ctx, view); err != nil {
				b.logger.Warn("track render failed", "track", t.ID(), "err", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	b.mu.Lock()
	b.rendered = true
	b.mu.Unlock()
	b.logger.Debug("rendered view", "region", view.Region(), "tracks", len(b.tracks), "failed", len(errs), "took", time.Since(start))
	return stderrors.Join(errs...)
}

// RenderLoading switches every track to its loading placeholder.
func (b *Browser) RenderLoading() error {
	var errs []error
	for _, t := range b.tracks {
		errs = append(errs, t.RenderLoading())
	}
	return stderrors.Join(errs...)
}

// Resize records a new host width. Tracks are resized once the width has
// been stable for the configured debounce delay.
func (b *Browser) Resize(width float64) {
	b.host.SetWidth(width)
	b.resize.Trigger(b.resizeNow)
}

// FlushResize applies a pending resize immediately.
func (b *Browser) FlushResize() {
	if b.resize.Pending() {
		b.resize.Stop()
		b.resizeNow()
	}
}

func (b *Browser) resizeNow() {
	b.mu.Lock()
	rendered := b.rendered
	b.mu.Unlock()
	if !rendered {
		return
	}
	width := b.host.BoundingWidth()
	for _, t := range b.tracks {
		if err := t.Resize(); err != nil {
			b.logger.Warn("track resize failed", "track", t.ID(), "width", width, "err", err)
		}
	}
	b.logger.Debug("resized tracks", "width", width)
}

// Height returns the summed logical height of all tracks.
func (b *Browser) Height() float64 {
	h := 0.0
	for _, t := range b.tracks {
		h += t.Surface().Height()
	}
	return h
}

// TrackAt returns the track under the panel y coordinate and the y offset
// within that track.
func (b *Browser) TrackAt(y float64) (track.Renderer, float64, bool) {
	top := 0.0
	for _, t := range b.tracks {
		h := t.Surface().Height()
		if y >= top && y < top+h {
			return t, y - top, true
		}
		top += h
	}
	return nil, 0, false
}

// Close stops pending resizes and detaches from the session.
func (b *Browser) Close() error {
	b.resize.Stop()
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
	return nil
}
