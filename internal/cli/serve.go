package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/interaction"
	"github.com/matzehuels/trackview/pkg/observability"
	"github.com/matzehuels/trackview/pkg/render/hittest"
	"github.com/matzehuels/trackview/pkg/session"
	"github.com/matzehuels/trackview/pkg/track"
)

// =============================================================================
// Command
// =============================================================================

// serveOpts holds options for the serve command.
type serveOpts struct {
	view    viewFlags
	addr    string
	backend string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tracks over HTTP",
		Long: `Serve keeps one view open and exposes its tracks, hit-testing and view
changes as a small HTTP API. Prometheus metrics are served at /metrics.`,
		Example: `  trackview serve --data ./data --sample s1 --addr :8080
  curl -X POST 'localhost:8080/view/zoom?dir=in'
  curl 'localhost:8080/tracks/genes/hover?x=120&y=20'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	opts.view.register(cmd)
	c.completeViewFlags(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().StringVar(&opts.backend, "backend", "raster", "drawing backend: raster or svg")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks := observability.NewPrometheus(reg)
	observability.SetTrackHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetSourceHooks(hooks)
	defer observability.Reset()

	opts.view.backend = opts.backend
	a, err := c.open(ctx, opts.view)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := newServer(a, c.Logger, reg)
	if err := srv.render(ctx); err != nil {
		c.Logger.Warn("initial render incomplete", "err", err)
	}

	httpSrv := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	printSuccess("Serving %d tracks", len(a.browser.Tracks()))
	printKeyValue("Address", StyleLink.Render("http://"+opts.addr))
	printKeyValue("Metrics", StyleLink.Render("http://"+opts.addr+"/metrics"))

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", opts.addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Server
// =============================================================================

// zoomKey is the modifier a drag request holds to zoom instead of highlight.
const zoomKey = interaction.KeyControl

// server exposes one app over HTTP. Handlers that change the view re-render
// before responding; mu keeps image reads from racing a render.
type server struct {
	app    *app
	logger *log.Logger
	reg    *prometheus.Registry

	mu sync.RWMutex
}

func newServer(a *app, logger *log.Logger, reg *prometheus.Registry) *server {
	return &server{app: a, logger: logger, reg: reg}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/view", s.getView)
	r.Post("/view", s.setView)
	r.Post("/view/zoom", s.zoom)
	r.Post("/view/pan", s.pan)
	r.Post("/view/marker-mode", s.markerMode)
	r.Post("/view/highlights", s.addHighlight)
	r.Delete("/view/highlights/{hid}", s.removeHighlight)
	r.Post("/view/resize", s.resize)
	r.Get("/panel", s.panel)

	r.Route("/tracks", func(r chi.Router) {
		r.Get("/", s.listTracks)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/image", s.trackImage)
			r.Get("/hover", s.hover)
			r.Post("/click", s.click)
			r.Post("/toggle", s.toggle)
			r.Post("/drag", s.drag)
		})
	})

	if s.reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *server) render(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.app.browser.RenderAll(ctx)
}

// mutate applies fn and re-renders when it succeeds. Track failures are
// logged by the browser and do not fail the request.
func (s *server) mutate(w http.ResponseWriter, r *http.Request, fn func() error) bool {
	if err := fn(); err != nil {
		writeError(w, err)
		return false
	}
	if err := s.render(r.Context()); err != nil {
		s.logger.Warn("render incomplete", "err", err)
	}
	return true
}

// =============================================================================
// View Handlers
// =============================================================================

// viewRequest is the body of POST /view. Zero fields are left unchanged.
type viewRequest struct {
	Sample     string  `json:"sample"`
	Chromosome string  `json:"chromosome"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
}

func (s *server) getView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.sess.State())
}

func (s *server) setView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode view"))
		return
	}
	sess := s.app.sess
	ok := s.mutate(w, r, func() error {
		if req.Sample != "" && req.Sample != sess.Sample() {
			sess.SetSample(req.Sample)
		}
		if req.Chromosome != "" && req.Chromosome != sess.Chromosome() {
			info, err := s.app.src.ChromInfo(r.Context(), req.Chromosome)
			if err != nil {
				return err
			}
			if err := sess.SetChromosome(req.Chromosome, info.Size); err != nil {
				return err
			}
		}
		if req.End > req.Start {
			return sess.SetViewRange(genome.Range{Start: req.Start, End: req.End})
		}
		return nil
	})
	if ok {
		writeJSON(w, http.StatusOK, sess.State())
	}
}

func (s *server) zoom(w http.ResponseWriter, r *http.Request) {
	sess := s.app.sess
	ok := s.mutate(w, r, func() error {
		switch r.URL.Query().Get("dir") {
		case "in":
			return sess.ZoomIn()
		case "out", "":
			return sess.ZoomOut()
		default:
			return errors.New(errors.ErrCodeInvalidInput, "dir must be in or out")
		}
	})
	if ok {
		writeJSON(w, http.StatusOK, sess.State())
	}
}

func (s *server) pan(w http.ResponseWriter, r *http.Request) {
	fraction, err := floatParam(r, "fraction")
	if err != nil {
		writeError(w, err)
		return
	}
	if s.mutate(w, r, func() error { return s.app.sess.Pan(fraction) }) {
		writeJSON(w, http.StatusOK, s.app.sess.State())
	}
}

func (s *server) markerMode(w http.ResponseWriter, r *http.Request) {
	on, err := strconv.ParseBool(r.URL.Query().Get("on"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "on must be a boolean"))
		return
	}
	s.app.sess.SetMarkerMode(on)
	writeJSON(w, http.StatusOK, s.app.sess.State())
}

func (s *server) addHighlight(w http.ResponseWriter, r *http.Request) {
	var rng genome.Range
	if err := json.NewDecoder(r.Body).Decode(&rng); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode range"))
		return
	}
	var h genome.Highlight
	ok := s.mutate(w, r, func() error {
		var err error
		h, err = s.app.sess.AddHighlight(rng)
		return err
	})
	if ok {
		writeJSON(w, http.StatusCreated, h)
	}
}

func (s *server) removeHighlight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "hid")
	if s.mutate(w, r, func() error { return s.app.sess.RemoveHighlight(id) }) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *server) resize(w http.ResponseWriter, r *http.Request) {
	width, err := floatParam(r, "width")
	if err != nil {
		writeError(w, err)
		return
	}
	if width <= 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "width must be positive"))
		return
	}
	s.mu.Lock()
	s.app.browser.Resize(width)
	s.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
}

func (s *server) panel(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.app.browser
	if s.app.cfg.Browser.Backend == "svg" {
		w.Header().Set("Content-Type", "image/svg+xml")
		if err := b.ComposeSVG(w); err != nil {
			writeError(w, err)
		}
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := b.ComposePNG(w); err != nil {
		writeError(w, err)
	}
}

// =============================================================================
// Track Handlers
// =============================================================================

// trackInfo is one entry of GET /tracks.
type trackInfo struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Kind     string  `json:"kind"`
	Status   string  `json:"status"`
	Expanded bool    `json:"expanded"`
	Top      float64 `json:"top"`
	Height   float64 `json:"height"`
	Features int     `json:"features"`
}

func (s *server) listTracks(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		out []trackInfo
		top float64
	)
	for _, t := range s.app.browser.Tracks() {
		h := t.Surface().Height()
		out = append(out, trackInfo{
			ID:       t.ID(),
			Label:    t.Label(),
			Kind:     string(t.Kind()),
			Status:   t.Status().String(),
			Expanded: t.Expanded(),
			Top:      top,
			Height:   h,
			Features: len(t.HoverBoxes()),
		})
		top += h
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) lookup(w http.ResponseWriter, r *http.Request) (track.Renderer, bool) {
	t, err := s.app.browser.Track(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return t, true
}

func (s *server) trackImage(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.lookup(w, r); !ok {
		return
	}
	if s.app.cfg.Browser.Backend == "svg" {
		w.Header().Set("Content-Type", "image/svg+xml")
	} else {
		w.Header().Set("Content-Type", "image/png")
	}
	if _, err := s.app.browser.WriteTrack(w, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
	}
}

// hoverResponse is the body of GET /tracks/{id}/hover.
type hoverResponse struct {
	Found     bool        `json:"found"`
	Label     string      `json:"label,omitempty"`
	FeatureID string      `json:"feature_id,omitempty"`
	Box       hittest.Box `json:"box"`
	Cursor    string      `json:"cursor"`
}

func (s *server) hover(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	x, y, err := pointParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h := t.Hover(x, y)
	resp := hoverResponse{
		Found:  h.Found,
		Label:  h.Label,
		Box:    h.Box,
		Cursor: h.Cursor,
	}
	if h.Feature != nil {
		resp.FeatureID = h.Feature.FeatureID()
	}
	writeJSON(w, http.StatusOK, resp)
}

// clickResponse is the body of POST /tracks/{id}/click.
type clickResponse struct {
	Found     bool          `json:"found"`
	FeatureID string        `json:"feature_id,omitempty"`
	Anchor    hittest.Box   `json:"anchor"`
	View      session.State `json:"view"`
}

func (s *server) click(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	x, y, err := pointParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var c track.Click
	var found bool
	// A click on the overview switches chromosome, so re-render afterwards.
	s.mutate(w, r, func() error {
		c, found = t.Click(x, y)
		return nil
	})
	writeJSON(w, http.StatusOK, clickResponse{
		Found:     found,
		FeatureID: c.FeatureID,
		Anchor:    c.Anchor,
		View:      s.app.sess.State(),
	})
}

func (s *server) toggle(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	err := t.Toggle()
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"expanded": t.Expanded()})
}

// dragRequest is the body of POST /tracks/{id}/drag: a complete gesture.
type dragRequest struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
	Y    float64 `json:"y"`
	// Zoom holds the zoom modifier for the duration of the gesture.
	Zoom bool `json:"zoom"`
}

func (s *server) drag(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req dragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode drag"))
		return
	}
	mods := s.app.browser.Modifiers()
	if req.Zoom {
		mods.Press(zoomKey)
		defer mods.Release(zoomKey)
	}
	if !t.PointerDown(req.From, req.Y) {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "track %s does not accept drag selection at x=%g", t.ID(), req.From))
		return
	}
	t.PointerMove(req.To, req.Y)
	var res any
	ok = s.mutate(w, r, func() error {
		result, err := t.PointerUp(req.To, req.Y)
		res = map[string]any{"action": result.Action.String(), "range": result.Range}
		return err
	})
	if ok {
		writeJSON(w, http.StatusOK, res)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func floatParam(r *http.Request, name string) (float64, error) {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s", name)
	}
	return v, nil
}

func pointParams(r *http.Request) (float64, float64, error) {
	x, err := floatParam(r, "x")
	if err != nil {
		return 0, 0, err
	}
	y, err := floatParam(r, "y")
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeTrackNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidRange, errors.ErrCodeInvalidPath, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotInitialized, errors.ErrCodeNotAttached:
		return http.StatusConflict
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeFetchFailed, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

// requestID tags every request with an X-Request-Id, keeping one supplied
// by the client.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).Round(time.Microsecond),
			"id", w.Header().Get("X-Request-Id"),
		)
	})
}
