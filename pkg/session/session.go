// Package session holds the viewport state shared by all tracks.
//
// A Session is the single writer of the current sample, chromosome,
// base-pair range, highlights and marker mode. Tracks only read it and
// request changes through its methods; every accepted change is announced
// to subscribers, which typically re-render the affected tracks.
//
// # Usage
//
//	sess, err := session.New("sample-1", "1", genome.Range{Start: 0, End: 1e6},
//	    session.WithChromSize(248_956_422))
//	if err != nil {
//	    return err
//	}
//	unsubscribe := sess.Subscribe(func(c session.Change) {
//	    browser.RenderAll(ctx)
//	})
//	defer unsubscribe()
//
//	sess.ZoomOut()
package session

import (
	"math"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/genome"
)

// MinRangeLen is the smallest viewed range in base pairs.
const MinRangeLen = 10

// ChangeKind identifies what part of the state changed.
type ChangeKind int

const (
	ChangeView ChangeKind = iota
	ChangeChromosome
	ChangeSample
	ChangeHighlights
	ChangeMarkerMode
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeView:
		return "view"
	case ChangeChromosome:
		return "chromosome"
	case ChangeSample:
		return "sample"
	case ChangeHighlights:
		return "highlights"
	case ChangeMarkerMode:
		return "marker_mode"
	default:
		return "unknown"
	}
}

// Change is delivered to subscribers after the state was updated.
type Change struct {
	Kind  ChangeKind
	State State
}

// State is a snapshot of the session.
type State struct {
	Sample     string             `json:"sample"`
	Chrom      string             `json:"chrom"`
	Range      genome.Range       `json:"range"`
	ChromSize  float64            `json:"chrom_size,omitempty"`
	Highlights []genome.Highlight `json:"highlights"`
	MarkerMode bool               `json:"marker_mode"`
}

// Listener receives state changes. It is called without the session lock
// held and may call back into the session.
type Listener func(Change)

// Option configures a Session.
type Option func(*Session)

// WithChromSize sets the length of the initial chromosome; ranges are
// clamped to it.
func WithChromSize(size float64) Option {
	return func(s *Session) { s.chromSize = size }
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is the viewport state. It is safe for concurrent use.
type Session struct {
	mu         sync.RWMutex
	sample     string
	chrom      string
	rng        genome.Range
	chromSize  float64
	highlights []genome.Highlight
	markerMode bool

	listeners map[int]Listener
	nextID    int
	logger    *log.Logger
}

// New creates a session viewing r on chrom for sample.
func New(sample, chrom string, r genome.Range, opts ...Option) (*Session, error) {
	if err := errors.ValidateChromosome(chrom); err != nil {
		return nil, err
	}
	if err := errors.ValidateRange(r.Start, r.End); err != nil {
		return nil, err
	}
	s := &Session{
		sample:    sample,
		chrom:     chrom,
		rng:       r,
		listeners: make(map[int]Listener),
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.rng = s.clamp(r)
	return s, nil
}

// XRange returns the viewed base-pair range.
func (s *Session) XRange() genome.Range {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rng
}

// Chromosome returns the viewed chromosome.
func (s *Session) Chromosome() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chrom
}

// Sample returns the viewed sample.
func (s *Session) Sample() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sample
}

// MarkerMode reports whether clicks place persistent markers.
func (s *Session) MarkerMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markerMode
}

// Highlights returns a copy of all highlights.
func (s *Session) Highlights() []genome.Highlight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.highlights)
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		Sample:     s.sample,
		Chrom:      s.chrom,
		Range:      s.rng,
		ChromSize:  s.chromSize,
		Highlights: slices.Clone(s.highlights),
		MarkerMode: s.markerMode,
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// SetViewRange moves the view to r, clamped to the chromosome.
func (s *Session) SetViewRange(r genome.Range) error {
	if err := errors.ValidateRange(r.Start, r.End); err != nil {
		return err
	}
	s.update(ChangeView, func() bool {
		next := s.clamp(r)
		if next == s.rng {
			return false
		}
		s.rng = next
		return true
	})
	return nil
}

// ZoomOut doubles the viewed range around its center.
func (s *Session) ZoomOut() error {
	return s.zoom(2)
}

// ZoomIn halves the viewed range around its center.
func (s *Session) ZoomIn() error {
	return s.zoom(0.5)
}

func (s *Session) zoom(factor float64) error {
	s.update(ChangeView, func() bool {
		c, half := s.rng.Center(), math.Max(s.rng.Len()*factor, MinRangeLen)/2
		next := s.clamp(genome.Range{Start: math.Floor(c - half), End: math.Ceil(c + half)})
		if next == s.rng {
			return false
		}
		s.rng = next
		return true
	})
	return nil
}

// Pan shifts the view by fraction of its length; negative values pan left.
func (s *Session) Pan(fraction float64) error {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "pan fraction must be finite")
	}
	s.update(ChangeView, func() bool {
		d := math.Round(s.rng.Len() * fraction)
		next := s.clamp(genome.Range{Start: s.rng.Start + d, End: s.rng.End + d})
		if next == s.rng {
			return false
		}
		s.rng = next
		return true
	})
	return nil
}

// SetChromosome switches to chrom of the given size and shows all of it.
// A size of 0 means unknown and keeps the current range.
func (s *Session) SetChromosome(chrom string, size float64) error {
	if err := errors.ValidateChromosome(chrom); err != nil {
		return err
	}
	s.update(ChangeChromosome, func() bool {
		if chrom == s.chrom && size == s.chromSize {
			return false
		}
		s.chrom, s.chromSize = chrom, size
		if size > 0 {
			s.rng = genome.Range{Start: 0, End: size}
		}
		return true
	})
	return nil
}

// SetSample switches the viewed sample.
func (s *Session) SetSample(sample string) {
	s.update(ChangeSample, func() bool {
		if sample == s.sample {
			return false
		}
		s.sample = sample
		return true
	})
}

// AddHighlight creates a highlight over r on the current chromosome.
func (s *Session) AddHighlight(r genome.Range) (genome.Highlight, error) {
	if err := errors.ValidateRange(r.Start, r.End); err != nil {
		return genome.Highlight{}, err
	}
	var h genome.Highlight
	s.update(ChangeHighlights, func() bool {
		h = genome.NewHighlight(s.chrom, r, "")
		s.highlights = append(s.highlights, h)
		return true
	})
	s.logger.Debug("highlight added", "id", h.ID, "region", genome.Region{Chrom: h.Chromosome, Range: h.Range})
	return h, nil
}

// RemoveHighlight deletes the highlight with the given id.
func (s *Session) RemoveHighlight(id string) error {
	found := false
	s.update(ChangeHighlights, func() bool {
		i := slices.IndexFunc(s.highlights, func(h genome.Highlight) bool { return h.ID == id })
		if i < 0 {
			return false
		}
		s.highlights = slices.Delete(s.highlights, i, i+1)
		found = true
		return true
	})
	if !found {
		return errors.New(errors.ErrCodeNotFound, "highlight %s", id)
	}
	return nil
}

// SetMarkerMode toggles marker placement.
func (s *Session) SetMarkerMode(on bool) {
	s.update(ChangeMarkerMode, func() bool {
		if s.markerMode == on {
			return false
		}
		s.markerMode = on
		return true
	})
}

// update applies fn under the lock and notifies listeners if fn reports a
// change.
func (s *Session) update(kind ChangeKind, fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	change := Change{Kind: kind, State: s.stateLocked()}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.logger.Debug("session changed", "kind", kind, "region", genome.Region{Chrom: change.State.Chrom, Range: change.State.Range})
	for _, l := range listeners {
		l(change)
	}
}

// clamp keeps r inside the chromosome, preserving its length where
// possible, and enforces MinRangeLen.
func (s *Session) clamp(r genome.Range) genome.Range {
	if r.Len() < MinRangeLen {
		c := r.Center()
		r = genome.Range{Start: math.Floor(c - MinRangeLen/2), End: math.Floor(c-MinRangeLen/2) + MinRangeLen}
	}
	hi := math.Inf(1)
	if s.chromSize > 0 {
		hi = s.chromSize
	}
	return r.Clamp(0, hi)
}
