package canvas

import (
	"math"
	"sync"

	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/genome"
)

// Host is the element a surface is mounted in.
type Host interface {
	// BoundingWidth is the element's current width in logical pixels.
	BoundingWidth() float64
	// PixelRatio is the device pixel ratio; values <= 0 mean 1.
	PixelRatio() float64
}

// Container is a Host whose size is set by the embedding program.
type Container struct {
	mu    sync.RWMutex
	width float64
	ratio float64
}

// NewContainer creates a container of the given width and pixel ratio.
func NewContainer(width, ratio float64) *Container {
	return &Container{width: width, ratio: ratio}
}

// BoundingWidth returns the current width.
func (c *Container) BoundingWidth() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.width
}

// PixelRatio returns the device pixel ratio.
func (c *Container) PixelRatio() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ratio
}

// SetWidth changes the width. Surfaces pick it up on their next sync.
func (c *Container) SetWidth(w float64) {
	c.mu.Lock()
	c.width = w
	c.mu.Unlock()
}

// SetPixelRatio changes the device pixel ratio.
func (c *Container) SetPixelRatio(r float64) {
	c.mu.Lock()
	c.ratio = r
	c.mu.Unlock()
}

// ErrNotInitialized is returned by surface methods called before Initialize.
var ErrNotInitialized = errors.New(errors.ErrCodeNotInitialized, "surface used before Initialize")

// Surface owns one drawing context and keeps its backing store sized to
// the host width and the explicit current height.
//
// A Surface is not safe for concurrent use; the owning track serializes access.
type Surface struct {
	backend Backend
	host    Host
	ctx     Context

	height      float64
	ratio       float64
	pxW, pxH    int
	allocs      int
	initialized bool
}

// NewSurface creates an unattached surface with an initial logical height.
func NewSurface(b Backend, height float64) *Surface {
	return &Surface{backend: b, height: height}
}

// Initialize attaches the surface to host and allocates the backing store.
// A nil host means the component is not attached; that is a caller bug and
// is reported immediately.
func (s *Surface) Initialize(host Host) error {
	if host == nil {
		return errors.New(errors.ErrCodeNotAttached, "surface must be attached to a host before Initialize")
	}
	if s.backend == nil {
		return errors.New(errors.ErrCodeInvalidInput, "surface has no backend")
	}
	s.host = host
	s.initialized = true
	_, err := s.SyncDimensions()
	return err
}

// Initialized reports whether Initialize succeeded.
func (s *Surface) Initialized() bool { return s.initialized }

// SetHeight sets the logical height used by the next SyncDimensions.
func (s *Surface) SetHeight(h float64) { s.height = max(0, h) }

// Height returns the current logical height.
func (s *Surface) Height() float64 { return s.height }

// Dimensions returns the logical size of the drawable area.
func (s *Surface) Dimensions() (genome.Dimensions, error) {
	if !s.initialized {
		return genome.Dimensions{}, ErrNotInitialized
	}
	return genome.Dimensions{
		Width:  math.Ceil(s.host.BoundingWidth()),
		Height: math.Ceil(s.height),
	}, nil
}

// SyncDimensions resizes the backing store to the current logical size times
// the pixel ratio. An unchanged size leaves the store, and its content, alone.
// It reports whether a reallocation happened.
func (s *Surface) SyncDimensions() (bool, error) {
	if !s.initialized {
		return false, ErrNotInitialized
	}
	dims, _ := s.Dimensions()
	ratio := s.host.PixelRatio()
	if ratio <= 0 {
		ratio = 1
	}
	pxW := int(math.Round(dims.Width * ratio))
	pxH := int(math.Round(dims.Height * ratio))

	if s.ctx != nil && pxW == s.pxW && pxH == s.pxH && ratio == s.ratio {
		return false, nil
	}
	s.ctx = s.backend.NewContext(pxW, pxH)
	s.ctx.SetTransform(ratio, 0, 0, ratio, 0, 0)
	s.pxW, s.pxH, s.ratio = pxW, pxH, ratio
	s.allocs++
	return true, nil
}

// Context returns the drawing context.
func (s *Surface) Context() (Context, error) {
	if !s.initialized {
		return nil, ErrNotInitialized
	}
	return s.ctx, nil
}

// BackingSize returns the physical pixel size of the backing store.
func (s *Surface) BackingSize() (width, height int) { return s.pxW, s.pxH }

// PixelRatio returns the ratio applied at the last reallocation.
func (s *Surface) PixelRatio() float64 { return s.ratio }

// Allocations counts backing store reallocations.
func (s *Surface) Allocations() int { return s.allocs }

// Clear erases the whole drawable area.
func (s *Surface) Clear() error {
	ctx, err := s.Context()
	if err != nil {
		return err
	}
	dims, _ := s.Dimensions()
	ctx.ClearRect(0, 0, dims.Width, dims.Height)
	return nil
}
