// Package hittest maps pointer positions back to the features drawn under them.
//
// A track replaces the registry's boxes every time it draws a frame; boxes
// from earlier frames are dropped wholesale. Lookups scan boxes in draw order
// and the first containing box wins.
package hittest

import (
	"sync"

	"github.com/matzehuels/trackview/pkg/genome"
)

// Box is an axis-aligned rectangle in logical pixels.
type Box struct {
	X1 float64 `json:"x1"`
	X2 float64 `json:"x2"`
	Y1 float64 `json:"y1"`
	Y2 float64 `json:"y2"`
}

// Contains reports whether (x, y) is inside b. Edges are inclusive.
func (b Box) Contains(x, y float64) bool {
	return b.X1 <= x && x <= b.X2 && b.Y1 <= y && y <= b.Y2
}

// Width returns X2 - X1.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// HoverBox tags a screen rectangle with the feature drawn inside it.
type HoverBox struct {
	Label   string         `json:"label"`
	Box     Box            `json:"box"`
	Element genome.Feature `json:"-"`
}

// Registry holds the hover boxes of the current frame.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	boxes []HoverBox
}

// New returns an empty registry.
func New() *Registry { return &Registry{} }

// Replace discards all boxes and stores boxes as the current frame.
func (r *Registry) Replace(boxes []HoverBox) {
	cp := make([]HoverBox, len(boxes))
	copy(cp, boxes)
	r.mu.Lock()
	r.boxes = cp
	r.mu.Unlock()
}

// Clear removes all boxes.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.boxes = nil
	r.mu.Unlock()
}

// FindAt returns the first box containing (x, y).
func (r *Registry) FindAt(x, y float64) (HoverBox, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.boxes {
		if b.Box.Contains(x, y) {
			return b, true
		}
	}
	return HoverBox{}, false
}

// Boxes returns a copy of the current frame's boxes.
func (r *Registry) Boxes() []HoverBox {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]HoverBox, len(r.boxes))
	copy(out, r.boxes)
	return out
}

// Len returns the number of boxes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.boxes)
}
