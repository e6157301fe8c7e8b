package canvas

import "math"

// Align is the horizontal anchor of drawn text.
type Align int

// Text alignments. Text is always vertically centered on the y coordinate.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Context is a canvas-2D style drawing context.
//
// Coordinates are transformed by the current transform before they reach the
// backing store. Colors are CSS color strings. Save and Restore push and pop
// the style, transform and clip state.
type Context interface {
	// SetTransform replaces the current transform with the matrix
	// [a c e; b d f; 0 0 1].
	SetTransform(a, b, c, d, e, f float64)
	Save()
	Restore()

	// ClearRect erases a rectangle to transparent.
	ClearRect(x, y, w, h float64)

	SetFillColor(c string)
	SetStrokeColor(c string)
	SetLineWidth(w float64)
	// SetLineDash sets the dash pattern; nil or empty draws solid lines.
	SetLineDash(dash []float64)
	SetFontSize(px float64)

	FillRect(x, y, w, h float64)
	StrokeRect(x, y, w, h float64)
	FillPath(p *Path)
	StrokePath(p *Path)
	// ClipPath intersects the current clip region with p.
	ClipPath(p *Path)

	FillText(text string, x, y float64, align Align)
	MeasureText(text string) float64

	// Size returns the backing store size in physical pixels.
	Size() (width, height int)
}

// Backend creates contexts with a backing store of the given physical size.
type Backend interface {
	NewContext(width, height int) Context
	Name() string
}

// Matrix is a 2D affine transform [A C E; B D F].
type Matrix struct{ A, B, C, D, E, F float64 }

// Identity is the identity transform.
var Identity = Matrix{A: 1, D: 1}

// Apply transforms a point.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// ScaleFactor is the linear scale of the transform, used for line widths.
func (m Matrix) ScaleFactor() float64 {
	det := m.A*m.D - m.B*m.C
	if det < 0 {
		det = -det
	}
	if det == 0 {
		return 1
	}
	return math.Sqrt(det)
}

// IsIdentity reports whether m is the identity.
func (m Matrix) IsIdentity() bool { return m == Identity }
