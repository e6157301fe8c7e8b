// Package raster implements a canvas backend that draws into an RGBA image
// with fogleman/gg.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/trackview/pkg/render/canvas"
)

// Backend creates raster contexts.
type Backend struct{}

// New returns the raster backend.
func New() Backend { return Backend{} }

// Name returns "raster".
func (Backend) Name() string { return "raster" }

// NewContext allocates a transparent image of the given size.
func (Backend) NewContext(width, height int) canvas.Context {
	return NewContext(width, height)
}

type state struct {
	fill, stroke color.NRGBA
	lineWidth    float64
	dash         []float64
	fontSize     float64
	m            canvas.Matrix
}

// Context draws with gg. It implements [canvas.Context].
type Context struct {
	dc    *gg.Context
	st    state
	stack []state
	faces map[float64]font.Face
}

var _ canvas.Context = (*Context)(nil)

// NewContext creates a raster context of the given size.
func NewContext(width, height int) *Context {
	dc := gg.NewContext(max(width, 1), max(height, 1))
	c := &Context{
		dc:    dc,
		faces: make(map[float64]font.Face),
		st: state{
			fill:      color.NRGBA{A: 255},
			stroke:    color.NRGBA{A: 255},
			lineWidth: 1,
			fontSize:  10,
			m:         canvas.Identity,
		},
	}
	c.applyTransform()
	return c
}

// SetTransform replaces the current transform. Skew components are not
// supported by the raster backend and are ignored.
func (c *Context) SetTransform(a, b, cc, d, e, f float64) {
	c.st.m = canvas.Matrix{A: a, B: b, C: cc, D: d, E: e, F: f}
	c.applyTransform()
}

func (c *Context) applyTransform() {
	c.dc.Identity()
	c.dc.Translate(c.st.m.E, c.st.m.F)
	c.dc.Scale(c.st.m.A, c.st.m.D)
}

// Save pushes the current state, including the clip.
func (c *Context) Save() {
	c.stack = append(c.stack, c.st)
	c.dc.Push()
}

// Restore pops the last saved state.
func (c *Context) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.st = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.dc.Pop()
	c.applyTransform()
}

// ClearRect sets the rectangle to transparent, ignoring the clip.
func (c *Context) ClearRect(x, y, w, h float64) {
	x0, y0 := c.st.m.Apply(x, y)
	x1, y1 := c.st.m.Apply(x+w, y+h)
	r := image.Rect(
		int(math.Floor(math.Min(x0, x1))), int(math.Floor(math.Min(y0, y1))),
		int(math.Ceil(math.Max(x0, x1))), int(math.Ceil(math.Max(y0, y1))),
	)
	if img, ok := c.dc.Image().(draw.Image); ok {
		draw.Draw(img, r.Intersect(img.Bounds()), image.Transparent, image.Point{}, draw.Src)
	}
}

func (c *Context) SetFillColor(s string)   { c.st.fill = canvas.MustColor(s) }
func (c *Context) SetStrokeColor(s string) { c.st.stroke = canvas.MustColor(s) }
func (c *Context) SetLineWidth(w float64)  { c.st.lineWidth = w }
func (c *Context) SetFontSize(px float64)  { c.st.fontSize = px }

// SetLineDash sets the dash pattern in logical pixels.
func (c *Context) SetLineDash(dash []float64) {
	c.st.dash = append([]float64(nil), dash...)
}

func (c *Context) FillRect(x, y, w, h float64) {
	c.dc.DrawRectangle(x, y, w, h)
	c.fill()
}

func (c *Context) StrokeRect(x, y, w, h float64) {
	c.dc.DrawRectangle(x, y, w, h)
	c.stroke()
}

func (c *Context) FillPath(p *canvas.Path) {
	c.tracePath(p)
	c.fill()
}

func (c *Context) StrokePath(p *canvas.Path) {
	c.tracePath(p)
	c.stroke()
}

// ClipPath intersects the clip with p.
func (c *Context) ClipPath(p *canvas.Path) {
	c.tracePath(p)
	c.dc.Clip()
}

func (c *Context) tracePath(p *canvas.Path) {
	c.dc.ClearPath()
	for _, s := range p.Segments() {
		switch s.Kind {
		case canvas.SegMove:
			c.dc.MoveTo(s.P[2].X, s.P[2].Y)
		case canvas.SegLine:
			c.dc.LineTo(s.P[2].X, s.P[2].Y)
		case canvas.SegCubic:
			c.dc.CubicTo(s.P[0].X, s.P[0].Y, s.P[1].X, s.P[1].Y, s.P[2].X, s.P[2].Y)
		case canvas.SegClose:
			c.dc.ClosePath()
		}
	}
}

func (c *Context) fill() {
	c.dc.SetFillStyle(gg.NewSolidPattern(c.st.fill))
	c.dc.Fill()
}

// stroke converts logical line widths and dashes to device pixels; gg
// applies them after the transform.
func (c *Context) stroke() {
	k := c.st.m.ScaleFactor()
	c.dc.SetStrokeStyle(gg.NewSolidPattern(c.st.stroke))
	c.dc.SetLineWidth(c.st.lineWidth * k)
	if len(c.st.dash) > 0 {
		dash := make([]float64, len(c.st.dash))
		for i, d := range c.st.dash {
			dash[i] = d * k
		}
		c.dc.SetDash(dash...)
	} else {
		c.dc.SetDash()
	}
	c.dc.Stroke()
}

// FillText draws text vertically centered on y.
func (c *Context) FillText(text string, x, y float64, align canvas.Align) {
	c.dc.SetFontFace(c.face(c.st.fontSize))
	c.dc.SetColor(c.st.fill)
	ax := 0.0
	switch align {
	case canvas.AlignCenter:
		ax = 0.5
	case canvas.AlignRight:
		ax = 1
	}
	c.dc.DrawStringAnchored(text, x, y, ax, 0.35)
}

// MeasureText returns the advance width of text at the current font size.
func (c *Context) MeasureText(text string) float64 {
	c.dc.SetFontFace(c.face(c.st.fontSize))
	w, _ := c.dc.MeasureString(text)
	return w
}

// Size returns the image size.
func (c *Context) Size() (int, int) {
	b := c.dc.Image().Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the backing image.
func (c *Context) Image() image.Image { return c.dc.Image() }

// EncodePNG writes the backing image as PNG.
func (c *Context) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
)

// face returns a Go Regular face of the given pixel size. Faces hold glyph
// caches and are not safe for concurrent use, so each context keeps its own.
func (c *Context) face(size float64) font.Face {
	fontOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err == nil {
			fontTTF = f
		}
	})
	if fontTTF == nil {
		return basicfont.Face7x13
	}
	if f, ok := c.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(fontTTF, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	c.faces[size] = f
	return f
}
