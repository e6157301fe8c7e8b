// Package svg implements a canvas backend that records primitives as SVG
// elements.
//
// The document is sized to the backing store in physical pixels; the
// surface transform is written on every element so logical coordinates are
// preserved in the markup.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/trackview/pkg/render/canvas"
)

// charWidth approximates glyph advance as a fraction of the font size.
const charWidth = 0.55

// Backend creates SVG contexts.
type Backend struct{}

// New returns the SVG backend.
func New() Backend { return Backend{} }

// Name returns "svg".
func (Backend) Name() string { return "svg" }

// NewContext creates an empty document of the given size.
func (Backend) NewContext(width, height int) canvas.Context {
	return NewContext(width, height)
}

type state struct {
	fill, stroke string
	lineWidth    float64
	dash         []float64
	fontSize     float64
	m            canvas.Matrix
	clipID       string
}

type element struct {
	markup string
	// device-space bounding box, used by ClearRect
	x0, y0, x1, y1 float64
}

// Context records drawing operations. It implements [canvas.Context].
type Context struct {
	width, height int
	st            state
	stack         []state
	defs          bytes.Buffer
	elems         []element
	nextClip      int
}

var _ canvas.Context = (*Context)(nil)

// NewContext creates an SVG context of the given physical size.
func NewContext(width, height int) *Context {
	return &Context{
		width:  width,
		height: height,
		st: state{
			fill:      "black",
			stroke:    "black",
			lineWidth: 1,
			fontSize:  10,
			m:         canvas.Identity,
		},
	}
}

func (c *Context) SetTransform(a, b, cc, d, e, f float64) {
	c.st.m = canvas.Matrix{A: a, B: b, C: cc, D: d, E: e, F: f}
}

func (c *Context) Save() { c.stack = append(c.stack, c.st) }

func (c *Context) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.st = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

// ClearRect drops every element whose bounds lie inside the rectangle.
// Clearing the whole document also drops clip definitions that are no
// longer referenced by the current state.
func (c *Context) ClearRect(x, y, w, h float64) {
	x0, y0 := c.st.m.Apply(x, y)
	x1, y1 := c.st.m.Apply(x+w, y+h)
	x0, x1 = math.Min(x0, x1), math.Max(x0, x1)
	y0, y1 = math.Min(y0, y1), math.Max(y0, y1)

	if x0 <= 0 && y0 <= 0 && x1 >= float64(c.width) && y1 >= float64(c.height) {
		c.elems = c.elems[:0]
		if c.st.clipID == "" && len(c.stack) == 0 {
			c.defs.Reset()
		}
		return
	}
	kept := c.elems[:0]
	for _, e := range c.elems {
		if e.x0 >= x0 && e.y0 >= y0 && e.x1 <= x1 && e.y1 <= y1 {
			continue
		}
		kept = append(kept, e)
	}
	c.elems = kept
}

func (c *Context) SetFillColor(s string)   { c.st.fill = s }
func (c *Context) SetStrokeColor(s string) { c.st.stroke = s }
func (c *Context) SetLineWidth(w float64)  { c.st.lineWidth = w }
func (c *Context) SetFontSize(px float64)  { c.st.fontSize = px }

func (c *Context) SetLineDash(dash []float64) {
	c.st.dash = append([]float64(nil), dash...)
}

func (c *Context) FillRect(x, y, w, h float64) {
	c.emit(x, y, x+w, y+h, fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s"%s/>`,
		num(x), num(y), num(w), num(h), escape(c.st.fill), c.common()))
}

func (c *Context) StrokeRect(x, y, w, h float64) {
	hw := c.st.lineWidth / 2
	c.emit(x-hw, y-hw, x+w+hw, y+h+hw, fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="none"%s%s/>`,
		num(x), num(y), num(w), num(h), c.strokeAttrs(), c.common()))
}

func (c *Context) FillPath(p *canvas.Path) {
	x0, y0, x1, y1 := p.Bounds()
	c.emit(x0, y0, x1, y1, fmt.Sprintf(`<path d="%s" fill="%s"%s/>`, pathData(p), escape(c.st.fill), c.common()))
}

func (c *Context) StrokePath(p *canvas.Path) {
	x0, y0, x1, y1 := p.Bounds()
	hw := c.st.lineWidth / 2
	c.emit(x0-hw, y0-hw, x1+hw, y1+hw, fmt.Sprintf(`<path d="%s" fill="none"%s%s/>`, pathData(p), c.strokeAttrs(), c.common()))
}

// ClipPath defines a clipPath nested in the current clip and makes it current.
func (c *Context) ClipPath(p *canvas.Path) {
	c.nextClip++
	id := "clip" + strconv.Itoa(c.nextClip)
	parent := ""
	if c.st.clipID != "" {
		parent = fmt.Sprintf(` clip-path="url(#%s)"`, c.st.clipID)
	}
	fmt.Fprintf(&c.defs, `    <clipPath id="%s"%s><path d="%s"%s/></clipPath>`+"\n",
		id, parent, pathData(p), transformAttr(c.st.m))
	c.st.clipID = id
}

func (c *Context) FillText(text string, x, y float64, align canvas.Align) {
	anchor := "start"
	w := c.MeasureText(text)
	x0 := x
	switch align {
	case canvas.AlignCenter:
		anchor, x0 = "middle", x-w/2
	case canvas.AlignRight:
		anchor, x0 = "end", x-w
	}
	fs := c.st.fontSize
	c.emit(x0, y-fs/2, x0+w, y+fs/2, fmt.Sprintf(
		`<text x="%s" y="%s" font-size="%s" font-family="sans-serif" text-anchor="%s" dominant-baseline="middle" fill="%s"%s>%s</text>`,
		num(x), num(y), num(fs), anchor, escape(c.st.fill), c.common(), escape(text)))
}

// MeasureText estimates the advance width; SVG text is laid out by the viewer.
func (c *Context) MeasureText(text string) float64 {
	return float64(len([]rune(text))) * c.st.fontSize * charWidth
}

func (c *Context) Size() (int, int) { return c.width, c.height }

// Len returns the number of recorded elements.
func (c *Context) Len() int { return len(c.elems) }

// Bytes renders the complete SVG document.
func (c *Context) Bytes() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		c.width, c.height, c.width, c.height)
	if c.defs.Len() > 0 {
		buf.WriteString("  <defs>\n")
		buf.Write(c.defs.Bytes())
		buf.WriteString("  </defs>\n")
	}
	for _, e := range c.elems {
		buf.WriteString("  ")
		buf.WriteString(e.markup)
		buf.WriteByte('\n')
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// Fragment returns the recorded elements wrapped in a group translated by
// (dx, dy), for composing several surfaces into one document.
func (c *Context) Fragment(dx, dy float64) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `  <g transform="translate(%s %s)">`+"\n", num(dx), num(dy))
	for _, e := range c.elems {
		buf.WriteString("    ")
		buf.WriteString(e.markup)
		buf.WriteByte('\n')
	}
	buf.WriteString("  </g>\n")
	return buf.Bytes()
}

// Defs returns the clip definitions of the document.
func (c *Context) Defs() []byte { return c.defs.Bytes() }

func (c *Context) emit(x0, y0, x1, y1 float64, markup string) {
	ax, ay := c.st.m.Apply(x0, y0)
	bx, by := c.st.m.Apply(x1, y1)
	c.elems = append(c.elems, element{
		markup: markup,
		x0:     math.Min(ax, bx), y0: math.Min(ay, by),
		x1: math.Max(ax, bx), y1: math.Max(ay, by),
	})
}

func (c *Context) common() string {
	var sb strings.Builder
	sb.WriteString(transformAttr(c.st.m))
	if c.st.clipID != "" {
		fmt.Fprintf(&sb, ` clip-path="url(#%s)"`, c.st.clipID)
	}
	return sb.String()
}

func (c *Context) strokeAttrs() string {
	s := fmt.Sprintf(` stroke="%s" stroke-width="%s"`, escape(c.st.stroke), num(c.st.lineWidth))
	if len(c.st.dash) > 0 {
		parts := make([]string, len(c.st.dash))
		for i, d := range c.st.dash {
			parts[i] = num(d)
		}
		s += fmt.Sprintf(` stroke-dasharray="%s"`, strings.Join(parts, " "))
	}
	return s
}

func transformAttr(m canvas.Matrix) string {
	if m.IsIdentity() {
		return ""
	}
	return fmt.Sprintf(` transform="matrix(%s %s %s %s %s %s)"`, num(m.A), num(m.B), num(m.C), num(m.D), num(m.E), num(m.F))
}

func pathData(p *canvas.Path) string {
	var sb strings.Builder
	for _, s := range p.Segments() {
		switch s.Kind {
		case canvas.SegMove:
			fmt.Fprintf(&sb, "M%s %s", num(s.P[2].X), num(s.P[2].Y))
		case canvas.SegLine:
			fmt.Fprintf(&sb, "L%s %s", num(s.P[2].X), num(s.P[2].Y))
		case canvas.SegCubic:
			fmt.Fprintf(&sb, "C%s %s %s %s %s %s",
				num(s.P[0].X), num(s.P[0].Y), num(s.P[1].X), num(s.P[1].Y), num(s.P[2].X), num(s.P[2].Y))
		case canvas.SegClose:
			sb.WriteString("Z")
		}
	}
	return sb.String()
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
