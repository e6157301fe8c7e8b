package canvas

import "math"

// SegmentKind identifies a path operation.
type SegmentKind uint8

// Path operations.
const (
	SegMove SegmentKind = iota
	SegLine
	SegCubic
	SegClose
)

// Segment is one recorded path operation. Cubic segments use all three
// points; move and line segments use only P[2].
type Segment struct {
	Kind SegmentKind
	P    [3]Point
}

// Point is a position in logical pixels.
type Point struct{ X, Y float64 }

// Path is a sequence of subpaths built from lines and cubic Béziers.
type Path struct {
	segs       []Segment
	start, cur Point
	hasCur     bool
}

// NewPath returns an empty path.
func NewPath() *Path { return &Path{} }

// Segments returns the recorded operations.
func (p *Path) Segments() []Segment { return p.segs }

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) {
	pt := Point{x, y}
	p.segs = append(p.segs, Segment{Kind: SegMove, P: [3]Point{{}, {}, pt}})
	p.start, p.cur, p.hasCur = pt, pt, true
}

// LineTo adds a straight segment. Without a current point it behaves as MoveTo.
func (p *Path) LineTo(x, y float64) {
	if !p.hasCur {
		p.MoveTo(x, y)
		return
	}
	pt := Point{x, y}
	p.segs = append(p.segs, Segment{Kind: SegLine, P: [3]Point{{}, {}, pt}})
	p.cur = pt
}

// CubicTo adds a cubic Bézier from the current point.
func (p *Path) CubicTo(x1, y1, x2, y2, x, y float64) {
	if !p.hasCur {
		p.MoveTo(x1, y1)
	}
	pt := Point{x, y}
	p.segs = append(p.segs, Segment{Kind: SegCubic, P: [3]Point{{x1, y1}, {x2, y2}, pt}})
	p.cur = pt
}

// Close closes the current subpath.
func (p *Path) Close() {
	if !p.hasCur {
		return
	}
	p.segs = append(p.segs, Segment{Kind: SegClose})
	p.cur = p.start
}

// Rect adds a closed rectangle subpath.
func (p *Path) Rect(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// ArcTo adds a circular arc of radius r tangent to the lines from the current
// point to (x1, y1) and from (x1, y1) to (x2, y2), connected to the current
// point by a straight line. This follows the HTML canvas arcTo operation.
func (p *Path) ArcTo(x1, y1, x2, y2, r float64) {
	if !p.hasCur {
		p.MoveTo(x1, y1)
		return
	}
	p0, p1, p2 := p.cur, Point{x1, y1}, Point{x2, y2}
	v1 := Point{p0.X - p1.X, p0.Y - p1.Y}
	v2 := Point{p2.X - p1.X, p2.Y - p1.Y}
	l1, l2 := math.Hypot(v1.X, v1.Y), math.Hypot(v2.X, v2.Y)
	if r <= 0 || l1 == 0 || l2 == 0 {
		p.LineTo(x1, y1)
		return
	}
	u1 := Point{v1.X / l1, v1.Y / l1}
	u2 := Point{v2.X / l2, v2.Y / l2}
	cosTheta := u1.X*u2.X + u1.Y*u2.Y
	if math.Abs(cosTheta) > 1-1e-12 {
		p.LineTo(x1, y1)
		return
	}
	theta := math.Acos(cosTheta)
	d := r / math.Tan(theta/2)
	t1 := Point{p1.X + u1.X*d, p1.Y + u1.Y*d}
	t2 := Point{p1.X + u2.X*d, p1.Y + u2.Y*d}

	bis := Point{u1.X + u2.X, u1.Y + u2.Y}
	bl := math.Hypot(bis.X, bis.Y)
	h := r / math.Sin(theta/2)
	c := Point{p1.X + bis.X/bl*h, p1.Y + bis.Y/bl*h}

	a0 := math.Atan2(t1.Y-c.Y, t1.X-c.X)
	a1 := math.Atan2(t2.Y-c.Y, t2.X-c.X)
	sweep := a1 - a0
	for sweep > math.Pi {
		sweep -= 2 * math.Pi
	}
	for sweep <= -math.Pi {
		sweep += 2 * math.Pi
	}

	p.LineTo(t1.X, t1.Y)
	p.arc(c, r, a0, sweep)
}

// arc appends cubic approximations of a circular arc, at most a quarter turn each.
func (p *Path) arc(c Point, r, start, sweep float64) {
	n := int(math.Ceil(math.Abs(sweep) / (math.Pi / 2)))
	if n == 0 {
		return
	}
	step := sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	a := start
	for i := 0; i < n; i++ {
		b := a + step
		sa, ca := math.Sincos(a)
		sb, cb := math.Sincos(b)
		p.CubicTo(
			c.X+r*(ca-k*sa), c.Y+r*(sa+k*ca),
			c.X+r*(cb+k*sb), c.Y+r*(sb-k*cb),
			c.X+r*cb, c.Y+r*sb,
		)
		a = b
	}
}

const flattenSteps = 16

// Polygons flattens the path into closed polylines, one per subpath.
func (p *Path) Polygons() [][]Point {
	var (
		polys [][]Point
		cur   []Point
	)
	flush := func() {
		if len(cur) > 1 {
			polys = append(polys, cur)
		}
		cur = nil
	}
	for _, s := range p.segs {
		switch s.Kind {
		case SegMove:
			flush()
			cur = []Point{s.P[2]}
		case SegLine:
			cur = append(cur, s.P[2])
		case SegCubic:
			if len(cur) == 0 {
				cur = []Point{s.P[0]}
			}
			p0 := cur[len(cur)-1]
			for i := 1; i <= flattenSteps; i++ {
				cur = append(cur, cubicAt(p0, s.P[0], s.P[1], s.P[2], float64(i)/flattenSteps))
			}
		case SegClose:
			if len(cur) > 0 {
				start := cur[0]
				flush()
				cur = []Point{start}
			}
		}
	}
	flush()
	return polys
}

func cubicAt(p0, p1, p2, p3 Point, t float64) Point {
	mt := 1 - t
	a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// Contains reports whether (x, y) is inside the path using the non-zero
// winding rule. Every subpath is treated as implicitly closed.
func (p *Path) Contains(x, y float64) bool {
	winding := 0
	for _, poly := range p.Polygons() {
		n := len(poly)
		for i := 0; i < n; i++ {
			a, b := poly[i], poly[(i+1)%n]
			if a.Y <= y {
				if b.Y > y && cross(a, b, x, y) > 0 {
					winding++
				}
			} else if b.Y <= y && cross(a, b, x, y) < 0 {
				winding--
			}
		}
	}
	return winding != 0
}

func cross(a, b Point, x, y float64) float64 {
	return (b.X-a.X)*(y-a.Y) - (x-a.X)*(b.Y-a.Y)
}

// Bounds returns the axis-aligned bounding box of the flattened path.
func (p *Path) Bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, poly := range p.Polygons() {
		for _, pt := range poly {
			minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
			minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
		}
	}
	return
}
