package track

import (
	"context"
	"math"

	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/render/canvas"
	"github.com/matzehuels/trackview/pkg/render/hittest"
	"github.com/matzehuels/trackview/pkg/render/scale"
)

// StainColors maps cytogenetic stains to fill colors.
var StainColors = map[string]string{
	"acen":    "#d92f27",
	"gneg":    "#ffffff",
	"gvar":    "#dcdcdc",
	"gpos25":  "#c8c8c8",
	"gpos50":  "#c8c8c8",
	"gpos75":  "#828282",
	"gpos100": "#000000",
}

// IdeogramConfig configures an ideogram track.
type IdeogramConfig struct {
	// Padding insets the silhouette from the canvas edges.
	Padding float64
	// NotchRatio is the centromere notch depth as a fraction of the track
	// height. The depth never exceeds 0.45 of the silhouette height.
	NotchRatio float64
	// BevelRatio is the length of the diagonal cut at each end corner as a
	// fraction of the silhouette height.
	BevelRatio float64
	// CornerRatio is the radius that rounds the bevel joints as a fraction
	// of the height. It never exceeds the bevel length.
	CornerRatio float64
	EdgeColor   string
	EdgeWidth   float64
	FillColor   string
	// UnknownStainColor fills bands whose stain is not in StainColors.
	UnknownStainColor string
	MarkerColor       string
	MarkerEdgeColor   string
}

// DefaultIdeogramConfig returns the default ideogram styling.
func DefaultIdeogramConfig() IdeogramConfig {
	return IdeogramConfig{
		Padding:           2,
		NotchRatio:        0.3,
		BevelRatio:        0.25,
		CornerRatio:       0.3,
		EdgeColor:         "black",
		EdgeWidth:         1,
		FillColor:         "white",
		UnknownStainColor: "#999999",
		MarkerColor:       "rgba(255, 0, 0, 0.2)",
		MarkerEdgeColor:   "red",
	}
}

func (c IdeogramConfig) withDefaults() IdeogramConfig {
	d := DefaultIdeogramConfig()
	if c.NotchRatio <= 0 {
		c.NotchRatio = d.NotchRatio
	}
	c.NotchRatio = math.Min(c.NotchRatio, 0.45)
	if c.BevelRatio <= 0 {
		c.BevelRatio = d.BevelRatio
	}
	if c.CornerRatio <= 0 {
		c.CornerRatio = d.CornerRatio
	}
	if c.EdgeWidth <= 0 {
		c.EdgeWidth = d.EdgeWidth
	}
	if c.EdgeColor == "" {
		c.EdgeColor = d.EdgeColor
	}
	if c.FillColor == "" {
		c.FillColor = d.FillColor
	}
	if c.UnknownStainColor == "" {
		c.UnknownStainColor = d.UnknownStainColor
	}
	if c.MarkerColor == "" {
		c.MarkerColor = d.MarkerColor
	}
	if c.MarkerEdgeColor == "" {
		c.MarkerEdgeColor = d.MarkerEdgeColor
	}
	return c
}

// IdeogramFetcher loads the chromosome reference data of a view.
type IdeogramFetcher func(ctx context.Context, view View) (genome.ChromInfo, error)

type ideogramVariant struct {
	cfg   IdeogramConfig
	fetch IdeogramFetcher
}

// NewIdeogram creates a chromosome ideogram track.
func NewIdeogram(id string, fetch IdeogramFetcher, cfg IdeogramConfig, opts ...Option) *Track[genome.ChromInfo] {
	return New[genome.ChromInfo](id, &ideogramVariant{cfg: cfg.withDefaults(), fetch: fetch}, opts...)
}

func (v *ideogramVariant) Kind() Kind { return KindIdeogram }

func (v *ideogramVariant) Fetch(ctx context.Context, view View) (genome.ChromInfo, error) {
	return v.fetch(ctx, view)
}

func (v *ideogramVariant) ExpandedHeight(genome.ChromInfo, View, float64) float64 { return 0 }

// silhouetteBox returns the drawing area of the silhouette.
func silhouetteBox(dims genome.Dimensions, pad float64) (x0, y0, x1, y1 float64) {
	return pad, pad, math.Max(pad, dims.Width-pad), math.Max(pad, dims.Height-pad)
}

// Silhouette builds the chromosome outline for a chromosome of size bp in
// dims: a box with beveled ends whose joints are rounded, and whose top and
// bottom edges dip into a notch over the centromere.
func Silhouette(size float64, centromere *genome.Range, dims genome.Dimensions, cfg IdeogramConfig) *canvas.Path {
	cfg = cfg.withDefaults()
	x0, y0, x1, y1 := silhouetteBox(dims, cfg.Padding)
	h := y1 - y0
	b := math.Min(h*cfg.BevelRatio, math.Min(h/2, (x1-x0)/4))
	r := math.Min(h*cfg.CornerRatio, b)
	ym := (y0 + y1) / 2

	notch := false
	var cx1, cx2, cm, depth, nr float64
	if centromere != nil && size > 0 {
		xs := scale.Linear([2]float64{0, size}, [2]float64{x0, x1})
		cx1 = math.Max(xs(centromere.Start), x0+b)
		cx2 = math.Min(xs(centromere.End), x1-b)
		if cx2-cx1 >= 1 {
			notch = true
			cm = (cx1 + cx2) / 2
			depth = math.Min(dims.Height*cfg.NotchRatio, h*0.45)
			nr = math.Min(2.5*depth, (cx2-cx1)/3)
		}
	}

	p := canvas.NewPath()
	p.MoveTo(x0, ym)
	p.ArcTo(x0, y0+b, x0+b, y0, r)
	if notch {
		p.ArcTo(x0+b, y0, cx1, y0, r)
		p.ArcTo(cx1, y0, cm, y0+depth, nr)
		p.ArcTo(cm, y0+depth, cx2, y0, nr)
		p.ArcTo(cx2, y0, x1-b, y0, nr)
	} else {
		p.ArcTo(x0+b, y0, x1-b, y0, r)
	}
	p.ArcTo(x1-b, y0, x1, y0+b, r)
	p.ArcTo(x1, y0+b, x1, y1-b, r)
	p.ArcTo(x1, y1-b, x1-b, y1, r)
	if notch {
		p.ArcTo(x1-b, y1, cx2, y1, r)
		p.ArcTo(cx2, y1, cm, y1-depth, nr)
		p.ArcTo(cm, y1-depth, cx1, y1, nr)
		p.ArcTo(cx1, y1, x0+b, y1, nr)
	} else {
		p.ArcTo(x1-b, y1, x0+b, y1, r)
	}
	p.ArcTo(x0+b, y1, x0, y1-b, r)
	p.ArcTo(x0, y1-b, x0, ym, r)
	p.Close()
	return p
}

func (v *ideogramVariant) Draw(f Frame, info genome.ChromInfo) []hittest.HoverBox {
	ctx, dims, cfg := f.Ctx, f.Dims, v.cfg
	if info.Size <= 0 {
		f.Logger.Error("chromosome without size", "chrom", info.Chrom)
		return nil
	}
	x0, y0, x1, y1 := silhouetteBox(dims, cfg.Padding)
	xs := scale.Linear([2]float64{0, info.Size}, [2]float64{x0, x1})
	shape := Silhouette(info.Size, info.Centromere, dims, cfg)

	ctx.SetFillColor(cfg.FillColor)
	ctx.FillPath(shape)
	ctx.SetStrokeColor(cfg.EdgeColor)
	ctx.SetLineWidth(cfg.EdgeWidth)
	ctx.StrokePath(shape)

	ctx.Save()
	ctx.ClipPath(shape)
	boxes := make([]hittest.HoverBox, 0, len(info.Bands))
	for _, b := range info.Bands {
		color, ok := StainColors[b.Stain]
		if !ok {
			f.Logger.Error("unmapped ideogram stain", "chrom", info.Chrom, "band", b.ID, "stain", b.Stain)
			color = cfg.UnknownStainColor
		}
		bx1, bx2 := xs(b.Start), xs(b.End)
		ctx.SetFillColor(color)
		ctx.FillRect(bx1, y0, bx2-bx1, y1-y0)
		boxes = append(boxes, hittest.HoverBox{
			Label: b.ID + " (" + b.Stain + ")",
			Box:   hittest.Box{X1: bx1, X2: bx2, Y1: y0, Y2: y1},
			Element: genome.Band{
				ID: b.ID, Start: b.Start, End: b.End, Color: color,
				Label: b.ID, HoverInfo: b.Stain, Y1: y0, Y2: y1,
			},
		})
	}
	ctx.Restore()

	// outline again so the clipped bands do not hide the edge
	ctx.SetStrokeColor(cfg.EdgeColor)
	ctx.SetLineWidth(cfg.EdgeWidth)
	ctx.StrokePath(shape)

	v.drawViewMarker(ctx, f.View, info, xs, dims)
	return boxes
}

// drawViewMarker outlines the viewed region when it lies on this chromosome.
func (v *ideogramVariant) drawViewMarker(ctx canvas.Context, view View, info genome.ChromInfo, xs scale.Func, dims genome.Dimensions) {
	if view.Chrom != info.Chrom || view.Range.Empty() {
		return
	}
	r := view.Range.Clamp(0, info.Size)
	mx1, mx2 := xs(r.Start), xs(r.End)
	w := math.Max(mx2-mx1, 2)
	ctx.SetFillColor(v.cfg.MarkerColor)
	ctx.FillRect(mx1, 0, w, dims.Height)
	ctx.SetStrokeColor(v.cfg.MarkerEdgeColor)
	ctx.SetLineWidth(1)
	ctx.StrokeRect(mx1, 0.5, w, dims.Height-1)
}
