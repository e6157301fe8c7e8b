package track

import (
	"context"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/render/canvas"
	"github.com/matzehuels/trackview/pkg/render/hittest"
	"github.com/matzehuels/trackview/pkg/render/scale"
)

// DotConfig configures a dot track.
type DotConfig struct {
	// YDomain is the fixed value range mapped onto the track height, larger
	// values up.
	YDomain [2]float64
	// Ticks are values marked with dashed reference lines and axis labels.
	Ticks     []float64
	AxisWidth float64
	DotSize   float64
	Color     string
	TickColor string
}

// CoverageConfig is the log2-ratio coverage layout.
func CoverageConfig() DotConfig {
	return DotConfig{
		YDomain:   [2]float64{-4, 4},
		Ticks:     []float64{-3, -2, -1, 0, 1, 2, 3},
		AxisWidth: 30,
		DotSize:   2,
		Color:     "black",
		TickColor: "#cccccc",
	}
}

// BAFConfig is the B-allele frequency layout.
func BAFConfig() DotConfig {
	return DotConfig{
		YDomain:   [2]float64{0, 1},
		Ticks:     []float64{0.2, 0.4, 0.6, 0.8},
		AxisWidth: 30,
		DotSize:   2,
		Color:     "black",
		TickColor: "#cccccc",
	}
}

func (c DotConfig) withDefaults() DotConfig {
	d := CoverageConfig()
	if c.YDomain == [2]float64{} {
		c.YDomain = d.YDomain
	}
	if c.AxisWidth <= 0 {
		c.AxisWidth = d.AxisWidth
	}
	if c.DotSize <= 0 {
		c.DotSize = d.DotSize
	}
	if c.Color == "" {
		c.Color = d.Color
	}
	if c.TickColor == "" {
		c.TickColor = d.TickColor
	}
	return c
}

// DotFetcher loads the dots of a view.
type DotFetcher func(ctx context.Context, view View) ([]genome.Dot, error)

type dotVariant struct {
	cfg   DotConfig
	fetch DotFetcher
}

// NewDot creates a scatter track for coverage or B-allele frequency data.
func NewDot(id string, fetch DotFetcher, cfg DotConfig, opts ...Option) *Track[[]genome.Dot] {
	return New[[]genome.Dot](id, &dotVariant{cfg: cfg.withDefaults(), fetch: fetch}, opts...)
}

func (v *dotVariant) Kind() Kind { return KindDot }

func (v *dotVariant) Fetch(ctx context.Context, view View) ([]genome.Dot, error) {
	return v.fetch(ctx, view)
}

func (v *dotVariant) ExpandedHeight([]genome.Dot, View, float64) float64 { return 0 }

func (v *dotVariant) PlotRange(width float64) (float64, float64) {
	return v.cfg.AxisWidth, width
}

func (v *dotVariant) Draw(f Frame, dots []genome.Dot) []hittest.HoverBox {
	ctx, dims, cfg := f.Ctx, f.Dims, v.cfg
	r := f.View.Range
	xs := scale.Linear([2]float64{r.Start, r.End}, [2]float64{cfg.AxisWidth, dims.Width})
	ys := scale.Linear(cfg.YDomain, [2]float64{dims.Height, 0})

	// reference lines
	ctx.SetStrokeColor(cfg.TickColor)
	ctx.SetLineWidth(1)
	ctx.SetLineDash([]float64{4, 4})
	for _, tick := range cfg.Ticks {
		y := ys(tick)
		p := canvas.NewPath()
		p.MoveTo(cfg.AxisWidth, y)
		p.LineTo(dims.Width, y)
		ctx.StrokePath(p)
	}
	ctx.SetLineDash(nil)

	ctx.Save()
	clip := canvas.NewPath()
	clip.Rect(cfg.AxisWidth, 0, dims.Width-cfg.AxisWidth, dims.Height)
	ctx.ClipPath(clip)

	half := cfg.DotSize / 2
	boxes := make([]hittest.HoverBox, 0, len(dots))
	color := ""
	for _, d := range dots {
		c := d.Color
		if c == "" {
			c = cfg.Color
		}
		if c != color {
			ctx.SetFillColor(c)
			color = c
		}
		x, y := xs(d.X), ys(d.Y)
		ctx.FillRect(x-half, y-half, cfg.DotSize, cfg.DotSize)
		if x < cfg.AxisWidth || x > dims.Width {
			continue
		}
		boxes = append(boxes, hittest.HoverBox{
			Label:   humanize.Comma(int64(d.X)) + ": " + strconv.FormatFloat(d.Y, 'f', 2, 64),
			Box:     hittest.Box{X1: x - half, X2: x + half, Y1: y - half, Y2: y + half},
			Element: d,
		})
	}
	ctx.Restore()

	v.drawAxis(ctx, dims, ys)
	return boxes
}

func (v *dotVariant) drawAxis(ctx canvas.Context, dims genome.Dimensions, ys scale.Func) {
	cfg := v.cfg
	ctx.SetFillColor("white")
	ctx.FillRect(0, 0, cfg.AxisWidth, dims.Height)

	ctx.SetStrokeColor("black")
	ctx.SetLineWidth(1)
	axis := canvas.NewPath()
	axis.MoveTo(cfg.AxisWidth, 0)
	axis.LineTo(cfg.AxisWidth, dims.Height)
	for _, tick := range cfg.Ticks {
		y := ys(tick)
		axis.MoveTo(cfg.AxisWidth-3, y)
		axis.LineTo(cfg.AxisWidth, y)
	}
	ctx.StrokePath(axis)

	ctx.SetFillColor("black")
	ctx.SetFontSize(8)
	for _, tick := range cfg.Ticks {
		ctx.FillText(strconv.FormatFloat(tick, 'g', -1, 64), cfg.AxisWidth-5, ys(tick), canvas.AlignRight)
	}
}
