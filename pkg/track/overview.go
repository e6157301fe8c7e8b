package track

import (
	"context"

	"github.com/samber/lo"

	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/render/canvas"
	"github.com/matzehuels/trackview/pkg/render/hittest"
	"github.com/matzehuels/trackview/pkg/render/scale"
)

// OverviewData is the whole-genome input of an overview track.
type OverviewData struct {
	// Chromosomes in display order.
	Chromosomes []genome.ChromSize
	// Dots per chromosome, positions relative to the chromosome start.
	Dots map[string][]genome.Dot
}

// OverviewConfig configures an overview track.
type OverviewConfig struct {
	YDomain [2]float64
	// Gap insets each chromosome's local scale from its span on both sides.
	Gap            float64
	DotSize        float64
	Color          string
	SeparatorColor string
	SelectedColor  string
	FontSize       float64
}

// DefaultOverviewConfig returns the coverage overview layout.
func DefaultOverviewConfig() OverviewConfig {
	return OverviewConfig{
		YDomain:        [2]float64{-4, 4},
		Gap:            2,
		DotSize:        1,
		Color:          "black",
		SeparatorColor: "#999999",
		SelectedColor:  "rgba(0, 0, 255, 0.08)",
		FontSize:       9,
	}
}

func (c OverviewConfig) withDefaults() OverviewConfig {
	d := DefaultOverviewConfig()
	if c.YDomain == [2]float64{} {
		c.YDomain = d.YDomain
	}
	if c.Gap < 0 {
		c.Gap = d.Gap
	}
	if c.DotSize <= 0 {
		c.DotSize = d.DotSize
	}
	if c.Color == "" {
		c.Color = d.Color
	}
	if c.SeparatorColor == "" {
		c.SeparatorColor = d.SeparatorColor
	}
	if c.SelectedColor == "" {
		c.SelectedColor = d.SelectedColor
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	return c
}

// OverviewFetcher loads the whole-genome data of a view's sample.
type OverviewFetcher func(ctx context.Context, view View) (OverviewData, error)

type overviewVariant struct {
	cfg   OverviewConfig
	fetch OverviewFetcher
}

// NewOverview creates a whole-genome overview track. Clicking a chromosome
// span invokes the detail callback (see WithDetail) with the chromosome name.
func NewOverview(id string, fetch OverviewFetcher, cfg OverviewConfig, opts ...Option) *Track[OverviewData] {
	return New[OverviewData](id, &overviewVariant{cfg: cfg.withDefaults(), fetch: fetch}, opts...)
}

func (v *overviewVariant) Kind() Kind { return KindOverview }

func (v *overviewVariant) Fetch(ctx context.Context, view View) (OverviewData, error) {
	return v.fetch(ctx, view)
}

func (v *overviewVariant) ExpandedHeight(OverviewData, View, float64) float64 { return 0 }

// ChromSpan is the pixel extent of one chromosome in the overview.
type ChromSpan struct {
	Chrom  string
	Size   float64
	X1, X2 float64
}

// OverviewSpans lays chromosomes out side by side over width, each taking
// a share proportional to its size.
func OverviewSpans(chroms []genome.ChromSize, width float64) []ChromSpan {
	total := lo.SumBy(chroms, func(c genome.ChromSize) float64 { return c.Size })
	global := scale.Linear([2]float64{0, total}, [2]float64{0, width})
	spans := make([]ChromSpan, 0, len(chroms))
	offset := 0.0
	for _, c := range chroms {
		spans = append(spans, ChromSpan{
			Chrom: c.Chrom,
			Size:  c.Size,
			X1:    global(offset),
			X2:    global(offset + c.Size),
		})
		offset += c.Size
	}
	return spans
}

func (v *overviewVariant) Draw(f Frame, data OverviewData) []hittest.HoverBox {
	ctx, dims, cfg := f.Ctx, f.Dims, v.cfg
	spans := OverviewSpans(data.Chromosomes, dims.Width)
	ys := scale.Linear(cfg.YDomain, [2]float64{dims.Height, 0})

	boxes := make([]hittest.HoverBox, 0, len(spans))
	half := cfg.DotSize / 2
	for i, s := range spans {
		if s.Chrom == f.View.Chrom {
			ctx.SetFillColor(cfg.SelectedColor)
			ctx.FillRect(s.X1, 0, s.X2-s.X1, dims.Height)
		}
		if i > 0 {
			ctx.SetStrokeColor(cfg.SeparatorColor)
			ctx.SetLineWidth(1)
			sep := canvas.NewPath()
			sep.MoveTo(s.X1, 0)
			sep.LineTo(s.X1, dims.Height)
			ctx.StrokePath(sep)
		}

		local := scale.Linear([2]float64{0, s.Size}, [2]float64{s.X1 + cfg.Gap, s.X2 - cfg.Gap})
		color := ""
		for _, d := range data.Dots[s.Chrom] {
			c := lo.CoalesceOrEmpty(d.Color, cfg.Color)
			if c != color {
				ctx.SetFillColor(c)
				color = c
			}
			ctx.FillRect(local(d.X)-half, ys(d.Y)-half, cfg.DotSize, cfg.DotSize)
		}

		boxes = append(boxes, hittest.HoverBox{
			Label:   s.Chrom,
			Box:     hittest.Box{X1: s.X1, X2: s.X2, Y1: 0, Y2: dims.Height},
			Element: genome.ChromSpan{Chrom: s.Chrom, Size: s.Size},
		})
	}

	ctx.SetFillColor("#333333")
	ctx.SetFontSize(cfg.FontSize)
	for _, s := range spans {
		if s.X2-s.X1 < ctx.MeasureText(s.Chrom)+2 {
			continue
		}
		ctx.FillText(s.Chrom, (s.X1+s.X2)/2, cfg.FontSize/2+1, canvas.AlignCenter)
	}
	return boxes
}
