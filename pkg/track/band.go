package track

import (
	"cmp"
	"context"
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/render/canvas"
	"github.com/matzehuels/trackview/pkg/render/hittest"
	"github.com/matzehuels/trackview/pkg/render/lanes"
	"github.com/matzehuels/trackview/pkg/render/scale"
)

// BandConfig configures a band track.
type BandConfig struct {
	RowHeight    float64
	TrackPadding float64
	BandPadding  float64
	// LabelReserve is the extra row height reserved for labels when details
	// are shown.
	LabelReserve float64
	// MinWidth is the narrowest a band is drawn, in pixels.
	MinWidth float64
	// DetailsNtsPerPx is the zoom level below which an expanded track draws
	// sub-features, strand arrows and labels.
	DetailsNtsPerPx float64
	FontSize        float64
	Color           string
}

// DefaultBandConfig returns the default band layout.
func DefaultBandConfig() BandConfig {
	return BandConfig{
		RowHeight:       10,
		TrackPadding:    4,
		BandPadding:     2,
		LabelReserve:    12,
		MinWidth:        2,
		DetailsNtsPerPx: 1000,
		FontSize:        10,
		Color:           "steelblue",
	}
}

func (c BandConfig) withDefaults() BandConfig {
	d := DefaultBandConfig()
	if c.RowHeight <= 0 {
		c.RowHeight = d.RowHeight
	}
	if c.TrackPadding < 0 {
		c.TrackPadding = d.TrackPadding
	}
	if c.BandPadding < 0 {
		c.BandPadding = d.BandPadding
	}
	if c.LabelReserve <= 0 {
		c.LabelReserve = d.LabelReserve
	}
	if c.MinWidth <= 0 {
		c.MinWidth = d.MinWidth
	}
	if c.DetailsNtsPerPx <= 0 {
		c.DetailsNtsPerPx = d.DetailsNtsPerPx
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.Color == "" {
		c.Color = d.Color
	}
	return c
}

// Height returns the expanded track height for numberLanes rows:
//
//	2*TrackPadding + numberLanes*(RowHeight + 2*BandPadding + LabelReserve if details)
func (c BandConfig) Height(numberLanes int, details bool) float64 {
	row := c.RowHeight + 2*c.BandPadding
	if details {
		row += c.LabelReserve
	}
	return 2*c.TrackPadding + float64(numberLanes)*row
}

var quiet = log.New(io.Discard)

// BandFetcher loads the bands of a view.
type BandFetcher func(ctx context.Context, view View) ([]genome.Band, error)

type bandVariant struct {
	cfg   BandConfig
	fetch BandFetcher
}

// NewBand creates a lane-packed interval track for annotations, transcripts
// or variants.
func NewBand(id string, fetch BandFetcher, cfg BandConfig, opts ...Option) *Track[[]genome.Band] {
	cfg = cfg.withDefaults()
	opts = append([]Option{WithHeight(cfg.Height(1, false))}, opts...)
	return New[[]genome.Band](id, &bandVariant{cfg: cfg, fetch: fetch}, opts...)
}

func (v *bandVariant) Kind() Kind { return KindBand }

func (v *bandVariant) Fetch(ctx context.Context, view View) ([]genome.Band, error) {
	return v.fetch(ctx, view)
}

func (v *bandVariant) PlotRange(width float64) (float64, float64) { return 0, width }

// showDetails reports whether the zoom level is close enough for details.
func (v *bandVariant) showDetails(view View, width float64) bool {
	if width <= 0 {
		return false
	}
	return view.Range.Len()/width < v.cfg.DetailsNtsPerPx
}

func (v *bandVariant) ExpandedHeight(bands []genome.Band, view View, width float64) float64 {
	// Draw logs duplicate ids for the same batch
	res := lanes.Pack(intervals(sortBands(bands)), quiet)
	return v.cfg.Height(max(res.NumberLanes, 1), v.showDetails(view, width))
}

func sortBands(bands []genome.Band) []genome.Band {
	sorted := slices.Clone(bands)
	slices.SortStableFunc(sorted, func(a, b genome.Band) int { return cmp.Compare(a.Start, b.Start) })
	return sorted
}

func intervals(bands []genome.Band) []lanes.Interval {
	return lo.Map(bands, func(b genome.Band, _ int) lanes.Interval {
		return lanes.Interval{ID: b.ID, Start: b.Start, End: b.End}
	})
}

// BandRect returns the drawn x extent of a band: its scaled range, widened
// to minWidth around the start pixel when narrower.
func BandRect(xs scale.Func, start, end, minWidth float64) (x1, x2 float64) {
	x1, x2 = xs(start), xs(end)
	if x2-x1 < minWidth {
		x1 -= minWidth / 2
		x2 = x1 + minWidth
	}
	return x1, x2
}

func (v *bandVariant) Draw(f Frame, bands []genome.Band) []hittest.HoverBox {
	ctx, dims, cfg := f.Ctx, f.Dims, v.cfg
	sorted := sortBands(bands)
	layout := lanes.Pack(intervals(sorted), f.Logger)
	details := f.Expanded && v.showDetails(f.View, dims.Width)

	r := f.View.Range
	xs := scale.Linear([2]float64{r.Start, r.End}, [2]float64{0, dims.Width})
	row := cfg.RowHeight + 2*cfg.BandPadding
	if details {
		row += cfg.LabelReserve
	}

	boxes := make([]hittest.HoverBox, 0, len(sorted))
	for _, b := range sorted {
		lane := 0
		if f.Expanded {
			lane = layout.Lane(b.ID)
		}
		b.Y1 = cfg.TrackPadding + float64(lane)*row + cfg.BandPadding
		b.Y2 = b.Y1 + cfg.RowHeight
		x1, x2 := BandRect(xs, b.Start, b.End, cfg.MinWidth)
		if x2 < 0 || x1 > dims.Width {
			continue
		}

		v.drawBand(ctx, b, x1, x2, xs, details)

		label := b.HoverInfo
		if label == "" {
			label = lo.CoalesceOrEmpty(b.Label, b.ID)
		}
		boxes = append(boxes, hittest.HoverBox{
			Label:   label,
			Box:     hittest.Box{X1: x1, X2: x2, Y1: b.Y1, Y2: b.Y2},
			Element: b,
		})
	}
	return boxes
}

func (v *bandVariant) drawBand(ctx canvas.Context, b genome.Band, x1, x2 float64, xs scale.Func, details bool) {
	cfg := v.cfg
	color := lo.CoalesceOrEmpty(b.Color, cfg.Color)
	h := b.Y2 - b.Y1

	if details && len(b.SubFeatures) > 0 {
		// backbone with exons on top
		ctx.SetFillColor(color)
		ctx.FillRect(x1, b.Y1+h*3/8, x2-x1, h/4)
		for _, sf := range b.SubFeatures {
			sx1, sx2 := BandRect(xs, sf.Start, sf.End, 1)
			ctx.SetFillColor(lo.CoalesceOrEmpty(sf.Color, color))
			ctx.FillRect(sx1, b.Y1, sx2-sx1, h)
		}
	} else {
		ctx.SetFillColor(color)
		ctx.FillRect(x1, b.Y1, x2-x1, h)
	}
	if b.EdgeColor != "" {
		ctx.SetStrokeColor(b.EdgeColor)
		ctx.SetLineWidth(lo.CoalesceOrEmpty(b.EdgeWidth, 1))
		ctx.StrokeRect(x1, b.Y1, x2-x1, h)
	}
	if !details {
		return
	}

	if b.Direction != "" {
		v.drawArrow(ctx, b, x1, x2)
	}
	if b.Label != "" {
		ctx.SetFillColor("black")
		ctx.SetFontSize(cfg.FontSize)
		ctx.FillText(b.Label, (x1+x2)/2, b.Y2+cfg.BandPadding+cfg.LabelReserve/2, canvas.AlignCenter)
	}
}

// drawArrow draws a triangle at the 3' end pointing in strand direction.
func (v *bandVariant) drawArrow(ctx canvas.Context, b genome.Band, x1, x2 float64) {
	h := b.Y2 - b.Y1
	size := math.Min(h/2, x2-x1)
	mid := b.Y1 + h/2
	p := canvas.NewPath()
	switch b.Direction {
	case genome.Forward:
		p.MoveTo(x2, mid)
		p.LineTo(x2-size, b.Y1)
		p.LineTo(x2-size, b.Y2)
	case genome.Reverse:
		p.MoveTo(x1, mid)
		p.LineTo(x1+size, b.Y1)
		p.LineTo(x1+size, b.Y2)
	default:
		return
	}
	p.Close()
	ctx.SetFillColor("black")
	ctx.FillPath(p)
}
