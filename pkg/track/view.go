package track

import (
	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/render/hittest"
)

// Kind names a track variant.
type Kind string

// Track kinds.
const (
	KindDot      Kind = "dot"
	KindBand     Kind = "band"
	KindIdeogram Kind = "ideogram"
	KindOverview Kind = "overview"
)

// View is the viewport state a frame is drawn for. It is a snapshot; the
// session owns the live state.
type View struct {
	Sample     string
	Chrom      string
	Range      genome.Range
	Highlights []genome.Highlight
}

// Region returns the viewed region.
func (v View) Region() genome.Region {
	return genome.Region{Chrom: v.Chrom, Range: v.Range}
}

// Viewport is the session as seen by tracks: read accessors plus the
// callbacks through which every viewport change flows back to its single
// writer.
type Viewport interface {
	XRange() genome.Range
	Chromosome() string
	Sample() string
	Highlights() []genome.Highlight
	MarkerMode() bool

	SetViewRange(r genome.Range) error
	ZoomOut() error
	AddHighlight(r genome.Range) (genome.Highlight, error)
	RemoveHighlight(id string) error
}

// ViewOf snapshots the viewport.
func ViewOf(vp Viewport) View {
	return View{
		Sample:     vp.Sample(),
		Chrom:      vp.Chromosome(),
		Range:      vp.XRange(),
		Highlights: vp.Highlights(),
	}
}

// PopupPositioner places a detail popup next to the clicked feature.
// Positioning is left to the embedding program.
type PopupPositioner interface {
	PositionPopup(anchor hittest.Box) (x, y float64)
}

// Hover is the result of a pointer-move lookup.
type Hover struct {
	Found   bool
	Label   string
	Feature genome.Feature
	Box     hittest.Box
	// Cursor is "pointer" over a feature or the marker close box,
	// "default" otherwise.
	Cursor string
}

// Click is the result of a click on a feature.
type Click struct {
	FeatureID string
	Feature   genome.Feature
	Anchor    hittest.Box
	// PopupX and PopupY are set when a PopupPositioner is configured.
	PopupX, PopupY float64
}
