package genome

// Feature is a logical entity a hover box can point back to.
// The set of implementations is closed: [Band], [Dot] and [ChromSpan].
type Feature interface {
	FeatureID() string
	isFeature()
}

// Direction is the strand of a stranded feature.
type Direction string

// Strand values.
const (
	Forward Direction = "+"
	Reverse Direction = "-"
)

// Dot is one scatter point in data space.
type Dot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color,omitempty"`
}

// FeatureID returns an id derived from the dot position.
func (d Dot) FeatureID() string { return formatPos(d.X) }
func (Dot) isFeature()          {}

// SubFeature is an interval drawn inside a band, e.g. an exon.
type SubFeature struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Color string  `json:"color,omitempty"`
}

// Band is a rendered genomic interval (gene, transcript, variant, annotation).
//
// ID must be unique within one render batch. Y1 and Y2 are filled in by the
// band track during layout and are ignored on input.
type Band struct {
	ID          string       `json:"id"`
	Start       float64      `json:"start"`
	End         float64      `json:"end"`
	Color       string       `json:"color,omitempty"`
	EdgeColor   string       `json:"edge_color,omitempty"`
	EdgeWidth   float64      `json:"edge_width,omitempty"`
	Label       string       `json:"label,omitempty"`
	HoverInfo   string       `json:"hover_info,omitempty"`
	Direction   Direction    `json:"direction,omitempty"`
	SubFeatures []SubFeature `json:"sub_features,omitempty"`

	Y1 float64 `json:"-"`
	Y2 float64 `json:"-"`
}

// FeatureID returns the band id.
func (b Band) FeatureID() string { return b.ID }
func (Band) isFeature()          {}

// Range returns the band extent.
func (b Band) Range() Range { return Range{Start: b.Start, End: b.End} }

// ChromSpan is a chromosome's horizontal span in the genome overview.
type ChromSpan struct {
	Chrom string
	Size  float64
}

// FeatureID returns the chromosome name.
func (c ChromSpan) FeatureID() string { return c.Chrom }
func (ChromSpan) isFeature()          {}
