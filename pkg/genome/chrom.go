package genome

import (
	"strconv"

	"github.com/google/uuid"
)

// CytoBand is one cytogenetic band of a chromosome.
type CytoBand struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Stain string  `json:"stain"`
}

// ChromInfo is reference data for a single chromosome.
type ChromInfo struct {
	Chrom      string     `json:"chrom"`
	Size       float64    `json:"size"`
	Centromere *Range     `json:"centromere,omitempty"`
	Bands      []CytoBand `json:"bands,omitempty"`
}

// ChromSize is a chromosome name with its length, in genome order.
type ChromSize struct {
	Chrom string  `json:"chrom"`
	Size  float64 `json:"size"`
}

// Dimensions is the logical (CSS pixel) size of a drawable area.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Highlight is a colored range created by drag-select.
type Highlight struct {
	ID         string `json:"id"`
	Chromosome string `json:"chromosome"`
	Range      Range  `json:"range"`
	Color      string `json:"color"`
}

// DefaultHighlightColor is used when a highlight is created without a color.
const DefaultHighlightColor = "rgba(255, 200, 0, 0.3)"

// NewHighlight creates a highlight with a fresh random id.
func NewHighlight(chrom string, r Range, color string) Highlight {
	if color == "" {
		color = DefaultHighlightColor
	}
	return Highlight{
		ID:         uuid.NewString(),
		Chromosome: chrom,
		Range:      NewRange(r.Start, r.End),
		Color:      color,
	}
}

func formatPos(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
