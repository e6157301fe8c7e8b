package mongo

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/trackview/pkg/genome"
)

// Feature colors.
const (
	TranscriptColor     = "#5f8fbf"
	ManeTranscriptColor = "#1f4e79"
	DeletionColor       = "#d62728"
	DuplicationColor    = "#1f77b4"
	VariantColor        = "#7f7f7f"
	AnnotationColor     = "#8c6bb1"
)

type intervalDoc struct {
	Start float64 `bson:"start"`
	End   float64 `bson:"end"`
}

type chromDoc struct {
	Chrom      string       `bson:"chrom"`
	Size       float64      `bson:"size"`
	Order      int          `bson:"order"`
	Centromere *intervalDoc `bson:"centromere,omitempty"`
}

type cytobandDoc struct {
	Chrom string  `bson:"chrom"`
	Name  string  `bson:"name"`
	Start float64 `bson:"start"`
	End   float64 `bson:"end"`
	Stain string  `bson:"stain"`
}

type dotDoc struct {
	Chrom string  `bson:"chrom"`
	Pos   float64 `bson:"pos"`
	Value float64 `bson:"value"`
}

type annotationDoc struct {
	ID     string  `bson:"_id"`
	Source string  `bson:"source"`
	Chrom  string  `bson:"chrom"`
	Start  float64 `bson:"start"`
	End    float64 `bson:"end"`
	Name   string  `bson:"name"`
	Color  string  `bson:"color,omitempty"`
	Strand string  `bson:"strand,omitempty"`
}

type transcriptDoc struct {
	TranscriptID string        `bson:"transcript_id"`
	GeneName     string        `bson:"gene_name"`
	Chrom        string        `bson:"chrom"`
	Start        float64       `bson:"start"`
	End          float64       `bson:"end"`
	Strand       string        `bson:"strand"`
	Mane         bool          `bson:"mane"`
	Exons        []intervalDoc `bson:"exons"`
}

type variantDoc struct {
	VariantID string  `bson:"variant_id"`
	Sample    string  `bson:"sample"`
	Chrom     string  `bson:"chrom"`
	Start     float64 `bson:"start"`
	End       float64 `bson:"end"`
	Type      string  `bson:"type"`
	Rank      float64 `bson:"rank_score"`
}

func (d chromDoc) chromSize() genome.ChromSize {
	return genome.ChromSize{Chrom: d.Chrom, Size: d.Size}
}

// chromInfo joins a chromosome with its cytobands, sorted by start.
func (d chromDoc) chromInfo(bands []cytobandDoc) genome.ChromInfo {
	info := genome.ChromInfo{Chrom: d.Chrom, Size: d.Size}
	if d.Centromere != nil {
		info.Centromere = &genome.Range{Start: d.Centromere.Start, End: d.Centromere.End}
	}
	for _, b := range bands {
		info.Bands = append(info.Bands, genome.CytoBand{ID: b.Name, Start: b.Start, End: b.End, Stain: b.Stain})
	}
	slices.SortFunc(info.Bands, func(a, b genome.CytoBand) int { return cmp.Compare(a.Start, b.Start) })
	return info
}

func (d dotDoc) dot() genome.Dot {
	return genome.Dot{X: d.Pos, Y: d.Value}
}

func strand(s string) genome.Direction {
	switch s {
	case "+", "1":
		return genome.Forward
	case "-", "-1":
		return genome.Reverse
	default:
		return ""
	}
}

func (d annotationDoc) band() genome.Band {
	color := d.Color
	if color == "" {
		color = AnnotationColor
	}
	return genome.Band{
		ID:        d.ID,
		Start:     d.Start,
		End:       d.End,
		Color:     color,
		Label:     d.Name,
		HoverInfo: fmt.Sprintf("%s (%s)", d.Name, d.Source),
		Direction: strand(d.Strand),
	}
}

func (d transcriptDoc) band() genome.Band {
	b := genome.Band{
		ID:        d.TranscriptID,
		Start:     d.Start,
		End:       d.End,
		Color:     TranscriptColor,
		Label:     d.GeneName,
		HoverInfo: fmt.Sprintf("%s %s", d.GeneName, d.TranscriptID),
		Direction: strand(d.Strand),
	}
	if d.Mane {
		b.Color = ManeTranscriptColor
		b.HoverInfo += " (MANE)"
	}
	for _, e := range d.Exons {
		b.SubFeatures = append(b.SubFeatures, genome.SubFeature{Start: e.Start, End: e.End})
	}
	return b
}

func (d variantDoc) band() genome.Band {
	color := VariantColor
	switch d.Type {
	case "del":
		color = DeletionColor
	case "dup":
		color = DuplicationColor
	}
	return genome.Band{
		ID:        d.VariantID,
		Start:     d.Start,
		End:       d.End,
		Color:     color,
		Label:     d.Type,
		HoverInfo: fmt.Sprintf("%s %s bp, rank %g", d.Type, humanize.Comma(int64(d.End-d.Start)), d.Rank),
	}
}
