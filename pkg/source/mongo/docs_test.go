package mongo

import (
	"testing"

	"github.com/matzehuels/trackview/pkg/genome"
)

func TestChromInfoSortsBands(t *testing.T) {
	d := chromDoc{Chrom: "1", Size: 1000, Centromere: &intervalDoc{Start: 400, End: 450}}
	info := d.chromInfo([]cytobandDoc{
		{Name: "q1", Start: 450, End: 1000, Stain: "gpos50"},
		{Name: "p1", Start: 0, End: 400, Stain: "gneg"},
	})
	if info.Centromere == nil || *info.Centromere != (genome.Range{Start: 400, End: 450}) {
		t.Errorf("centromere = %v", info.Centromere)
	}
	if len(info.Bands) != 2 || info.Bands[0].ID != "p1" {
		t.Errorf("bands = %+v", info.Bands)
	}
}

func TestTranscriptBand(t *testing.T) {
	d := transcriptDoc{
		TranscriptID: "ENST1",
		GeneName:     "BRCA2",
		Start:        100,
		End:          900,
		Strand:       "-1",
		Mane:         true,
		Exons:        []intervalDoc{{Start: 100, End: 200}, {Start: 800, End: 900}},
	}
	b := d.band()
	if b.ID != "ENST1" || b.Label != "BRCA2" || b.Direction != genome.Reverse {
		t.Errorf("band = %+v", b)
	}
	if b.Color != ManeTranscriptColor {
		t.Errorf("color = %s, want MANE color", b.Color)
	}
	if len(b.SubFeatures) != 2 || b.SubFeatures[1].Start != 800 {
		t.Errorf("exons = %+v", b.SubFeatures)
	}
}

func TestVariantBandColor(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"del", DeletionColor},
		{"dup", DuplicationColor},
		{"inv", VariantColor},
	}
	for _, tt := range tests {
		b := variantDoc{VariantID: "v", Type: tt.typ, Start: 0, End: 1500, Rank: 8}.band()
		if b.Color != tt.want {
			t.Errorf("%s: color = %s, want %s", tt.typ, b.Color, tt.want)
		}
		if b.HoverInfo != tt.typ+" 1,500 bp, rank 8" {
			t.Errorf("%s: hover = %q", tt.typ, b.HoverInfo)
		}
	}
}

func TestAnnotationDefaults(t *testing.T) {
	b := annotationDoc{ID: "a1", Source: "clinvar", Name: "x", Strand: "+"}.band()
	if b.Color != AnnotationColor || b.Direction != genome.Forward || b.HoverInfo != "x (clinvar)" {
		t.Errorf("band = %+v", b)
	}
}

func TestGroupByChrom(t *testing.T) {
	got := groupByChrom([]dotDoc{
		{Chrom: "1", Pos: 1, Value: 0.1},
		{Chrom: "1", Pos: 2, Value: 0.2},
		{Chrom: "2", Pos: 1, Value: 0.3},
	})
	if len(got["1"]) != 2 || len(got["2"]) != 1 || got["2"][0].Y != 0.3 {
		t.Errorf("grouped = %v", got)
	}
}

func TestConnectRequiresURI(t *testing.T) {
	if _, err := Connect(t.Context(), Config{}, nil); err == nil {
		t.Error("expected error without uri")
	}
}
