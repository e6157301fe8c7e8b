package genome

import "testing"

func TestNewRangeOrders(t *testing.T) {
	r := NewRange(200, 100)
	if r.Start != 100 || r.End != 200 {
		t.Errorf("NewRange(200, 100) = %+v", r)
	}
}

func TestRangeOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{"disjoint", Range{0, 10}, Range{10, 20}, false},
		{"overlap", Range{0, 10}, Range{5, 20}, true},
		{"contained", Range{0, 100}, Range{5, 6}, true},
		{"point inside", Range{5, 5}, Range{0, 10}, true},
		{"point at end", Range{10, 10}, Range{0, 10}, false},
		{"range contains point", Range{0, 10}, Range{0, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("%v.Overlaps(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRangeClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Range
		want Range
	}{
		{"inside", Range{10, 20}, Range{10, 20}},
		{"before start", Range{-5, 5}, Range{0, 10}},
		{"after end", Range{95, 105}, Range{90, 100}},
		{"wider than bounds", Range{-50, 500}, Range{0, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamp(0, 100); got != tt.want {
				t.Errorf("Clamp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegionString(t *testing.T) {
	r := Region{Chrom: "1", Range: Range{Start: 1000, End: 1000000}}
	if got, want := r.String(), "1:1,000-1,000,000"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewHighlight(t *testing.T) {
	a := NewHighlight("1", Range{Start: 50, End: 10}, "")
	b := NewHighlight("1", Range{Start: 10, End: 50}, "red")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("highlight ids should be unique and non-empty: %q %q", a.ID, b.ID)
	}
	if a.Range.Start != 10 || a.Range.End != 50 {
		t.Errorf("highlight range should be ordered: %v", a.Range)
	}
	if a.Color != DefaultHighlightColor {
		t.Errorf("default color = %q", a.Color)
	}
}

func TestFeatureIDs(t *testing.T) {
	var f Feature = Band{ID: "gene-1"}
	if f.FeatureID() != "gene-1" {
		t.Errorf("band FeatureID = %q", f.FeatureID())
	}
	f = ChromSpan{Chrom: "X"}
	if f.FeatureID() != "X" {
		t.Errorf("span FeatureID = %q", f.FeatureID())
	}
	f = Dot{X: 1500}
	if f.FeatureID() != "1500" {
		t.Errorf("dot FeatureID = %q", f.FeatureID())
	}
}
