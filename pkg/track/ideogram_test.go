package track

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/render/canvas"
	"github.com/matzehuels/trackview/pkg/render/canvas/raster"
)

func chromInfo(info genome.ChromInfo) IdeogramFetcher {
	return func(context.Context, View) (genome.ChromInfo, error) { return info, nil }
}

var testChrom = genome.ChromInfo{
	Chrom:      "1",
	Size:       1000,
	Centromere: &genome.Range{Start: 400, End: 520},
	Bands: []genome.CytoBand{
		{ID: "p2", Start: 0, End: 200, Stain: "gpos100"},
		{ID: "p1", Start: 200, End: 400, Stain: "gpos50"},
		{ID: "cen", Start: 400, End: 520, Stain: "acen"},
		{ID: "q1", Start: 520, End: 1000, Stain: "gpos75"},
	},
}

// TestIdeogramClipContainment renders opaque bands with an invisible outline
// and checks that no pixel well outside the silhouette was painted.
func TestIdeogramClipContainment(t *testing.T) {
	cfg := DefaultIdeogramConfig()
	cfg.EdgeColor = "transparent"
	cfg.FillColor = "transparent"

	const width, height = 400.0, 40.0
	tr := NewIdeogram("ideo", chromInfo(testChrom), cfg, WithBackend(raster.New()), WithHeight(height))
	if err := tr.Initialize(canvas.NewContainer(width, 1)); err != nil {
		t.Fatal(err)
	}
	// an empty range keeps the viewport marker off the canvas
	if err := tr.Render(context.Background(), View{Chrom: "1"}); err != nil {
		t.Fatal(err)
	}
	ctx, _ := tr.Surface().Context()
	img := ctx.(*raster.Context).Image()

	shape := Silhouette(testChrom.Size, testChrom.Centromere, genome.Dimensions{Width: width, Height: height}, cfg)
	const margin = 1.5
	clearOf := func(x, y float64, inside bool) bool {
		for _, d := range [][2]float64{{0, 0}, {-1, -1}, {-1, 1}, {1, -1}, {1, 1}, {-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			if shape.Contains(x+d[0]*margin, y+d[1]*margin) != inside {
				return false
			}
		}
		return true
	}

	var outside, inside int
	for py := 0; py < int(height); py++ {
		for px := 0; px < int(width); px++ {
			cx, cy := float64(px)+0.5, float64(py)+0.5
			_, _, _, a := img.At(px, py).RGBA()
			switch {
			case clearOf(cx, cy, false):
				outside++
				if a != 0 {
					t.Fatalf("pixel (%d,%d) outside the silhouette has alpha %d", px, py, a)
				}
			case clearOf(cx, cy, true):
				inside++
				if a == 0 {
					t.Fatalf("pixel (%d,%d) inside the silhouette was not painted", px, py)
				}
			}
		}
	}
	if outside == 0 || inside == 0 {
		t.Fatalf("degenerate sample: %d outside, %d inside", outside, inside)
	}
}

func TestSilhouetteNotch(t *testing.T) {
	dims := genome.Dimensions{Width: 400, Height: 40}
	cfg := DefaultIdeogramConfig()
	shape := Silhouette(1000, &genome.Range{Start: 400, End: 520}, dims, cfg)

	// centromere center at x = 2 + 460/1000*396
	cx := 2 + 0.46*396
	depth := 40 * cfg.NotchRatio
	if shape.Contains(cx, 2+depth/2) {
		t.Error("top notch should be cut out")
	}
	if shape.Contains(cx, 38-depth/2) {
		t.Error("bottom notch should be cut out")
	}
	if !shape.Contains(cx, 20) {
		t.Error("centromere middle should stay inside")
	}
	if !shape.Contains(100, 5) {
		t.Error("arm interior should be inside")
	}
	if shape.Contains(2.5, 2.5) {
		t.Error("corners should be rounded off")
	}

	plain := Silhouette(1000, nil, dims, cfg)
	if !plain.Contains(cx, 2+depth/2) {
		t.Error("without centromere there is no notch")
	}
}

func TestSilhouetteNotchFollowsTrackHeight(t *testing.T) {
	dims := genome.Dimensions{Width: 400, Height: 40}
	cfg := DefaultIdeogramConfig()
	cfg.Padding = 10
	cfg.NotchRatio = 0.2
	shape := Silhouette(1000, &genome.Range{Start: 400, End: 520}, dims, cfg)

	// notch depth is 0.2*40 = 8 below the top edge at y = 10, not 0.2*20
	cx := 10 + 0.46*380
	if shape.Contains(cx, 15) {
		t.Error("notch depth should scale with the track height")
	}
	if !shape.Contains(cx, 20) {
		t.Error("centromere middle should stay inside")
	}
}

func TestSilhouetteBeveledEnds(t *testing.T) {
	dims := genome.Dimensions{Width: 400, Height: 40}
	cfg := DefaultIdeogramConfig()
	shape := Silhouette(1000, nil, dims, cfg)

	// h = 36 and the bevel runs from (2,11) to (11,2), i.e. x+y = 13; the
	// mirrored cuts sit at the other three corners.
	tests := []struct {
		name   string
		x, y   float64
		inside bool
	}{
		{"top left cut", 5.5, 5.5, false},
		{"top left behind cut", 7.5, 7.5, true},
		{"bottom left cut", 5.5, 34.5, false},
		{"top right cut", 394.5, 5.5, false},
		{"bottom right cut", 394.5, 34.5, false},
		{"bottom right behind cut", 392.5, 32.5, true},
		{"left end", 2.5, 20, true},
		{"right end", 397.5, 20, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shape.Contains(tt.x, tt.y); got != tt.inside {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.inside)
			}
		})
	}
}

func TestSilhouetteTinyCentromere(t *testing.T) {
	dims := genome.Dimensions{Width: 400, Height: 40}
	shape := Silhouette(1e9, &genome.Range{Start: 5e8, End: 5e8 + 10}, dims, DefaultIdeogramConfig())
	x0, y0, x1, y1 := shape.Bounds()
	if math.IsInf(x0, 0) || x1-x0 < 390 || y1-y0 < 35 {
		t.Errorf("bounds = %v %v %v %v", x0, y0, x1, y1)
	}
}

func TestUnmappedStainLogged(t *testing.T) {
	var buf bytes.Buffer
	info := genome.ChromInfo{
		Chrom: "X",
		Size:  100,
		Bands: []genome.CytoBand{{ID: "b1", Start: 0, End: 100, Stain: "mystery"}},
	}
	tr := NewIdeogram("ideo", chromInfo(info), IdeogramConfig{}, WithBackend(raster.New()), WithLogger(log.New(&buf)))
	if err := tr.Initialize(canvas.NewContainer(200, 1)); err != nil {
		t.Fatal(err)
	}
	if err := tr.Render(context.Background(), View{Chrom: "X", Range: genome.Range{Start: 10, End: 20}}); err != nil {
		t.Fatalf("unmapped stain must not fail the render: %v", err)
	}
	if !strings.Contains(buf.String(), "unmapped ideogram stain") {
		t.Errorf("log = %q", buf.String())
	}
	boxes := tr.HoverBoxes()
	if len(boxes) != 1 || boxes[0].Element.(genome.Band).Color != DefaultIdeogramConfig().UnknownStainColor {
		t.Errorf("fallback color not used: %+v", boxes)
	}
}
