package track

import (
	"context"
	"testing"

	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/render/canvas"
	"github.com/matzehuels/trackview/pkg/render/canvas/svg"
)

func TestOverviewChromosomeClick(t *testing.T) {
	data := OverviewData{
		Chromosomes: []genome.ChromSize{{Chrom: "1", Size: 1000}, {Chrom: "2", Size: 500}},
		Dots: map[string][]genome.Dot{
			"1": {{X: 100, Y: 0}},
			"2": {{X: 250, Y: 1}},
		},
	}
	var navigated []string
	tr := NewOverview("overview",
		func(context.Context, View) (OverviewData, error) { return data, nil },
		DefaultOverviewConfig(),
		WithBackend(svg.New()),
		WithDetail(func(chrom string) { navigated = append(navigated, chrom) }),
	)
	const width = 300.0
	if err := tr.Initialize(canvas.NewContainer(width, 1)); err != nil {
		t.Fatal(err)
	}
	if err := tr.Render(context.Background(), View{Chrom: "1"}); err != nil {
		t.Fatal(err)
	}

	// genome position 1000+250 on the global scale 0..1500 -> 0..300
	x := (1000.0 + 250.0) / 1500.0 * width
	c, ok := tr.Click(x, 10)
	if !ok {
		t.Fatal("click inside chromosome 2 should hit")
	}
	if c.FeatureID != "2" || len(navigated) != 1 || navigated[0] != "2" {
		t.Errorf("navigated to %v, want [2]", navigated)
	}
}

func TestOverviewSpans(t *testing.T) {
	spans := OverviewSpans([]genome.ChromSize{
		{Chrom: "1", Size: 300},
		{Chrom: "2", Size: 100},
		{Chrom: "X", Size: 100},
	}, 500)
	want := []ChromSpan{
		{Chrom: "1", Size: 300, X1: 0, X2: 300},
		{Chrom: "2", Size: 100, X1: 300, X2: 400},
		{Chrom: "X", Size: 100, X1: 400, X2: 500},
	}
	if len(spans) != len(want) {
		t.Fatalf("got %d spans", len(spans))
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Errorf("span %d = %+v, want %+v", i, spans[i], want[i])
		}
	}
	if got := OverviewSpans(nil, 100); len(got) != 0 {
		t.Errorf("empty genome = %v", got)
	}
}
