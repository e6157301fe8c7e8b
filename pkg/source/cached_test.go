package source

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/matzehuels/trackview/pkg/cache"
	"github.com/matzehuels/trackview/pkg/genome"
)

// countingSource returns fixed data and counts calls per method.
type countingSource struct {
	mu    sync.Mutex
	calls map[string]int
	fail  error
}

func newCountingSource() *countingSource {
	return &countingSource{calls: make(map[string]int)}
}

func (s *countingSource) hit(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name]++
	return s.fail
}

func (s *countingSource) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *countingSource) Chromosomes(context.Context) ([]genome.ChromSize, error) {
	return []genome.ChromSize{{Chrom: "1", Size: 100}}, s.hit(CallChromosomes)
}

func (s *countingSource) ChromInfo(_ context.Context, chrom string) (genome.ChromInfo, error) {
	return genome.ChromInfo{Chrom: chrom, Size: 100}, s.hit(CallChromInfo)
}

func (s *countingSource) CoverageDots(_ context.Context, _, _ string, r genome.Range) ([]genome.Dot, error) {
	return []genome.Dot{{X: r.Start, Y: 1}}, s.hit(CallCoverage)
}

func (s *countingSource) BAFDots(_ context.Context, _, _ string, r genome.Range) ([]genome.Dot, error) {
	return []genome.Dot{{X: r.Start, Y: 0.5}}, s.hit(CallBAF)
}

func (s *countingSource) AnnotationBands(context.Context, string, string) ([]genome.Band, error) {
	return []genome.Band{{ID: "a"}}, s.hit(CallAnnotations)
}

func (s *countingSource) TranscriptBands(context.Context, string) ([]genome.Band, error) {
	return []genome.Band{{ID: "t"}}, s.hit(CallTranscripts)
}

func (s *countingSource) VariantBands(context.Context, string, string, float64) ([]genome.Band, error) {
	return []genome.Band{{ID: "v"}}, s.hit(CallVariants)
}

func (s *countingSource) OverviewCoverage(context.Context, string) (map[string][]genome.Dot, error) {
	return map[string][]genome.Dot{"1": {{X: 1}}}, s.hit(CallOverviewCoverage)
}

func (s *countingSource) OverviewBAF(context.Context, string) (map[string][]genome.Dot, error) {
	return map[string][]genome.Dot{"1": {{X: 1}}}, s.hit(CallOverviewBAF)
}

func (s *countingSource) Close() error { return nil }

func TestCachedMemoizes(t *testing.T) {
	ctx := context.Background()
	src := newCountingSource()
	c := NewCached(src)
	r := genome.Range{Start: 0, End: 50}

	for i := 0; i < 3; i++ {
		c.CoverageDots(ctx, "s1", "1", r)
		c.ChromInfo(ctx, "1")
		c.Chromosomes(ctx)
	}
	if n := src.count(CallCoverage); n != 1 {
		t.Errorf("coverage calls = %d, want 1", n)
	}
	if n := src.count(CallChromInfo); n != 1 {
		t.Errorf("chrom info calls = %d, want 1", n)
	}

	c.CoverageDots(ctx, "s1", "1", genome.Range{Start: 10, End: 50})
	if n := src.count(CallCoverage); n != 2 {
		t.Errorf("coverage calls for new range = %d, want 2", n)
	}
}

func TestCachedInvalidateSample(t *testing.T) {
	ctx := context.Background()
	src := newCountingSource()
	c := NewCached(src)
	r := genome.Range{End: 50}

	c.BAFDots(ctx, "s1", "1", r)
	c.BAFDots(ctx, "s2", "1", r)
	c.TranscriptBands(ctx, "1")

	c.InvalidateSample("s1")
	c.BAFDots(ctx, "s1", "1", r)
	c.BAFDots(ctx, "s2", "1", r)
	c.TranscriptBands(ctx, "1")

	if n := src.count(CallBAF); n != 3 {
		t.Errorf("baf calls = %d, want 3", n)
	}
	if n := src.count(CallTranscripts); n != 1 {
		t.Errorf("reference data refetched after sample invalidation: %d calls", n)
	}

	c.Invalidate()
	c.TranscriptBands(ctx, "1")
	if n := src.count(CallTranscripts); n != 2 {
		t.Errorf("transcript calls after Invalidate = %d, want 2", n)
	}
}

func TestCachedRetainView(t *testing.T) {
	ctx := context.Background()
	src := newCountingSource()
	c := NewCached(src)

	view := genome.Range{Start: 100, End: 200}
	for _, r := range []genome.Range{{Start: 0, End: 100}, {Start: 150, End: 250}, view} {
		c.CoverageDots(ctx, "s1", "1", r)
		c.BAFDots(ctx, "s1", "1", r)
	}
	c.CoverageDots(ctx, "s1", "2", view)
	c.CoverageDots(ctx, "s2", "1", view)
	c.TranscriptBands(ctx, "1")

	// [0,100) ends where the view starts; chromosome 2 and sample s2 go too.
	if n := c.RetainView("s1", "1", view); n != 4 {
		t.Errorf("RetainView removed %d entries, want 4", n)
	}
	entries := c.Entries()
	if entries[CallCoverage] != 2 || entries[CallBAF] != 2 {
		t.Errorf("entries after RetainView = %v", entries)
	}
	if entries[CallTranscripts] != 1 {
		t.Error("reference data dropped by RetainView")
	}

	c.CoverageDots(ctx, "s1", "1", genome.Range{Start: 150, End: 250})
	if n := src.count(CallCoverage); n != 5 {
		t.Errorf("coverage calls = %d, want 5 (overlapping range kept)", n)
	}
}

func TestCachedViewMemoBounded(t *testing.T) {
	ctx := context.Background()
	c := NewCached(newCountingSource())
	for i := range 5000 {
		start := float64(i)
		c.CoverageDots(ctx, "s1", "1", genome.Range{Start: start, End: start + 10})
	}
	if n := c.Entries()[CallCoverage]; n != ViewMemoLimit {
		t.Errorf("coverage entries after 5000 ranges = %d, want %d", n, ViewMemoLimit)
	}
}

func TestCachedPersistentStore(t *testing.T) {
	ctx := context.Background()
	store, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	src := newCountingSource()

	first := NewCached(src, WithStore(store, 0))
	if _, err := first.VariantBands(ctx, "s1", "1", 3); err != nil {
		t.Fatal(err)
	}

	// a fresh memo layer reads through to the store
	second := NewCached(src, WithStore(store, 0))
	bands, err := second.VariantBands(ctx, "s1", "1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(bands) != 1 || bands[0].ID != "v" {
		t.Errorf("bands = %v", bands)
	}
	if n := src.count(CallVariants); n != 1 {
		t.Errorf("variant calls = %d, want 1", n)
	}
}

func TestCachedErrorsNotStored(t *testing.T) {
	ctx := context.Background()
	src := newCountingSource()
	src.fail = errors.New("db down")
	c := NewCached(src)

	if _, err := c.OverviewCoverage(ctx, "s1"); err == nil {
		t.Fatal("expected error")
	}
	src.fail = nil
	if _, err := c.OverviewCoverage(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if n := src.count(CallOverviewCoverage); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestInRangeAndDownsample(t *testing.T) {
	dots := []genome.Dot{{X: 0}, {X: 10}, {X: 20}, {X: 30}}
	if got := InRange(dots, genome.Range{Start: 10, End: 30}); len(got) != 2 {
		t.Errorf("InRange = %v", got)
	}
	if got := Downsample(dots, 2); len(got) != 2 || got[1].X != 20 {
		t.Errorf("Downsample = %v", got)
	}
	if got := Downsample(dots, 10); len(got) != 4 {
		t.Errorf("Downsample above length = %v", got)
	}
}
