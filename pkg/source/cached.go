package source

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackview/pkg/cache"
	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/observability"
)

// CachedOption configures a Cached source.
type CachedOption func(*Cached)

// WithStore adds a persistent byte cache below the in-memory memos. Values
// are stored as JSON for ttl; a zero ttl keeps them until deleted.
func WithStore(store cache.Cache, ttl time.Duration) CachedOption {
	return func(c *Cached) {
		c.store = store
		c.ttl = ttl
	}
}

// WithCacheLogger sets the logger for cache failures.
func WithCacheLogger(l *log.Logger) CachedOption {
	return func(c *Cached) { c.logger = l }
}

type dotKey struct {
	Sample, Chrom string
	Range         genome.Range
}

type annotationKey struct{ SourceID, Chrom string }

type variantKey struct {
	Sample, Chrom string
	Threshold     float64
}

// ViewMemoLimit bounds the coverage and BAF memos, which gain a key for
// every distinct viewed range.
const ViewMemoLimit = 64

// Cached memoizes every call of an inner Source. Reference data
// (chromosomes, cytobands, annotations, transcripts) is kept until
// Invalidate; sample data can be dropped per sample with InvalidateSample,
// and range-keyed data outside the current view with RetainView.
type Cached struct {
	src    Source
	store  cache.Cache
	ttl    time.Duration
	logger *log.Logger

	chroms      *cache.Memo[struct{}, []genome.ChromSize]
	info        *cache.Memo[string, genome.ChromInfo]
	coverage    *cache.Memo[dotKey, []genome.Dot]
	baf         *cache.Memo[dotKey, []genome.Dot]
	annotations *cache.Memo[annotationKey, []genome.Band]
	transcripts *cache.Memo[string, []genome.Band]
	variants    *cache.Memo[variantKey, []genome.Band]
	ovCoverage  *cache.Memo[string, map[string][]genome.Dot]
	ovBAF       *cache.Memo[string, map[string][]genome.Dot]
}

// NewCached wraps src.
func NewCached(src Source, opts ...CachedOption) *Cached {
	dots := cache.WithSizer(func(d []genome.Dot) int { return len(d) })
	viewLimit := cache.WithLimit[[]genome.Dot](ViewMemoLimit)
	bands := cache.WithSizer(func(b []genome.Band) int { return len(b) })
	overview := cache.WithSizer(func(m map[string][]genome.Dot) int {
		n := 0
		for _, d := range m {
			n += len(d)
		}
		return n
	})
	c := &Cached{
		src:         src,
		chroms:      cache.NewMemo[struct{}, []genome.ChromSize](CallChromosomes),
		info:        cache.NewMemo[string, genome.ChromInfo](CallChromInfo),
		coverage:    cache.NewMemo[dotKey](CallCoverage, dots, viewLimit),
		baf:         cache.NewMemo[dotKey](CallBAF, dots, viewLimit),
		annotations: cache.NewMemo[annotationKey](CallAnnotations, bands),
		transcripts: cache.NewMemo[string](CallTranscripts, bands),
		variants:    cache.NewMemo[variantKey](CallVariants, bands),
		ovCoverage:  cache.NewMemo[string](CallOverviewCoverage, overview),
		ovBAF:       cache.NewMemo[string](CallOverviewBAF, overview),
	}
	for _, o := range opts {
		o(c)
	}
	if c.store == nil {
		c.store = cache.NewNullCache()
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c
}

// Invalidate drops every memoized value. The persistent store is untouched.
func (c *Cached) Invalidate() {
	c.chroms.Invalidate()
	c.info.Invalidate()
	c.coverage.Invalidate()
	c.baf.Invalidate()
	c.annotations.Invalidate()
	c.transcripts.Invalidate()
	c.variants.Invalidate()
	c.ovCoverage.Invalidate()
	c.ovBAF.Invalidate()
}

// InvalidateSample drops memoized values of one sample.
func (c *Cached) InvalidateSample(sample string) {
	n := c.coverage.InvalidateFunc(func(k dotKey) bool { return k.Sample == sample })
	n += c.baf.InvalidateFunc(func(k dotKey) bool { return k.Sample == sample })
	n += c.variants.InvalidateFunc(func(k variantKey) bool { return k.Sample == sample })
	n += c.ovCoverage.InvalidateFunc(func(k string) bool { return k == sample })
	n += c.ovBAF.InvalidateFunc(func(k string) bool { return k == sample })
	c.logger.Debug("sample cache invalidated", "sample", sample, "entries", n)
}

// RetainView drops the coverage and BAF responses that cannot serve the
// view of sample on chrom over r: other samples, other chromosomes and
// ranges not overlapping r. It reports how many entries were removed.
func (c *Cached) RetainView(sample, chrom string, r genome.Range) int {
	outside := func(k dotKey) bool {
		return k.Sample != sample || k.Chrom != chrom || !k.Range.Overlaps(r)
	}
	n := c.coverage.InvalidateFunc(outside) + c.baf.InvalidateFunc(outside)
	if n > 0 {
		c.logger.Debug("pruned view cache", "sample", sample, "chrom", chrom, "range", r, "entries", n)
	}
	return n
}

// Entries returns the number of memoized responses per call kind.
func (c *Cached) Entries() map[string]int {
	return map[string]int{
		CallChromosomes:      c.chroms.Len(),
		CallChromInfo:        c.info.Len(),
		CallCoverage:         c.coverage.Len(),
		CallBAF:              c.baf.Len(),
		CallAnnotations:      c.annotations.Len(),
		CallTranscripts:      c.transcripts.Len(),
		CallVariants:         c.variants.Len(),
		CallOverviewCoverage: c.ovCoverage.Len(),
		CallOverviewBAF:      c.ovBAF.Len(),
	}
}

func (c *Cached) Chromosomes(ctx context.Context) ([]genome.ChromSize, error) {
	return c.chroms.Get(ctx, struct{}{}, func(ctx context.Context) ([]genome.ChromSize, error) {
		return persisted(ctx, c, cache.Key(CallChromosomes), func(ctx context.Context) ([]genome.ChromSize, error) {
			return c.src.Chromosomes(ctx)
		})
	})
}

func (c *Cached) ChromInfo(ctx context.Context, chrom string) (genome.ChromInfo, error) {
	return c.info.Get(ctx, chrom, func(ctx context.Context) (genome.ChromInfo, error) {
		return persisted(ctx, c, cache.Key(CallChromInfo, chrom), func(ctx context.Context) (genome.ChromInfo, error) {
			return c.src.ChromInfo(ctx, chrom)
		})
	})
}

func (c *Cached) CoverageDots(ctx context.Context, sample, chrom string, r genome.Range) ([]genome.Dot, error) {
	return c.coverage.Get(ctx, dotKey{sample, chrom, r}, func(ctx context.Context) ([]genome.Dot, error) {
		return persisted(ctx, c, cache.Key(CallCoverage, sample, chrom, r), func(ctx context.Context) ([]genome.Dot, error) {
			return c.src.CoverageDots(ctx, sample, chrom, r)
		})
	})
}

func (c *Cached) BAFDots(ctx context.Context, sample, chrom string, r genome.Range) ([]genome.Dot, error) {
	return c.baf.Get(ctx, dotKey{sample, chrom, r}, func(ctx context.Context) ([]genome.Dot, error) {
		return persisted(ctx, c, cache.Key(CallBAF, sample, chrom, r), func(ctx context.Context) ([]genome.Dot, error) {
			return c.src.BAFDots(ctx, sample, chrom, r)
		})
	})
}

func (c *Cached) AnnotationBands(ctx context.Context, sourceID, chrom string) ([]genome.Band, error) {
	return c.annotations.Get(ctx, annotationKey{sourceID, chrom}, func(ctx context.Context) ([]genome.Band, error) {
		return persisted(ctx, c, cache.Key(CallAnnotations, sourceID, chrom), func(ctx context.Context) ([]genome.Band, error) {
			return c.src.AnnotationBands(ctx, sourceID, chrom)
		})
	})
}

func (c *Cached) TranscriptBands(ctx context.Context, chrom string) ([]genome.Band, error) {
	return c.transcripts.Get(ctx, chrom, func(ctx context.Context) ([]genome.Band, error) {
		return persisted(ctx, c, cache.Key(CallTranscripts, chrom), func(ctx context.Context) ([]genome.Band, error) {
			return c.src.TranscriptBands(ctx, chrom)
		})
	})
}

func (c *Cached) VariantBands(ctx context.Context, sample, chrom string, threshold float64) ([]genome.Band, error) {
	return c.variants.Get(ctx, variantKey{sample, chrom, threshold}, func(ctx context.Context) ([]genome.Band, error) {
		return persisted(ctx, c, cache.Key(CallVariants, sample, chrom, threshold), func(ctx context.Context) ([]genome.Band, error) {
			return c.src.VariantBands(ctx, sample, chrom, threshold)
		})
	})
}

func (c *Cached) OverviewCoverage(ctx context.Context, sample string) (map[string][]genome.Dot, error) {
	return c.ovCoverage.Get(ctx, sample, func(ctx context.Context) (map[string][]genome.Dot, error) {
		return persisted(ctx, c, cache.Key(CallOverviewCoverage, sample), func(ctx context.Context) (map[string][]genome.Dot, error) {
			return c.src.OverviewCoverage(ctx, sample)
		})
	})
}

func (c *Cached) OverviewBAF(ctx context.Context, sample string) (map[string][]genome.Dot, error) {
	return c.ovBAF.Get(ctx, sample, func(ctx context.Context) (map[string][]genome.Dot, error) {
		return persisted(ctx, c, cache.Key(CallOverviewBAF, sample), func(ctx context.Context) (map[string][]genome.Dot, error) {
			return c.src.OverviewBAF(ctx, sample)
		})
	})
}

// Close closes the inner source. The store belongs to the caller.
func (c *Cached) Close() error {
	return c.src.Close()
}

// persisted reads key from the byte store, falling back to fetch. Store
// failures are logged and never fail the call. The fetch is reported to
// the source hooks under the key's call name.
func persisted[V any](ctx context.Context, c *Cached, key string, fetch func(context.Context) (V, error)) (V, error) {
	if data, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("cache read failed", "key", key, "err", err)
	} else if ok {
		var v V
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		c.logger.Warn("discarding corrupt cache entry", "key", key)
		_ = c.store.Delete(ctx, key)
	}

	start := time.Now()
	v, err := fetch(ctx)
	observability.Source().OnFetch(ctx, callName(key), time.Since(start), err)
	if err != nil {
		return v, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("cache write failed", "key", key, "err", err)
		}
	}
	return v, nil
}

func callName(key string) string {
	name, _, _ := strings.Cut(key, ":")
	return name
}

var _ Source = (*Cached)(nil)
