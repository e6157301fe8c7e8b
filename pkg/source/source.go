// Package source defines where track data comes from.
//
// [Source] is the render data interface the browser depends on. Two
// implementations live in subpackages:
//
//   - file: a directory of JSON fixtures, for the CLI and tests
//   - mongo: a MongoDB database
//
// [NewCached] wraps any Source with in-memory memoization and an optional
// persistent byte cache.
package source

import (
	"context"

	"github.com/matzehuels/trackview/pkg/genome"
)

// Source provides the data rendered by tracks. Implementations must be safe
// for concurrent use; every method may be called from several renders at
// once.
type Source interface {
	// Chromosomes lists all chromosomes in genome order.
	Chromosomes(ctx context.Context) ([]genome.ChromSize, error)
	// ChromInfo returns size, centromere and cytobands of one chromosome.
	ChromInfo(ctx context.Context, chrom string) (genome.ChromInfo, error)
	// CoverageDots returns log2 coverage ratios within r.
	CoverageDots(ctx context.Context, sample, chrom string, r genome.Range) ([]genome.Dot, error)
	// BAFDots returns B-allele frequencies within r.
	BAFDots(ctx context.Context, sample, chrom string, r genome.Range) ([]genome.Dot, error)
	// AnnotationBands returns the annotations of one annotation source.
	AnnotationBands(ctx context.Context, sourceID, chrom string) ([]genome.Band, error)
	// TranscriptBands returns gene transcripts with exons as sub-features.
	TranscriptBands(ctx context.Context, chrom string) ([]genome.Band, error)
	// VariantBands returns the sample's variants ranked at or above threshold.
	VariantBands(ctx context.Context, sample, chrom string, threshold float64) ([]genome.Band, error)
	// OverviewCoverage returns downsampled coverage for every chromosome.
	OverviewCoverage(ctx context.Context, sample string) (map[string][]genome.Dot, error)
	// OverviewBAF returns downsampled BAF for every chromosome.
	OverviewBAF(ctx context.Context, sample string) (map[string][]genome.Dot, error)
	// Close releases connections.
	Close() error
}

// Call names, used as cache key prefixes and in fetch hooks.
const (
	CallChromosomes      = "chromosomes"
	CallChromInfo        = "chrom_info"
	CallCoverage         = "coverage"
	CallBAF              = "baf"
	CallAnnotations      = "annotations"
	CallTranscripts      = "transcripts"
	CallVariants         = "variants"
	CallOverviewCoverage = "overview_coverage"
	CallOverviewBAF      = "overview_baf"
)

// InRange returns the dots whose position lies in r. Dots are expected
// sorted by X; the input is not modified.
func InRange(dots []genome.Dot, r genome.Range) []genome.Dot {
	out := make([]genome.Dot, 0, len(dots))
	for _, d := range dots {
		if r.Contains(d.X) {
			out = append(out, d)
		}
	}
	return out
}

// Downsample keeps at most n evenly spaced dots.
func Downsample(dots []genome.Dot, n int) []genome.Dot {
	if n <= 0 || len(dots) <= n {
		return dots
	}
	out := make([]genome.Dot, 0, n)
	step := float64(len(dots)) / float64(n)
	for i := 0; i < n; i++ {
		out = append(out, dots[int(float64(i)*step)])
	}
	return out
}
