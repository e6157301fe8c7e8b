// Package file implements a data source backed by a tree of JSON files,
// read from a local directory or fetched over HTTP.
//
// Layout below the root directory or base URL:
//
//	chromosomes.json                       []ChromSize in genome order
//	chromosomes/<chrom>.json               ChromInfo
//	transcripts/<chrom>.json               []Band
//	annotations/<source>/<chrom>.json      []Band
//	samples/<sample>/coverage/<chrom>.json []Dot sorted by x
//	samples/<sample>/baf/<chrom>.json      []Dot sorted by x
//	samples/<sample>/variants/<chrom>.json []Variant
//	samples/<sample>/overview_coverage.json  map chrom → []Dot (optional)
//	samples/<sample>/overview_baf.json       map chrom → []Dot (optional)
//
// Without an overview file, the overview is built by downsampling the
// per-chromosome files.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/source"
)

// DefaultOverviewPoints caps the dots per chromosome in a derived overview.
const DefaultOverviewPoints = 500

// Variant is a band with a rank score used for threshold filtering.
type Variant struct {
	genome.Band
	Rank float64 `json:"rank"`
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Source) { s.logger = l }
}

// WithOverviewPoints sets the per-chromosome cap of derived overviews.
func WithOverviewPoints(n int) Option {
	return func(s *Source) { s.overviewPoints = n }
}

// fetcher loads the raw bytes of one file of the layout. rel is slash
// separated and already validated. A missing file is a NOT_FOUND error.
type fetcher interface {
	fetch(ctx context.Context, rel string) ([]byte, error)
}

// Source reads the JSON layout through a fetcher.
type Source struct {
	fetcher        fetcher
	overviewPoints int
	logger         *log.Logger
}

// New opens the directory at root.
func New(root string, opts ...Option) (*Source, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "data directory %s", root)
	}
	if !fi.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s is not a directory", root)
	}
	return newSource(dirFetcher(root), opts), nil
}

func newSource(f fetcher, opts []Option) *Source {
	s := &Source{fetcher: f, overviewPoints: DefaultOverviewPoints}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

func (s *Source) Chromosomes(ctx context.Context) ([]genome.ChromSize, error) {
	var out []genome.ChromSize
	if err := s.read(ctx, &out, "chromosomes.json"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Source) ChromInfo(ctx context.Context, chrom string) (genome.ChromInfo, error) {
	var info genome.ChromInfo
	if err := errors.ValidateChromosome(chrom); err != nil {
		return info, err
	}
	if err := s.read(ctx, &info, "chromosomes", chrom+".json"); err != nil {
		return info, err
	}
	if info.Chrom == "" {
		info.Chrom = chrom
	}
	return info, nil
}

func (s *Source) CoverageDots(ctx context.Context, sample, chrom string, r genome.Range) ([]genome.Dot, error) {
	return s.dots(ctx, sample, "coverage", chrom, r)
}

func (s *Source) BAFDots(ctx context.Context, sample, chrom string, r genome.Range) ([]genome.Dot, error) {
	return s.dots(ctx, sample, "baf", chrom, r)
}

func (s *Source) dots(ctx context.Context, sample, kind, chrom string, r genome.Range) ([]genome.Dot, error) {
	if err := errors.ValidateChromosome(chrom); err != nil {
		return nil, err
	}
	var all []genome.Dot
	if err := s.read(ctx, &all, "samples", sample, kind, chrom+".json"); err != nil {
		return nil, err
	}
	return source.InRange(all, r), nil
}

func (s *Source) AnnotationBands(ctx context.Context, sourceID, chrom string) ([]genome.Band, error) {
	if err := errors.ValidateChromosome(chrom); err != nil {
		return nil, err
	}
	var bands []genome.Band
	if err := s.read(ctx, &bands, "annotations", sourceID, chrom+".json"); err != nil {
		return nil, err
	}
	return bands, nil
}

func (s *Source) TranscriptBands(ctx context.Context, chrom string) ([]genome.Band, error) {
	if err := errors.ValidateChromosome(chrom); err != nil {
		return nil, err
	}
	var bands []genome.Band
	if err := s.read(ctx, &bands, "transcripts", chrom+".json"); err != nil {
		return nil, err
	}
	return bands, nil
}

func (s *Source) VariantBands(ctx context.Context, sample, chrom string, threshold float64) ([]genome.Band, error) {
	if err := errors.ValidateChromosome(chrom); err != nil {
		return nil, err
	}
	var variants []Variant
	if err := s.read(ctx, &variants, "samples", sample, "variants", chrom+".json"); err != nil {
		return nil, err
	}
	bands := make([]genome.Band, 0, len(variants))
	for _, v := range variants {
		if v.Rank >= threshold {
			bands = append(bands, v.Band)
		}
	}
	return bands, nil
}

func (s *Source) OverviewCoverage(ctx context.Context, sample string) (map[string][]genome.Dot, error) {
	return s.overview(ctx, sample, "coverage")
}

func (s *Source) OverviewBAF(ctx context.Context, sample string) (map[string][]genome.Dot, error) {
	return s.overview(ctx, sample, "baf")
}

func (s *Source) overview(ctx context.Context, sample, kind string) (map[string][]genome.Dot, error) {
	var out map[string][]genome.Dot
	err := s.read(ctx, &out, "samples", sample, "overview_"+kind+".json")
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, errors.ErrCodeNotFound) {
		return nil, err
	}

	chroms, err := s.Chromosomes(ctx)
	if err != nil {
		return nil, err
	}
	out = make(map[string][]genome.Dot, len(chroms))
	for _, c := range chroms {
		var all []genome.Dot
		if err := s.read(ctx, &all, "samples", sample, kind, c.Chrom+".json"); err != nil {
			if errors.Is(err, errors.ErrCodeNotFound) {
				continue
			}
			return nil, err
		}
		out[c.Chrom] = source.Downsample(all, s.overviewPoints)
	}
	s.logger.Debug("derived overview", "sample", sample, "kind", kind, "chromosomes", len(out))
	return out, nil
}

// Close does nothing.
func (s *Source) Close() error { return nil }

// read decodes the JSON file at the joined relative path into v. Each part
// is validated on its own so that names cannot escape the root.
func (s *Source) read(ctx context.Context, v any, parts ...string) error {
	for _, p := range parts {
		if err := errors.ValidatePath(p); err != nil {
			return err
		}
	}
	rel := path.Join(parts...)
	data, err := s.fetcher.fetch(ctx, rel)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", rel)
	}
	return nil
}

// dirFetcher reads files below a local directory.
type dirFetcher string

func (d dirFetcher) fetch(_ context.Context, rel string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(string(d), filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "%s", rel)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetchFailed, err, "read %s", rel)
	}
	return data, nil
}

var _ source.Source = (*Source)(nil)
