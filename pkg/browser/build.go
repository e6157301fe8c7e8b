package browser

import (
	"context"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/trackview/pkg/config"
	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/track"
)

// build creates the track for one config entry.
func (b *Browser) build(tc config.Track) (track.Renderer, error) {
	opts := []track.Option{
		track.WithLabel(tc.Label),
		track.WithLogger(b.logger),
		track.WithBackend(b.backend),
		track.WithExpanded(tc.Expanded),
		track.WithPopup(b.popup),
	}
	if tc.Height > 0 {
		opts = append(opts, track.WithHeight(tc.Height))
	}
	if tc.ExpandedHeight > 0 {
		opts = append(opts, track.WithExpandedHeight(tc.ExpandedHeight))
	}

	switch tc.Kind {
	case config.KindDot:
		opts = append(opts, track.WithViewport(b.sess, b.mods))
		return track.NewDot(tc.ID, b.dotFetcher(tc), dotConfig(tc), opts...), nil

	case config.KindBand:
		opts = append(opts,
			track.WithViewport(b.sess, b.mods),
			track.WithDetail(func(featureID string) {
				if b.onDetail != nil {
					b.onDetail(tc.ID, featureID)
				}
			}),
		)
		cfg := track.DefaultBandConfig()
		if tc.Color != "" {
			cfg.Color = tc.Color
		}
		return track.NewBand(tc.ID, b.bandFetcher(tc), cfg, opts...), nil

	case config.KindIdeogram:
		fetch := func(ctx context.Context, v track.View) (genome.ChromInfo, error) {
			return b.src.ChromInfo(ctx, v.Chrom)
		}
		return track.NewIdeogram(tc.ID, fetch, track.DefaultIdeogramConfig(), opts...), nil

	case config.KindOverview:
		opts = append(opts, track.WithDetail(b.selectChromosome))
		cfg := track.DefaultOverviewConfig()
		if tc.Data == config.DataBAF {
			cfg.YDomain = [2]float64{0, 1}
		}
		if len(tc.YDomain) == 2 {
			cfg.YDomain = [2]float64{tc.YDomain[0], tc.YDomain[1]}
		}
		if tc.Color != "" {
			cfg.Color = tc.Color
		}
		return track.NewOverview(tc.ID, b.overviewFetcher(tc), cfg, opts...), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "track %s: unknown kind %q", tc.ID, tc.Kind)
}

func dotConfig(tc config.Track) track.DotConfig {
	cfg := track.CoverageConfig()
	if tc.Data == config.DataBAF {
		cfg = track.BAFConfig()
	}
	if len(tc.YDomain) == 2 {
		cfg.YDomain = [2]float64{tc.YDomain[0], tc.YDomain[1]}
	}
	if len(tc.Ticks) > 0 {
		cfg.Ticks = tc.Ticks
	}
	if tc.Color != "" {
		cfg.Color = tc.Color
	}
	return cfg
}

func (b *Browser) dotFetcher(tc config.Track) track.DotFetcher {
	if tc.Data == config.DataBAF {
		return func(ctx context.Context, v track.View) ([]genome.Dot, error) {
			return b.src.BAFDots(ctx, v.Sample, v.Chrom, v.Range)
		}
	}
	return func(ctx context.Context, v track.View) ([]genome.Dot, error) {
		return b.src.CoverageDots(ctx, v.Sample, v.Chrom, v.Range)
	}
}

func (b *Browser) bandFetcher(tc config.Track) track.BandFetcher {
	var fetch track.BandFetcher
	switch tc.Data {
	case config.DataAnnotation:
		fetch = func(ctx context.Context, v track.View) ([]genome.Band, error) {
			return b.src.AnnotationBands(ctx, tc.SourceID, v.Chrom)
		}
	case config.DataVariant:
		fetch = func(ctx context.Context, v track.View) ([]genome.Band, error) {
			return b.src.VariantBands(ctx, v.Sample, v.Chrom, tc.Threshold)
		}
	default:
		fetch = func(ctx context.Context, v track.View) ([]genome.Band, error) {
			return b.src.TranscriptBands(ctx, v.Chrom)
		}
	}
	return func(ctx context.Context, v track.View) ([]genome.Band, error) {
		bands, err := fetch(ctx, v)
		if err != nil {
			return nil, err
		}
		return visibleBands(bands, v.Range), nil
	}
}

// visibleBands keeps the bands overlapping r.
func visibleBands(bands []genome.Band, r genome.Range) []genome.Band {
	return lo.Filter(bands, func(band genome.Band, _ int) bool {
		return band.Range().Overlaps(r)
	})
}

func (b *Browser) overviewFetcher(tc config.Track) track.OverviewFetcher {
	dots := b.src.OverviewCoverage
	if tc.Data == config.DataBAF {
		dots = b.src.OverviewBAF
	}
	return func(ctx context.Context, v track.View) (track.OverviewData, error) {
		var data track.OverviewData
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			data.Chromosomes, err = b.src.Chromosomes(ctx)
			return err
		})
		g.Go(func() (err error) {
			data.Dots, err = dots(ctx, v.Sample)
			return err
		})
		return data, g.Wait()
	}
}

// selectChromosome switches the session to a chromosome clicked in the
// overview.
func (b *Browser) selectChromosome(chrom string) {
	chroms, err := b.src.Chromosomes(context.Background())
	if err != nil {
		b.logger.Warn("cannot select chromosome", "chrom", chrom, "err", err)
		return
	}
	c, ok := lo.Find(chroms, func(c genome.ChromSize) bool { return c.Chrom == chrom })
	if !ok {
		b.logger.Warn("clicked chromosome not in reference", "chrom", chrom)
		return
	}
	if err := b.sess.SetChromosome(c.Chrom, c.Size); err != nil {
		b.logger.Warn("cannot select chromosome", "chrom", chrom, "err", err)
	}
}
