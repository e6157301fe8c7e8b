// Package mongo implements a data source backed by MongoDB.
//
// Collections (names configurable through [Config]):
//
//	chromosomes  {chrom, size, order, centromere: {start, end}}
//	cytobands    {chrom, name, start, end, stain}
//	coverage     {sample, chrom, pos, value}
//	baf          {sample, chrom, pos, value}
//	overview     {sample, kind: "coverage"|"baf", chrom, pos, value}
//	annotations  {_id, source, chrom, start, end, name, color, strand}
//	transcripts  {transcript_id, gene_name, chrom, start, end, strand, mane, exons}
//	variants     {variant_id, sample, chrom, start, end, type, rank_score}
package mongo

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/trackview/pkg/cache"
	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/source"
)

// Config configures the MongoDB source.
type Config struct {
	URI      string
	Database string

	// Collection names; empty fields use the defaults above.
	Chromosomes, Cytobands, Coverage, BAF, Overview string
	Annotations, Transcripts, Variants              string

	// Timeout bounds each query. Default: 10s.
	Timeout time.Duration
	Backoff cache.Backoff
}

func (c *Config) setDefaults() {
	def := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}
	def(&c.Database, "trackview")
	def(&c.Chromosomes, "chromosomes")
	def(&c.Cytobands, "cytobands")
	def(&c.Coverage, "coverage")
	def(&c.BAF, "baf")
	def(&c.Overview, "overview")
	def(&c.Annotations, "annotations")
	def(&c.Transcripts, "transcripts")
	def(&c.Variants, "variants")
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Backoff.Attempts == 0 {
		c.Backoff = cache.DefaultBackoff
	}
}

// Source queries a MongoDB database.
type Source struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    Config
	logger *log.Logger
}

// Connect opens a client and verifies the connection.
func Connect(ctx context.Context, cfg Config, logger *log.Logger) (*Source, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	cfg.setDefaults()
	if logger == nil {
		logger = log.Default()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	logger.Debug("connected to mongo", "database", cfg.Database)
	return &Source{client: client, db: client.Database(cfg.Database), cfg: cfg, logger: logger}, nil
}

func (s *Source) Chromosomes(ctx context.Context) ([]genome.ChromSize, error) {
	var docs []chromDoc
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	if err := s.find(ctx, s.cfg.Chromosomes, bson.M{}, &docs, opts); err != nil {
		return nil, err
	}
	out := make([]genome.ChromSize, len(docs))
	for i, d := range docs {
		out[i] = d.chromSize()
	}
	return out, nil
}

func (s *Source) ChromInfo(ctx context.Context, chrom string) (genome.ChromInfo, error) {
	var doc chromDoc
	err := s.retry(ctx, func(ctx context.Context) error {
		return s.db.Collection(s.cfg.Chromosomes).FindOne(ctx, bson.M{"chrom": chrom}).Decode(&doc)
	})
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return genome.ChromInfo{}, errors.Wrap(errors.ErrCodeNotFound, err, "chromosome %s", chrom)
	}
	if err != nil {
		return genome.ChromInfo{}, s.wrap(err, "chromosome %s", chrom)
	}

	var bands []cytobandDoc
	if err := s.find(ctx, s.cfg.Cytobands, bson.M{"chrom": chrom}, &bands); err != nil {
		return genome.ChromInfo{}, err
	}
	return doc.chromInfo(bands), nil
}

func (s *Source) CoverageDots(ctx context.Context, sample, chrom string, r genome.Range) ([]genome.Dot, error) {
	return s.dots(ctx, s.cfg.Coverage, sample, chrom, r)
}

func (s *Source) BAFDots(ctx context.Context, sample, chrom string, r genome.Range) ([]genome.Dot, error) {
	return s.dots(ctx, s.cfg.BAF, sample, chrom, r)
}

func (s *Source) dots(ctx context.Context, coll, sample, chrom string, r genome.Range) ([]genome.Dot, error) {
	filter := bson.M{
		"sample": sample,
		"chrom":  chrom,
		"pos":    bson.M{"$gte": r.Start, "$lt": r.End},
	}
	var docs []dotDoc
	opts := options.Find().SetSort(bson.D{{Key: "pos", Value: 1}})
	if err := s.find(ctx, coll, filter, &docs, opts); err != nil {
		return nil, err
	}
	out := make([]genome.Dot, len(docs))
	for i, d := range docs {
		out[i] = d.dot()
	}
	return out, nil
}

func (s *Source) AnnotationBands(ctx context.Context, sourceID, chrom string) ([]genome.Band, error) {
	var docs []annotationDoc
	if err := s.find(ctx, s.cfg.Annotations, bson.M{"source": sourceID, "chrom": chrom}, &docs); err != nil {
		return nil, err
	}
	out := make([]genome.Band, len(docs))
	for i, d := range docs {
		out[i] = d.band()
	}
	return out, nil
}

func (s *Source) TranscriptBands(ctx context.Context, chrom string) ([]genome.Band, error) {
	var docs []transcriptDoc
	if err := s.find(ctx, s.cfg.Transcripts, bson.M{"chrom": chrom}, &docs); err != nil {
		return nil, err
	}
	out := make([]genome.Band, len(docs))
	for i, d := range docs {
		out[i] = d.band()
	}
	return out, nil
}

func (s *Source) VariantBands(ctx context.Context, sample, chrom string, threshold float64) ([]genome.Band, error) {
	filter := bson.M{
		"sample":     sample,
		"chrom":      chrom,
		"rank_score": bson.M{"$gte": threshold},
	}
	var docs []variantDoc
	if err := s.find(ctx, s.cfg.Variants, filter, &docs); err != nil {
		return nil, err
	}
	out := make([]genome.Band, len(docs))
	for i, d := range docs {
		out[i] = d.band()
	}
	return out, nil
}

func (s *Source) OverviewCoverage(ctx context.Context, sample string) (map[string][]genome.Dot, error) {
	return s.overview(ctx, sample, "coverage")
}

func (s *Source) OverviewBAF(ctx context.Context, sample string) (map[string][]genome.Dot, error) {
	return s.overview(ctx, sample, "baf")
}

func (s *Source) overview(ctx context.Context, sample, kind string) (map[string][]genome.Dot, error) {
	var docs []dotDoc
	opts := options.Find().SetSort(bson.D{{Key: "chrom", Value: 1}, {Key: "pos", Value: 1}})
	if err := s.find(ctx, s.cfg.Overview, bson.M{"sample": sample, "kind": kind}, &docs, opts); err != nil {
		return nil, err
	}
	return groupByChrom(docs), nil
}

func groupByChrom(docs []dotDoc) map[string][]genome.Dot {
	out := make(map[string][]genome.Dot)
	for _, d := range docs {
		out[d.Chrom] = append(out[d.Chrom], d.dot())
	}
	return out
}

// Close disconnects the client.
func (s *Source) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// find runs a query and decodes all results into out.
func (s *Source) find(ctx context.Context, coll string, filter any, out any, opts ...*options.FindOptions) error {
	start := time.Now()
	err := s.retry(ctx, func(ctx context.Context) error {
		cur, err := s.db.Collection(coll).Find(ctx, filter, opts...)
		if err != nil {
			return err
		}
		return cur.All(ctx, out)
	})
	s.logger.Debug("mongo query", "collection", coll, "took", time.Since(start), "err", err)
	if err != nil {
		return s.wrap(err, "query %s", coll)
	}
	return nil
}

// retry repeats fn on network errors and timeouts.
func (s *Source) retry(ctx context.Context, fn func(context.Context) error) error {
	return cache.RetryWithBackoff(ctx, s.cfg.Backoff, func() error {
		err := fn(ctx)
		if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
			return cache.Retryable(err)
		}
		return err
	})
}

func (s *Source) wrap(err error, format string, args ...any) error {
	code := errors.ErrCodeFetchFailed
	switch {
	case mongo.IsTimeout(err):
		code = errors.ErrCodeTimeout
	case cache.IsRetryable(err):
		code = errors.ErrCodeNetwork
	}
	return errors.Wrap(code, err, format, args...)
}

var _ source.Source = (*Source)(nil)
