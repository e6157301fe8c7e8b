// Package config loads the TOML file that describes a browser view: the
// data source, the cache, the initial session and the track list.
//
// Example:
//
//	[browser]
//	width = 1200
//	pixel_ratio = 2
//
//	[session]
//	sample = "S1"
//	chromosome = "1"
//	start = 0
//	end = 5_000_000
//
//	[source]
//	kind = "file"
//	dir = "./data"
//
//	[[track]]
//	id = "coverage"
//	kind = "dot"
//	data = "coverage"
//
//	[[track]]
//	id = "genes"
//	kind = "band"
//	data = "transcript"
package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"

	"github.com/matzehuels/trackview/pkg/errors"
)

// Default values.
const (
	DefaultWidth          = 1000.0
	DefaultPixelRatio     = 1.0
	DefaultResizeDebounce = 500 * time.Millisecond
	DefaultCacheTTL       = 24 * time.Hour
	DefaultDatabase       = "trackview"
)

// Track kinds.
const (
	KindDot      = "dot"
	KindBand     = "band"
	KindIdeogram = "ideogram"
	KindOverview = "overview"
)

// Data kinds a track can display.
const (
	DataCoverage   = "coverage"
	DataBAF        = "baf"
	DataAnnotation = "annotation"
	DataTranscript = "transcript"
	DataVariant    = "variant"
	DataChromosome = "chromosome"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Source kinds.
const (
	SourceFile  = "file"
	SourceHTTP  = "http"
	SourceMongo = "mongo"
)

var (
	validKinds = []string{KindDot, KindBand, KindIdeogram, KindOverview}

	// dataForKind lists the data each track kind accepts. The first entry is
	// the default.
	dataForKind = map[string][]string{
		KindDot:      {DataCoverage, DataBAF},
		KindBand:     {DataTranscript, DataAnnotation, DataVariant},
		KindIdeogram: {DataChromosome},
		KindOverview: {DataCoverage, DataBAF},
	}
)

// Config is the root of the configuration file.
type Config struct {
	Browser Browser `toml:"browser"`
	Session Session `toml:"session"`
	Cache   Cache   `toml:"cache"`
	Source  Source  `toml:"source"`
	Tracks  []Track `toml:"track"`
}

// Browser holds rendering settings.
type Browser struct {
	Width          float64       `toml:"width"`
	PixelRatio     float64       `toml:"pixel_ratio"`
	ResizeDebounce time.Duration `toml:"resize_debounce"`
	Backend        string        `toml:"backend"`
}

// Session is the initial view. An end of 0 shows the whole chromosome.
type Session struct {
	Sample     string  `toml:"sample"`
	Chromosome string  `toml:"chromosome"`
	Start      float64 `toml:"start"`
	End        float64 `toml:"end"`
}

// Cache configures the persistent data-source cache.
type Cache struct {
	Backend string `toml:"backend"`
	// Dir defaults to the user cache directory.
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	RedisDB   int           `toml:"redis_db"`
	TTL       time.Duration `toml:"ttl"`
}

// Source selects the data source.
type Source struct {
	Kind string `toml:"kind"`
	Dir  string `toml:"dir"`
	URL  string `toml:"url"`
	// Token is sent as a bearer token by the http source.
	Token    string `toml:"token"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Track describes one track.
type Track struct {
	ID             string    `toml:"id"`
	Kind           string    `toml:"kind"`
	Label          string    `toml:"label"`
	Data           string    `toml:"data"`
	SourceID       string    `toml:"source_id"`
	Threshold      float64   `toml:"threshold"`
	Height         float64   `toml:"height"`
	ExpandedHeight float64   `toml:"expanded_height"`
	Expanded       bool      `toml:"expanded"`
	YDomain        []float64 `toml:"y_domain"`
	Ticks          []float64 `toml:"ticks"`
	Color          string    `toml:"color"`
}

// Load reads and decodes the file at path, applies defaults and validates
// the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}
	return Parse(data)
}

// Parse decodes TOML data, applies defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := lo.Map(undecoded, func(k toml.Key, _ int) string { return k.String() })
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %v", keys)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns a configuration with a file source in dir and the five
// standard tracks.
func Default(dir string) *Config {
	c := &Config{
		Source: Source{Kind: SourceFile, Dir: dir},
		Tracks: []Track{
			{ID: "ideogram", Kind: KindIdeogram},
			{ID: "coverage", Kind: KindDot, Data: DataCoverage, Label: "Log2 ratio"},
			{ID: "baf", Kind: KindDot, Data: DataBAF, Label: "BAF"},
			{ID: "genes", Kind: KindBand, Data: DataTranscript, Label: "Genes"},
			{ID: "variants", Kind: KindBand, Data: DataVariant, Label: "Variants"},
		},
	}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields. It is idempotent.
func (c *Config) SetDefaults() {
	if c.Browser.Width == 0 {
		c.Browser.Width = DefaultWidth
	}
	if c.Browser.PixelRatio == 0 {
		c.Browser.PixelRatio = DefaultPixelRatio
	}
	if c.Browser.ResizeDebounce == 0 {
		c.Browser.ResizeDebounce = DefaultResizeDebounce
	}
	if c.Browser.Backend == "" {
		c.Browser.Backend = "raster"
	}
	if c.Session.Chromosome == "" {
		c.Session.Chromosome = "1"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheNone
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Source.Kind == "" {
		c.Source.Kind = SourceFile
	}
	if c.Source.Database == "" {
		c.Source.Database = DefaultDatabase
	}
	for i := range c.Tracks {
		t := &c.Tracks[i]
		if t.Label == "" {
			t.Label = t.ID
		}
		if t.Data == "" {
			if data, ok := dataForKind[t.Kind]; ok {
				t.Data = data[0]
			}
		}
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Browser.Width <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "browser.width must be positive")
	}
	if c.Browser.PixelRatio <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "browser.pixel_ratio must be positive")
	}
	if !slices.Contains([]string{"raster", "svg"}, c.Browser.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "browser.backend %q must be raster or svg", c.Browser.Backend)
	}
	if err := errors.ValidateChromosome(c.Session.Chromosome); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "session.chromosome")
	}
	if err := errors.ValidateRange(c.Session.Start, c.Session.End); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "session range")
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q must be none, file or redis", c.Cache.Backend)
	}

	switch c.Source.Kind {
	case SourceFile:
		if c.Source.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.dir is required for the file source")
		}
	case SourceHTTP:
		if c.Source.URL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.url is required for the http source")
		}
	case SourceMongo:
		if c.Source.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.mongo_uri is required for the mongo source")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "source.kind %q must be file, http or mongo", c.Source.Kind)
	}

	if len(c.Tracks) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "at least one [[track]] is required")
	}
	if dups := lo.FindDuplicates(lo.Map(c.Tracks, func(t Track, _ int) string { return t.ID })); len(dups) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "duplicate track ids: %v", dups)
	}
	for i, t := range c.Tracks {
		if err := t.validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "track %d", i)
		}
	}
	return nil
}

func (t Track) validate() error {
	if t.ID == "" {
		return fmt.Errorf("id is required")
	}
	if !slices.Contains(validKinds, t.Kind) {
		return fmt.Errorf("%s: kind %q must be one of %v", t.ID, t.Kind, validKinds)
	}
	if !slices.Contains(dataForKind[t.Kind], t.Data) {
		return fmt.Errorf("%s: data %q not valid for %s tracks (want one of %v)", t.ID, t.Data, t.Kind, dataForKind[t.Kind])
	}
	if t.Data == DataAnnotation && t.SourceID == "" {
		return fmt.Errorf("%s: source_id is required for annotation tracks", t.ID)
	}
	if len(t.YDomain) != 0 && (len(t.YDomain) != 2 || t.YDomain[0] >= t.YDomain[1]) {
		return fmt.Errorf("%s: y_domain must be [min, max] with min < max", t.ID)
	}
	if t.Height < 0 || t.ExpandedHeight < 0 {
		return fmt.Errorf("%s: heights must not be negative", t.ID)
	}
	return nil
}

// Track returns the track with the given id.
func (c *Config) Track(id string) (Track, bool) {
	return lo.Find(c.Tracks, func(t Track) bool { return t.ID == id })
}
