package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trackview/pkg/browser"
	"github.com/matzehuels/trackview/pkg/buildinfo"
	"github.com/matzehuels/trackview/pkg/cache"
	"github.com/matzehuels/trackview/pkg/config"
	"github.com/matzehuels/trackview/pkg/errors"
	"github.com/matzehuels/trackview/pkg/genome"
	"github.com/matzehuels/trackview/pkg/session"
	"github.com/matzehuels/trackview/pkg/source"
	"github.com/matzehuels/trackview/pkg/source/file"
	"github.com/matzehuels/trackview/pkg/source/mongo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "trackview"

	// redisKeyPrefix namespaces all keys written to a shared Redis.
	redisKeyPrefix = "trackview:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	dataDir    string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Trackview renders genome browser tracks",
		Long:         `Trackview renders coverage, BAF, gene, variant and ideogram tracks for a genomic region, as images, as a local web service, or in the terminal.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML config file")
	root.PersistentFlags().StringVarP(&c.dataDir, "data", "d", "", "JSON data directory (used without --config)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the persistent data cache")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.tracksCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// View Flags
// =============================================================================

// viewFlags override the [session] and [browser] config sections.
type viewFlags struct {
	sample  string
	chrom   string
	start   float64
	end     float64
	width   float64
	ratio   float64
	backend string
	expand  []string
}

func (v *viewFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&v.sample, "sample", "", "sample id")
	f.StringVar(&v.chrom, "chrom", "", "chromosome")
	f.Float64Var(&v.start, "start", 0, "region start (bp)")
	f.Float64Var(&v.end, "end", 0, "region end (bp, 0 = whole chromosome)")
	f.Float64Var(&v.width, "width", 0, "panel width in logical pixels")
	f.Float64Var(&v.ratio, "pixel-ratio", 0, "device pixel ratio")
	f.StringSliceVar(&v.expand, "expand", nil, "track ids to start expanded")
}

func (v viewFlags) apply(cfg *config.Config) error {
	if v.sample != "" {
		cfg.Session.Sample = v.sample
	}
	if v.chrom != "" {
		cfg.Session.Chromosome = v.chrom
	}
	if v.start != 0 || v.end != 0 {
		cfg.Session.Start, cfg.Session.End = v.start, v.end
	}
	if v.width > 0 {
		cfg.Browser.Width = v.width
	}
	if v.ratio > 0 {
		cfg.Browser.PixelRatio = v.ratio
	}
	if v.backend != "" {
		cfg.Browser.Backend = v.backend
	}
	for _, id := range v.expand {
		i := slices.IndexFunc(cfg.Tracks, func(t config.Track) bool { return t.ID == id })
		if i < 0 {
			return errors.New(errors.ErrCodeTrackNotFound, "--expand: no track %q", id)
		}
		cfg.Tracks[i].Expanded = true
	}
	return nil
}

// =============================================================================
// App Assembly
// =============================================================================

// app is a fully wired browser with everything it owns.
type app struct {
	cfg     *config.Config
	store   cache.Cache
	src     *source.Cached
	sess    *session.Session
	browser *browser.Browser
}

// loadConfig reads --config, or builds the default track set for --data.
func (c *CLI) loadConfig(view viewFlags) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case c.configPath != "":
		loaded, err := config.Load(c.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case c.dataDir != "":
		cfg = config.Default(c.dataDir)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "either --config or --data is required")
	}
	if err := view.apply(cfg); err != nil {
		return nil, err
	}
	if c.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open assembles the data source, cache, session and browser.
func (c *CLI) open(ctx context.Context, view viewFlags, opts ...browser.Option) (*app, error) {
	cfg, err := c.loadConfig(view)
	if err != nil {
		return nil, err
	}

	raw, err := c.openSource(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	store, err := c.openStore(ctx, cfg.Cache)
	if err != nil {
		raw.Close()
		return nil, err
	}
	src := source.NewCached(raw,
		source.WithStore(cache.Prefixed(store, cfg.Source.Kind+":"), cfg.Cache.TTL),
		source.WithCacheLogger(c.Logger),
	)
	a := &app{cfg: cfg, store: store, src: src}

	info, err := src.ChromInfo(ctx, cfg.Session.Chromosome)
	if err != nil {
		a.Close()
		return nil, err
	}
	r := genome.Range{Start: cfg.Session.Start, End: cfg.Session.End}
	if r.End == 0 {
		r.End = info.Size
	}
	a.sess, err = session.New(cfg.Session.Sample, cfg.Session.Chromosome, r,
		session.WithChromSize(info.Size), session.WithLogger(c.Logger))
	if err != nil {
		a.Close()
		return nil, err
	}

	opts = append([]browser.Option{browser.WithLogger(c.Logger)}, opts...)
	a.browser, err = browser.New(cfg, a.sess, src, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	c.Logger.Debug("opened view", "source", cfg.Source.Kind, "cache", cfg.Cache.Backend, "region", genome.Region{Chrom: info.Chrom, Range: r})
	return a, nil
}

func (c *CLI) openSource(ctx context.Context, cfg config.Source) (source.Source, error) {
	switch cfg.Kind {
	case config.SourceMongo:
		return mongo.Connect(ctx, mongo.Config{URI: cfg.MongoURI, Database: cfg.Database}, c.Logger)
	case config.SourceHTTP:
		var httpOpts []file.HTTPOption
		if cfg.Token != "" {
			httpOpts = append(httpOpts, file.WithHeader("Authorization", "Bearer "+cfg.Token))
		}
		return file.NewHTTP(cfg.URL, httpOpts, file.WithLogger(c.Logger))
	default:
		return file.New(cfg.Dir, file.WithLogger(c.Logger))
	}
}

func (c *CLI) openStore(ctx context.Context, cfg config.Cache) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB, KeyPrefix: redisKeyPrefix})
	case config.CacheFile:
		dir, err := c.fileCacheDir(cfg)
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

// Close releases the browser, source and store.
func (a *app) Close() error {
	if a.browser != nil {
		a.browser.Close()
	}
	err := a.src.Close()
	if cerr := a.store.Close(); err == nil {
		err = cerr
	}
	return err
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/trackview/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
