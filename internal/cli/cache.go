package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trackview/pkg/cache"
	"github.com/matzehuels/trackview/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent data cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheSettings returns the [cache] section of --config, or the default
// file cache when no config is given.
func (c *CLI) cacheSettings() (config.Cache, error) {
	if c.configPath == "" {
		return config.Cache{Backend: config.CacheFile}, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Cache{}, err
	}
	return cfg.Cache, nil
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached data source responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := c.cacheSettings()
			if err != nil {
				return err
			}

			var (
				count int
				where string
			)
			switch settings.Backend {
			case config.CacheRedis:
				rc, err := cache.NewRedisCache(cmd.Context(), cache.RedisConfig{
					Addr: settings.RedisAddr, DB: settings.RedisDB, KeyPrefix: redisKeyPrefix,
				})
				if err != nil {
					return err
				}
				defer rc.Close()
				if count, err = rc.Clear(cmd.Context()); err != nil {
					return err
				}
				where = "redis://" + settings.RedisAddr
			case config.CacheFile:
				dir, err := c.fileCacheDir(settings)
				if err != nil {
					return err
				}
				fc, err := cache.NewFileCache(dir)
				if err != nil {
					return err
				}
				if count, err = fc.Clear(); err != nil {
					return err
				}
				where = dir
			default:
				printInfo("Caching is disabled")
				return nil
			}

			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Location: %s", where)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := c.cacheSettings()
			if err != nil {
				return err
			}
			dir, err := c.fileCacheDir(settings)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

func (c *CLI) fileCacheDir(settings config.Cache) (string, error) {
	if settings.Dir != "" {
		return settings.Dir, nil
	}
	return cacheDir()
}
