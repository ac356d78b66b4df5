package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mandel/internal/server"
	"github.com/matzehuels/mandel/pkg/cache"
	"github.com/matzehuels/mandel/pkg/config"
	"github.com/matzehuels/mandel/pkg/pipeline"
)

// redisKeyPrefix namespaces keys in a shared redis.
const redisKeyPrefix = "mandel:v1:"

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	configPath string
	addr       string
	redisURL   string
	maxPixels  int
	noCache    bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := &serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders over HTTP",
		Example: `  mandel serve --addr :8080
  mandel serve --redis-url redis://localhost:6379/0
  curl -o seahorse.png 'localhost:8080/render.png?preset=seahorse-valley&density=2000'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg, opts.noCache)
		},
	}

	def := config.Default().Server
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "config file (default: ~/.config/mandel/config.toml if present)")
	f.StringVar(&opts.addr, "addr", def.Addr, "listen address")
	f.StringVar(&opts.redisURL, "redis-url", "", "share the image cache through redis (e.g. redis://localhost:6379/0)")
	f.IntVar(&opts.maxPixels, "max-pixels", def.MaxPixels, "largest image served, in pixels")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the image cache")

	return cmd
}

// resolve applies explicit flags on top of the config file.
func (o *serveOpts) resolve(changed func(string) bool) (config.ServerConfig, error) {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return config.ServerConfig{}, err
	}
	sc := cfg.Server
	if changed("addr") {
		sc.Addr = o.addr
	}
	if changed("redis-url") {
		sc.RedisURL = o.redisURL
	}
	if changed("max-pixels") {
		sc.MaxPixels = o.maxPixels
	}
	return sc, nil
}

// runServe wires cache, runner and server and blocks until ctx is done.
func (c *CLI) runServe(ctx context.Context, sc config.ServerConfig, noCache bool) error {
	logger := loggerFromContext(ctx)

	store, keyer, err := newServerCache(ctx, sc, noCache, logger)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(store, keyer, logger)
	runner.TTL = sc.CacheTTL.Duration
	defer runner.Close()

	srv := server.New(runner, server.Config{
		Addr:      sc.Addr,
		MaxPixels: sc.MaxPixels,
		Logger:    logger,
	})
	return srv.ListenAndServe(ctx)
}

// newServerCache picks redis when configured, the file cache otherwise.
func newServerCache(ctx context.Context, sc config.ServerConfig, noCache bool, logger *log.Logger) (cache.Cache, cache.Keyer, error) {
	switch {
	case noCache:
		logger.Info("cache disabled")
		return cache.NewNullCache(), nil, nil
	case sc.RedisURL != "":
		rc, err := cache.NewRedisCache(ctx, sc.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis cache", "prefix", redisKeyPrefix)
		return rc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), redisKeyPrefix), nil
	}

	store, err := newCache(false)
	if err != nil {
		return nil, nil, err
	}
	if fc, ok := store.(*cache.FileCache); ok {
		logger.Info("using file cache", "dir", fc.Dir())
	}
	return store, nil, nil
}
