package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/mandel/pkg/cache"
	errs "github.com/matzehuels/mandel/pkg/errors"
	"github.com/matzehuels/mandel/pkg/fractal"
	"github.com/matzehuels/mandel/pkg/observability"
	"github.com/matzehuels/mandel/pkg/sink"
)

// cacheKeyType labels cache events emitted by the runner.
const cacheKeyType = "artifact"

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long artifacts stay cached. Zero means cache.TTLArtifact.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the render → encode pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Region.Empty() {
		return nil, errs.New(errs.ErrCodeInvalidRegion, "region %s covers no pixels", opts.Region)
	}

	result := &Result{
		ID:     uuid.New(),
		Key:    r.Keyer.ArtifactKey(opts.ArtifactKeyOpts()),
		Format: opts.Format,
		Stats: Stats{
			Width:  opts.Region.PixelWidth(),
			Height: opts.Region.PixelHeight(),
			Pixels: opts.Region.Pixels(),
		},
	}
	logger := opts.Logger.With("id", result.ID.String())

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, logger, result.Key); ok {
			result.Artifact = data
			result.CacheInfo.RenderHit = true
			logger.Info("artifact from cache", "key", result.Key, "bytes", len(data))
			return result, nil
		}
	}

	// Stage 1: Render
	renderStart := time.Now()
	grid, err := r.RenderGrid(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Grid = grid
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Info("rendered region",
		"width", grid.Width(),
		"height", grid.Height(),
		"duration", result.Stats.RenderTime)

	// Stage 2: Encode
	encodeStart := time.Now()
	data, err := r.Encode(ctx, grid, opts.Format)
	if err != nil {
		return nil, err
	}
	result.Artifact = data
	result.Stats.EncodeTime = time.Since(encodeStart)

	logger.Info("encoded image",
		"format", opts.Format,
		"bytes", len(data),
		"duration", result.Stats.EncodeTime)

	r.store(ctx, logger, result.Key, data)
	return result, nil
}

// RenderGrid evaluates the region, checking ctx between rows.
func (r *Runner) RenderGrid(ctx context.Context, opts Options) (*fractal.Grid, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hook := func(done, total int) error {
		if err := ctx.Err(); err != nil {
			return errs.Wrap(errs.ErrCodeCanceled, err, "render canceled after %d of %d rows", done, total)
		}
		if opts.Progress != nil {
			return opts.Progress(done, total)
		}
		return nil
	}

	region := opts.Region.String()
	observability.Render().OnRenderStart(ctx, region, opts.Region.Pixels())
	start := time.Now()
	grid, err := fractal.Render(opts.Region, opts.MaxIter, fractal.WithRowHook(hook))
	observability.Render().OnRenderComplete(ctx, opts.Region.Pixels(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("grid complete", "region", region, "max_iter", opts.MaxIter)
	return grid, nil
}

// Encode writes grid in the given format.
func (r *Runner) Encode(ctx context.Context, grid *fractal.Grid, format string) ([]byte, error) {
	start := time.Now()
	data, err := sink.EncodeBytes(grid.Image(), format)
	observability.Render().OnEncodeComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads key from the cache. Backend errors count as misses.
func (r *Runner) lookup(ctx context.Context, logger *log.Logger, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Debug("cache read failed", "key", key, "error", err)
		hit = false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return data, true
}

// store writes data to the cache. Failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, logger *log.Logger, key string, data []byte) {
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.TTLArtifact
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Debug("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
