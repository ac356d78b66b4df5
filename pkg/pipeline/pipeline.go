// Package pipeline runs a complete render: region → grid → encoded image.
//
// The same [Runner] backs the CLI and the HTTP server so both apply identical
// validation, defaults and caching.
//
// # Stages
//
//  1. Render: evaluate every pixel of the region ([fractal.Render])
//  2. Encode: write the grid as PNG, TIFF or BMP ([sink.Encode])
//
// The encoded artifact is cached under a key derived from every input, so a
// repeated request skips both stages.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Region:  fractal.NewRegion(-1.5, -0.5, 0, 0, 3000),
//	    MaxIter: 15,
//	})
//	if err != nil {
//	    return err
//	}
//	err = sink.WriteFile("testimage.png", result.Artifact)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/mandel/pkg/cache"
	"github.com/matzehuels/mandel/pkg/fractal"
	"github.com/matzehuels/mandel/pkg/sink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultDensity is the default number of pixels per unit of the plane.
	DefaultDensity = 3000.0

	// DefaultMaxIter is the default iteration cap.
	DefaultMaxIter = uint64(15)

	// DefaultOutput is the default output file for the CLI.
	DefaultOutput = "testimage.png"
)

// DefaultRegion returns the region rendered when nothing else is requested:
// (-1.5, -0.5) to (0, 0) at [DefaultDensity].
func DefaultRegion() fractal.Region {
	return fractal.NewRegion(-1.5, -0.5, 0.0, 0.0, DefaultDensity)
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one render.
type Options struct {
	Region  fractal.Region
	MaxIter uint64
	Format  string

	// Refresh skips the cache lookup. The result is still written back.
	Refresh bool

	// Runtime options
	Logger   *log.Logger
	Progress fractal.RowHook

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies this run in logs and response headers.
	ID uuid.UUID

	// Key is the cache key of the artifact. It changes whenever any input does.
	Key string

	// Grid is the rendered pixel grid. It is nil when the artifact came from cache.
	Grid *fractal.Grid

	// Artifact is the encoded image.
	Artifact []byte

	// Format is the encoding of Artifact.
	Format string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the cache was used.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Width      int
	Height     int
	Pixels     int
	RenderTime time.Duration
	EncodeTime time.Duration
}

// CacheInfo tracks cache hits for the run.
type CacheInfo struct {
	RenderHit bool // Whether the artifact came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the request and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxIter == 0 {
		o.MaxIter = DefaultMaxIter
	}
	if o.Format == "" {
		o.Format = sink.DefaultFormat
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := o.Region.Validate(); err != nil {
		return err
	}
	if err := fractal.ValidateIterations(o.MaxIter); err != nil {
		return err
	}
	if err := sink.ValidateFormat(o.Format); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for the encoded artifact.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	ll, ur := o.Region.LowerLeft, o.Region.UpperRight
	return cache.ArtifactKeyOpts{
		LowerLeft:  [2]float64{real(ll), imag(ll)},
		UpperRight: [2]float64{real(ur), imag(ur)},
		Density:    o.Region.Density,
		MaxIter:    o.MaxIter,
		Format:     o.Format,
	}
}
