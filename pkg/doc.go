// Package pkg provides the libraries behind mandel, an escape-time renderer
// for the Mandelbrot set.
//
// # Overview
//
//  1. [fractal] - Region mapping, escape-time evaluation, colouring, rendering
//  2. [sink] - Lossless image encoders (PNG, TIFF, BMP) and file output
//  3. [pipeline] - Orchestration (validate → render → encode) with caching
//  4. [cache] - Artifact storage (file, redis, null) and key derivation
//  5. [config] - TOML configuration
//  6. [errors] - Coded errors shared by CLI and server
//  7. [observability] - Hooks for metrics and tracing
//
// # Architecture
//
// The typical data flow through mandel:
//
//	Region + iteration cap (flags, config file, preset or HTTP query)
//	         ↓
//	    [pipeline] package (validate, look up cache)
//	         ↓
//	    [fractal] package (map pixels, evaluate, colour)
//	         ↓
//	    [sink] package (encode)
//	         ↓
//	    PNG/TIFF/BMP output
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Region:  pipeline.DefaultRegion(),
//	    MaxIter: pipeline.DefaultMaxIter,
//	})
//	if err != nil {
//	    return err
//	}
//	return sink.WriteFile("testimage.png", result.Artifact)
//
// [fractal]: github.com/matzehuels/mandel/pkg/fractal
// [sink]: github.com/matzehuels/mandel/pkg/sink
// [pipeline]: github.com/matzehuels/mandel/pkg/pipeline
// [cache]: github.com/matzehuels/mandel/pkg/cache
// [config]: github.com/matzehuels/mandel/pkg/config
// [errors]: github.com/matzehuels/mandel/pkg/errors
// [observability]: github.com/matzehuels/mandel/pkg/observability
package pkg
