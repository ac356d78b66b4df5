// Package config loads mandel settings from a TOML file.
//
// A file may set any subset of the keys below; everything it omits keeps the
// value from [Default]:
//
//	[region]
//	preset      = "seahorse-valley" # optional; other region keys override it
//	lower_left  = [-1.5, -0.5]
//	upper_right = [0.0, 0.0]
//	density     = 3000.0
//	max_iter    = 15
//
//	[output]
//	path   = "testimage.png"
//	format = ""                     # empty: infer from the path extension
//
//	[server]
//	addr       = ":8080"
//	redis_url  = ""
//	max_pixels = 4000000
//	cache_ttl  = "720h"
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/mandel/pkg/errors"
	"github.com/matzehuels/mandel/pkg/fractal"
	"github.com/matzehuels/mandel/pkg/pipeline"
	"github.com/matzehuels/mandel/pkg/sink"
)

// FileName is the name of the config file inside the user config directory.
const FileName = "config.toml"

// DefaultMaxPixels caps the size of images the server renders.
const DefaultMaxPixels = 4_000_000

// Config holds every setting read from a config file.
type Config struct {
	Region RegionConfig `toml:"region"`
	Output OutputConfig `toml:"output"`
	Server ServerConfig `toml:"server"`

	meta toml.MetaData
}

// RegionConfig selects the part of the plane to render.
type RegionConfig struct {
	Preset     string     `toml:"preset"`
	LowerLeft  [2]float64 `toml:"lower_left"`
	UpperRight [2]float64 `toml:"upper_right"`
	Density    float64    `toml:"density"`
	MaxIter    uint64     `toml:"max_iter"`
}

// OutputConfig controls where and how the CLI writes the image.
type OutputConfig struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
}

// ServerConfig configures `mandel serve`.
type ServerConfig struct {
	Addr      string   `toml:"addr"`
	RedisURL  string   `toml:"redis_url"`
	MaxPixels int      `toml:"max_pixels"`
	CacheTTL  Duration `toml:"cache_ttl"`
}

// Duration is a time.Duration written as a string such as "90m" or "720h".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	r := pipeline.DefaultRegion()
	return &Config{
		Region: RegionConfig{
			LowerLeft:  [2]float64{real(r.LowerLeft), imag(r.LowerLeft)},
			UpperRight: [2]float64{real(r.UpperRight), imag(r.UpperRight)},
			Density:    r.Density,
			MaxIter:    pipeline.DefaultMaxIter,
		},
		Output: OutputConfig{
			Path: pipeline.DefaultOutput,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			MaxPixels: DefaultMaxPixels,
			CacheTTL:  Duration{30 * 24 * time.Hour},
		},
	}
}

// DefaultPath returns the per-user config file location
// (e.g. ~/.config/mandel/config.toml).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mandel", FileName), nil
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// LoadOptional loads path if it exists and returns [Default] otherwise.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes TOML data on top of [Default] and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.meta = md

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	region, maxIter, err := c.Render()
	if err != nil {
		return err
	}
	if err := region.Validate(); err != nil {
		return err
	}
	if err := fractal.ValidateIterations(maxIter); err != nil {
		return err
	}

	if c.Output.Path != "" {
		if err := errs.ValidateOutputPath(c.Output.Path); err != nil {
			return err
		}
	}
	if c.Output.Format != "" {
		if err := sink.ValidateFormat(c.Output.Format); err != nil {
			return err
		}
	}

	if c.Server.MaxPixels < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "server.max_pixels must not be negative, got %d", c.Server.MaxPixels)
	}
	if c.Server.CacheTTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "server.cache_ttl must not be negative, got %s", c.Server.CacheTTL)
	}
	return nil
}

// Render resolves the region section into a region and iteration cap.
//
// With a preset, the preset supplies the base values and only keys the file
// sets explicitly override them.
func (c *Config) Render() (fractal.Region, uint64, error) {
	rc := c.Region
	region := fractal.NewRegion(rc.LowerLeft[0], rc.LowerLeft[1], rc.UpperRight[0], rc.UpperRight[1], rc.Density)
	maxIter := rc.MaxIter
	if rc.Preset == "" {
		return region, maxIter, nil
	}

	p, err := fractal.LookupPreset(rc.Preset)
	if err != nil {
		return fractal.Region{}, 0, err
	}
	base := p.Region
	if c.meta.IsDefined("region", "lower_left") {
		base.LowerLeft = region.LowerLeft
	}
	if c.meta.IsDefined("region", "upper_right") {
		base.UpperRight = region.UpperRight
	}
	if c.meta.IsDefined("region", "density") {
		base.Density = region.Density
	}
	if !c.meta.IsDefined("region", "max_iter") {
		maxIter = p.MaxIter
	}
	return base, maxIter, nil
}

// OutputFormat returns the configured format, falling back to the path
// extension and then to PNG.
func (c *Config) OutputFormat() string {
	if c.Output.Format != "" {
		return c.Output.Format
	}
	if f, ok := sink.FormatFromPath(c.Output.Path); ok {
		return f
	}
	return sink.DefaultFormat
}
