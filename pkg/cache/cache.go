// Package cache provides storage for encoded render artifacts.
//
// Rendering is idempotent: the same region, density, iteration cap and output
// format always produce byte-identical files. Artifacts can therefore be keyed
// by a hash of those inputs and reused across runs.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: caching disabled
//
// Keys are built by a [Keyer] so that backends never see raw parameters.
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries.
const (
	// TTLArtifact is how long encoded images are kept. Renders never go stale,
	// so this only bounds disk usage.
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// ArtifactKeyOpts identifies one encoded render.
type ArtifactKeyOpts struct {
	LowerLeft  [2]float64 `json:"lower_left"`
	UpperRight [2]float64 `json:"upper_right"`
	Density    float64    `json:"density"`
	MaxIter    uint64     `json:"max_iter"`
	Format     string     `json:"format"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key for an encoded render.
	ArtifactKey(opts ArtifactKeyOpts) string
}

// DefaultKeyer builds "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey hashes every render input into the key.
func (DefaultKeyer) ArtifactKey(opts ArtifactKeyOpts) string {
	return hashKey("artifact", opts)
}
