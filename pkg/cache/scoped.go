package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend without colliding, e.g. a redis instance used by both a staging
// and a production server.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "mandel:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(opts)
}
