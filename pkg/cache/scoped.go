package cache

// ScopedKeyer wraps a Keyer with a prefix so separate projects or users get
// isolated cache namespaces when sharing a backend.
//
// Example usage:
//
//	// Per-project keys on a shared Redis instance
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "proj:pkpd-2026:")
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

// BundleKey generates a prefixed key for a parsed bundle.
func (k *ScopedKeyer) BundleKey(bundleHash string) string {
	return k.prefix + k.inner.BundleKey(bundleHash)
}

// SpecKey generates a prefixed key for an assembled specification.
func (k *ScopedKeyer) SpecKey(bundleHash string, opts SpecKeyOpts) string {
	return k.prefix + k.inner.SpecKey(bundleHash, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(specHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(specHash, opts)
}
