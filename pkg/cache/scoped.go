package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation. The
// hosted dashboard keeps each workspace in its own cache namespace while
// sharing one Redis deployment.
//
// Example usage:
//
//	// Workspace-specific keys
//	wsKeyer := NewScopedKeyer(NewDefaultKeyer(), "ws:abc123:")
//
//	// Shared keys
//	globalKeyer := NewDefaultKeyer()
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

// SnapshotKey generates a prefixed key for snapshot document storage.
func (k *ScopedKeyer) SnapshotKey(hash string) string {
	return k.prefix + k.inner.SnapshotKey(hash)
}

// ResultKey generates a prefixed key for a computed layout result.
func (k *ScopedKeyer) ResultKey(snapshotHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(snapshotHash, opts)
}
