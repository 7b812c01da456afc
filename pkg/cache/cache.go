// Package cache provides the pluggable byte cache behind layout
// computations. Snapshots are content-addressed, so a computed result stays
// valid for as long as the policy that produced it; entries carry TTLs to
// bound staleness after policy rollouts.
//
// Backends: FileCache for CLI usage, RedisCache for the shared service
// deployment, NullCache to disable caching.
package cache

import (
	"context"
	"time"
)

// Entry lifetimes per cached kind.
const (
	// TTLResult bounds how long a computed layout result is served before
	// recomputation picks up policy changes.
	TTLResult = 24 * time.Hour

	// TTLSnapshot bounds retention of raw snapshot documents kept for
	// replay.
	TTLSnapshot = 7 * 24 * time.Hour
)

// Cache is a byte store with optional expiry. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get returns the cached data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A nonpositive ttl stores without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
