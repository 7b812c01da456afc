package archive

import (
	"context"
	"slices"
	"sync"
)

// MemoryArchive keeps entries in process memory. Intended for development
// and tests; entries vanish when the process exits.
type MemoryArchive struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryArchive creates an empty in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{entries: make(map[string]Entry)}
}

// Save stores an entry, overwriting any previous entry with the same id.
func (a *MemoryArchive) Save(ctx context.Context, e Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[e.ID] = e
	return nil
}

// Get retrieves an entry by computation id.
func (a *MemoryArchive) Get(ctx context.Context, id string) (Entry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, ok := a.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

// BySnapshot lists entries for a snapshot hash, newest first.
func (a *MemoryArchive) BySnapshot(ctx context.Context, snapshotHash string, limit int64) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	a.mu.RLock()
	var entries []Entry
	for _, e := range a.entries {
		if e.SnapshotHash == snapshotHash {
			entries = append(entries, e)
		}
	}
	a.mu.RUnlock()

	slices.SortFunc(entries, func(a, b Entry) int {
		return b.ComputedAt.Compare(a.ComputedAt)
	})
	if int64(len(entries)) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Close is a no-op.
func (a *MemoryArchive) Close(ctx context.Context) error { return nil }

var _ Archive = (*MemoryArchive)(nil)
