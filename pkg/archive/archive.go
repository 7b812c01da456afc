// Package archive provides durable storage for computed layout results.
//
// The dashboard keeps an audit trail of what was shown when: every service
// computation can be archived as an Entry keyed by a fresh computation id,
// and later looked up by id or listed per snapshot. Implementations:
//   - mongo: MongoDB-backed storage for production deployments
//   - memory: In-memory storage for development/testing
//   - null: No-op storage when archiving is disabled
//
// # Usage
//
// Create an archive and record a computation:
//
//	arch, err := archive.NewMongoArchive(ctx, archive.Config{
//	    URI: "mongodb://localhost:27017",
//	})
//	if err != nil {
//	    return err
//	}
//	entry := archive.NewEntry(result, opts)
//	if err := arch.Save(ctx, entry); err != nil {
//	    return err
//	}
//
// Look computations back up:
//
//	entry, err := arch.Get(ctx, id)
//	entries, err := arch.BySnapshot(ctx, snapshotHash, 20)
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/crawlytics/dashgeom/pkg/engine"
)

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("not found")

// DefaultListLimit caps BySnapshot listings when the caller passes no limit.
const DefaultListLimit = 20

// Entry is one archived computation.
type Entry struct {
	// ID is the computation id, a fresh UUID per archived result.
	ID string `bson:"_id" json:"id"`

	// SnapshotHash ties the entry back to the input snapshot.
	SnapshotHash string `bson:"snapshot_hash" json:"snapshot_hash"`

	// Frame and chart selection the result was computed under.
	Width  float64  `bson:"width" json:"width"`
	Height float64  `bson:"height" json:"height"`
	Charts []string `bson:"charts" json:"charts"`

	// PolicyHash identifies the policy revision used.
	PolicyHash string `bson:"policy_hash,omitempty" json:"policy_hash,omitempty"`

	// ComputedAt is when the result was produced.
	ComputedAt time.Time `bson:"computed_at" json:"computed_at"`

	// Result is the full computed output.
	Result *engine.Result `bson:"result" json:"result"`
}

// NewEntry stamps a computed result with a fresh computation id.
// Options must have been validated by the compute call that produced result.
func NewEntry(result *engine.Result, opts engine.Options) Entry {
	keyOpts := opts.ResultKeyOpts()
	return Entry{
		ID:           uuid.NewString(),
		SnapshotHash: result.SnapshotHash,
		Width:        opts.Width,
		Height:       opts.Height,
		Charts:       keyOpts.Charts,
		PolicyHash:   keyOpts.PolicyHash,
		ComputedAt:   time.Now().UTC(),
		Result:       result,
	}
}

// Archive is the interface for layout archive backends.
type Archive interface {
	// Save stores an entry.
	Save(ctx context.Context, e Entry) error

	// Get retrieves an entry by computation id.
	// Returns ErrNotFound when no such entry exists.
	Get(ctx context.Context, id string) (Entry, error)

	// BySnapshot lists entries for a snapshot hash, newest first.
	// A non-positive limit falls back to DefaultListLimit.
	BySnapshot(ctx context.Context, snapshotHash string, limit int64) ([]Entry, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// =============================================================================
// Null Archive
// =============================================================================

// NullArchive discards every write and finds nothing. It stands in when
// archiving is not configured, so callers never branch on a nil archive.
type NullArchive struct{}

// NewNullArchive creates an archive that stores nothing.
func NewNullArchive() Archive {
	return &NullArchive{}
}

// Save discards the entry.
func (a *NullArchive) Save(ctx context.Context, e Entry) error { return nil }

// Get always reports a missing entry.
func (a *NullArchive) Get(ctx context.Context, id string) (Entry, error) {
	return Entry{}, ErrNotFound
}

// BySnapshot always returns an empty listing.
func (a *NullArchive) BySnapshot(ctx context.Context, snapshotHash string, limit int64) ([]Entry, error) {
	return nil, nil
}

// Close is a no-op.
func (a *NullArchive) Close(ctx context.Context) error { return nil }

var _ Archive = (*NullArchive)(nil)
