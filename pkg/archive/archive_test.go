package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlytics/dashgeom/pkg/engine"
)

func testEntry(t *testing.T, snapshotHash string, computedAt time.Time) Entry {
	t.Helper()
	result := &engine.Result{SnapshotHash: snapshotHash}
	opts := engine.Options{Width: 800, Height: 600}
	require.NoError(t, opts.ValidateAndSetDefaults())
	e := NewEntry(result, opts)
	e.ComputedAt = computedAt
	return e
}

func TestNewEntry(t *testing.T) {
	result := &engine.Result{SnapshotHash: "abc123"}
	opts := engine.Options{Width: 1180, Height: 640, Charts: []string{"bullet"}}
	require.NoError(t, opts.ValidateAndSetDefaults())

	e := NewEntry(result, opts)

	assert.NotEmpty(t, e.ID, "entry should get a computation id")
	assert.Equal(t, "abc123", e.SnapshotHash)
	assert.Equal(t, 1180.0, e.Width)
	assert.Equal(t, 640.0, e.Height)
	assert.Equal(t, []string{"bullet"}, e.Charts)
	assert.NotEmpty(t, e.PolicyHash)
	assert.False(t, e.ComputedAt.IsZero(), "ComputedAt should be stamped")

	other := NewEntry(result, opts)
	assert.NotEqual(t, e.ID, other.ID, "each entry should get a distinct computation id")
}

func TestMemoryArchiveRoundtrip(t *testing.T) {
	arch := NewMemoryArchive()
	ctx := context.Background()

	e := testEntry(t, "snap1", time.Now())
	require.NoError(t, arch.Save(ctx, e))

	got, err := arch.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "snap1", got.SnapshotHash)

	_, err = arch.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryArchiveBySnapshot(t *testing.T) {
	arch := NewMemoryArchive()
	ctx := context.Background()

	base := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	oldest := testEntry(t, "snap1", base)
	newest := testEntry(t, "snap1", base.Add(time.Hour))
	other := testEntry(t, "snap2", base.Add(2*time.Hour))

	for _, e := range []Entry{oldest, newest, other} {
		require.NoError(t, arch.Save(ctx, e))
	}

	entries, err := arch.BySnapshot(ctx, "snap1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newest.ID, entries[0].ID, "listing should be newest first")

	limited, err := arch.BySnapshot(ctx, "snap1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, newest.ID, limited[0].ID, "limit should keep only the newest entry")
}

func TestNullArchive(t *testing.T) {
	arch := NewNullArchive()
	ctx := context.Background()

	assert.NoError(t, arch.Save(ctx, testEntry(t, "snap1", time.Now())))

	_, err := arch.Get(ctx, "anything")
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := arch.BySnapshot(ctx, "snap1", 10)
	assert.NoError(t, err)
	assert.Empty(t, entries)

	assert.NoError(t, arch.Close(ctx))
}
