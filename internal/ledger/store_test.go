package ledger_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/ledger"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAssignsUUIDAndTimestamps(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	rec := &ledger.Record{ResourceType: "volume", SourceID: "vol-1", Status: ledger.StatusInProgress}
	require.NoError(t, store.Save(ctx, rec))
	require.NotEmpty(t, rec.UUID)
	require.False(t, rec.CreatedAt.IsZero())
	require.False(t, rec.UpdatedAt.IsZero())

	createdAt := rec.CreatedAt
	rec.Status = ledger.StatusCompleted
	require.NoError(t, store.Save(ctx, rec))
	require.Equal(t, createdAt, rec.CreatedAt) // unchanged on update
}

func TestLookupFindsOnlyActiveRecord(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	rec, err := store.Lookup(ctx, "volume", "vol-1")
	require.NoError(t, err)
	require.Nil(t, rec) // no error for an absent pair

	require.NoError(t, store.Save(ctx, &ledger.Record{ResourceType: "volume", SourceID: "vol-1", Status: ledger.StatusCompleted}))
	found, err := store.Lookup(ctx, "volume", "vol-1")
	require.NoError(t, err)
	require.NotNil(t, found)

	require.NoError(t, store.Archive(ctx, found.UUID))
	afterArchive, err := store.Lookup(ctx, "volume", "vol-1")
	require.NoError(t, err)
	require.Nil(t, afterArchive)
}

func TestActiveMigratedUniquenessInvariant(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &ledger.Record{ResourceType: "volume", SourceID: "vol-1", Status: ledger.StatusCompleted}))

	second := &ledger.Record{ResourceType: "volume", SourceID: "vol-1", Status: ledger.StatusPendingMembers}
	err := store.Save(ctx, second)
	require.ErrorIs(t, err, migerr.InvariantViolation)
}

func TestQueryFiltersByStatusAndExcludesArchivedByDefault(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	active := &ledger.Record{ResourceType: "volume", SourceID: "vol-1", Status: ledger.StatusCompleted}
	require.NoError(t, store.Save(ctx, active))
	failed := &ledger.Record{ResourceType: "volume", SourceID: "vol-2", Status: ledger.StatusFailed}
	require.NoError(t, store.Save(ctx, failed))
	require.NoError(t, store.Archive(ctx, active.UUID))

	recs, err := store.Query(ctx, ledger.Filters{Status: ledger.StatusCompleted})
	require.NoError(t, err)
	require.Empty(t, recs) // archived, excluded by default

	recs, err = store.Query(ctx, ledger.Filters{Status: ledger.StatusCompleted, IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	recs, err = store.Query(ctx, ledger.Filters{})
	require.NoError(t, err)
	require.Len(t, recs, 1) // only the non-archived FAILED record
	require.Equal(t, "vol-2", recs[0].SourceID)
}

func TestGetUnknownUUIDIsNotFound(t *testing.T) {
	store := openStore(t)
	_, err := store.Get(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, migerr.NotFound)
}

func TestDeleteRequiresExistingRecord(t *testing.T) {
	store := openStore(t)
	err := store.Delete(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, migerr.InvalidInput)
}
