package resolve_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/handler"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/ledger"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/resolve"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestResolvePartitionsMigratedAndPending(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &ledger.Record{
		ResourceType: "volume_type", SourceID: "type-1",
		Status: ledger.StatusCompleted, DestinationID: "type-1-dst",
	}))

	r := &resolve.Resolver{Ledger: store}
	part, err := r.Resolve(ctx, []handler.Dependency{
		{ResourceType: "volume_type", SourceID: "type-1"},
		{ResourceType: "network", SourceID: "net-1"},
	})
	require.NoError(t, err)
	require.Len(t, part.Migrated, 1)
	require.Equal(t, "type-1-dst", part.Migrated[0].DestinationID)
	require.Len(t, part.Pending, 1)
	require.Equal(t, "net-1", part.Pending[0].SourceID)
}

func TestResolveMigratedWithoutDestinationIDIsInvariantViolation(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &ledger.Record{
		ResourceType: "network", SourceID: "net-1", Status: ledger.StatusCompleted,
	}))

	r := &resolve.Resolver{Ledger: store}
	_, err := r.Resolve(ctx, []handler.Dependency{{ResourceType: "network", SourceID: "net-1"}})
	require.ErrorIs(t, err, migerr.InvariantViolation)
}
