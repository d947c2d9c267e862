package orchestrate_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/handler"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/ledger"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/orchestrate"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/orchestrate/faketest"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/registry"
)

func newOrchestrator(t *testing.T, handlers map[string]handler.Handler) *orchestrate.Orchestrator {
	t.Helper()
	store, err := ledger.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := registry.New(handlers)
	return orchestrate.New(store, reg, "src", "dst", false, nil)
}

// S1: a resource with no dependencies migrates straight to COMPLETED.
func TestMigrateSimpleSuccess(t *testing.T) {
	h := faketest.New("volumev3")
	h.Add("vol-1", faketest.Resource{})
	o := newOrchestrator(t, map[string]handler.Handler{"volume": h})

	rec, err := o.Migrate(context.Background(), "volume", "vol-1", handler.MigrateOptions{})
	require.NoError(t, err)
	require.Equal(t, ledger.StatusCompleted, rec.Status)
	require.Equal(t, "vol-1-dst-1", rec.DestinationID)
	require.Equal(t, []string{"vol-1"}, h.MigrateCalls)
}

// S2: migrating a resource with a transitively unmigrated dependency, with
// include_dependencies set, recurses depth-first before the parent.
func TestMigrateTransitiveDependencies(t *testing.T) {
	volumes := faketest.New("volumev3")
	volumes.Add("vol-1", faketest.Resource{
		Associated: []handler.Dependency{{ResourceType: "volume_type", SourceID: "type-1"}},
	})
	types := faketest.New("cinder")
	types.Add("type-1", faketest.Resource{})

	o := newOrchestrator(t, map[string]handler.Handler{"volume": volumes, "volume_type": types})

	rec, err := o.Migrate(context.Background(), "volume", "vol-1", handler.MigrateOptions{IncludeDeps: true})
	require.NoError(t, err)
	require.Equal(t, ledger.StatusCompleted, rec.Status)
	require.Equal(t, []string{"type-1"}, types.MigrateCalls)
	require.Equal(t, []string{"vol-1"}, volumes.MigrateCalls)
}

// Without include_dependencies, a pending dependency surfaces as
// DependenciesPending rather than being migrated implicitly.
func TestMigrateDependenciesPendingWithoutFlag(t *testing.T) {
	volumes := faketest.New("volumev3")
	volumes.Add("vol-1", faketest.Resource{
		Associated: []handler.Dependency{{ResourceType: "volume_type", SourceID: "type-1"}},
	})
	types := faketest.New("cinder")
	types.Add("type-1", faketest.Resource{})

	o := newOrchestrator(t, map[string]handler.Handler{"volume": volumes, "volume_type": types})

	_, err := o.Migrate(context.Background(), "volume", "vol-1", handler.MigrateOptions{})
	require.ErrorIs(t, err, migerr.DependenciesPending)

	rec, lookupErr := o.Ledger.Lookup(context.Background(), "volume", "vol-1")
	require.NoError(t, lookupErr)
	require.Equal(t, ledger.StatusFailed, rec.Status)
}

// S3: a second call for an already-migrated resource is a no-op that
// returns the existing record without re-invoking the handler.
func TestMigrateIdempotentRetry(t *testing.T) {
	h := faketest.New("volumev3")
	h.Add("vol-1", faketest.Resource{})
	o := newOrchestrator(t, map[string]handler.Handler{"volume": h})

	ctx := context.Background()
	first, err := o.Migrate(ctx, "volume", "vol-1", handler.MigrateOptions{})
	require.NoError(t, err)

	second, err := o.Migrate(ctx, "volume", "vol-1", handler.MigrateOptions{})
	require.NoError(t, err)
	require.Equal(t, first.UUID, second.UUID)
	require.Equal(t, []string{"vol-1"}, h.MigrateCalls) // not called again
}

// A handler.Migrate failure records FAILED with the wrapped error message
// and returns HandlerFailure.
func TestMigrateHandlerFailure(t *testing.T) {
	h := faketest.New("volumev3")
	h.Add("vol-1", faketest.Resource{FailMigrate: errors.New("backend unreachable")})
	o := newOrchestrator(t, map[string]handler.Handler{"volume": h})

	_, err := o.Migrate(context.Background(), "volume", "vol-1", handler.MigrateOptions{})
	require.ErrorIs(t, err, migerr.HandlerFailure)

	rec, lookupErr := o.Ledger.Lookup(context.Background(), "volume", "vol-1")
	require.NoError(t, lookupErr)
	require.Equal(t, ledger.StatusFailed, rec.Status)
	require.Contains(t, rec.ErrorMessage, "backend unreachable")
}

// S4: a dependent's migration failure does not propagate its raw error to
// the parent — the parent instead fails with DependenciesPending once the
// post-recursion resolver refresh still finds it unmigrated.
func TestMigrateFailureOnDependentSurfacesAsDependenciesPending(t *testing.T) {
	a := faketest.New("a-service")
	a.Add("a-1", faketest.Resource{FailMigrate: errors.New("a backend down")})
	b := faketest.New("b-service")
	b.Add("b-1", faketest.Resource{Associated: []handler.Dependency{{ResourceType: "a", SourceID: "a-1"}}})

	o := newOrchestrator(t, map[string]handler.Handler{"a": a, "b": b})
	ctx := context.Background()

	_, err := o.Migrate(ctx, "b", "b-1", handler.MigrateOptions{IncludeDeps: true})
	require.ErrorIs(t, err, migerr.DependenciesPending)

	aRec, lookupErr := o.Ledger.Lookup(ctx, "a", "a-1")
	require.NoError(t, lookupErr)
	require.Equal(t, ledger.StatusFailed, aRec.Status)

	bRec, lookupErr := o.Ledger.Lookup(ctx, "b", "b-1")
	require.NoError(t, lookupErr)
	require.Equal(t, ledger.StatusFailed, bRec.Status)
	require.Contains(t, bRec.ErrorMessage, "dependencies pending")
}

// A dependency cycle within the current call stack is surfaced as
// InvariantViolation rather than recursing indefinitely.
func TestMigrateDependencyCycle(t *testing.T) {
	a := faketest.New("net")
	a.Add("a", faketest.Resource{Associated: []handler.Dependency{{ResourceType: "b", SourceID: "b"}}})
	b := faketest.New("net")
	b.Add("b", faketest.Resource{Associated: []handler.Dependency{{ResourceType: "a", SourceID: "a"}}})

	o := newOrchestrator(t, map[string]handler.Handler{"a": a, "b": b})

	_, err := o.Migrate(context.Background(), "a", "a", handler.MigrateOptions{IncludeDeps: true})
	require.ErrorIs(t, err, migerr.InvariantViolation)
}

// S5: a cleanup-eligible dependency (should_cleanup=true) is deleted from
// the source after a successful cleanup-source migration; a shared
// dependency (should_cleanup=false) is left alone.
func TestMigrateCleanupSharedVsOwnedDependency(t *testing.T) {
	instances := faketest.New("nova")
	instances.Add("inst-1", faketest.Resource{
		Associated: []handler.Dependency{
			{ResourceType: "volume", SourceID: "vol-1", ShouldCleanup: true},
			{ResourceType: "flavor", SourceID: "flavor-1", ShouldCleanup: false},
		},
	})
	volumes := faketest.New("volumev3")
	volumes.Add("vol-1", faketest.Resource{})
	flavors := faketest.New("nova")
	flavors.Add("flavor-1", faketest.Resource{})

	o := newOrchestrator(t, map[string]handler.Handler{"instance": instances, "volume": volumes, "flavor": flavors})

	rec, err := o.Migrate(context.Background(), "instance", "inst-1", handler.MigrateOptions{
		IncludeDeps:   true,
		CleanupSource: true,
	})
	require.NoError(t, err)
	require.Equal(t, ledger.StatusCompleted, rec.Status)
	require.Equal(t, []string{"vol-1"}, volumes.DeletedIDs)
	require.Empty(t, flavors.DeletedIDs)
	require.Equal(t, []string{"inst-1"}, instances.DeletedIDs)
}

// S6: the member phase is best-effort — a failing member does not fail the
// parent, and ConnectMembers only receives the survivors.
func TestMigrateMemberPhaseBestEffort(t *testing.T) {
	routers := faketest.New("neutron")
	routers.Add("router-1", faketest.Resource{
		Members: []handler.Dependency{
			{ResourceType: "port", SourceID: "port-ok"},
			{ResourceType: "port", SourceID: "port-bad"},
		},
	})
	ports := faketest.New("neutron")
	ports.Add("port-ok", faketest.Resource{})
	ports.Add("port-bad", faketest.Resource{FailMigrate: errors.New("port conflict")})

	o := newOrchestrator(t, map[string]handler.Handler{"router": routers, "port": ports})

	rec, err := o.Migrate(context.Background(), "router", "router-1", handler.MigrateOptions{IncludeMembers: true})
	require.NoError(t, err)
	require.Equal(t, ledger.StatusCompleted, rec.Status)

	connected := routers.ConnectedWith[rec.DestinationID]
	require.Len(t, connected, 1)
	require.Equal(t, "port-ok", connected[0].SourceID)
}

// An empty batch (no matching ids) succeeds with an empty result set.
func TestMigrateBatchEmpty(t *testing.T) {
	h := faketest.New("volumev3")
	o := newOrchestrator(t, map[string]handler.Handler{"volume": h})

	results, err := o.MigrateBatch(context.Background(), "volume", nil, handler.MigrateOptions{})
	require.NoError(t, err)
	require.Empty(t, results)
}

// An unsupported filter key is rejected before ListIDs is even called.
func TestMigrateBatchUnsupportedFilter(t *testing.T) {
	h := faketest.New("volumev3")
	o := newOrchestrator(t, map[string]handler.Handler{"volume": h})

	_, err := o.MigrateBatch(context.Background(), "volume", map[string]string{"bogus": "x"}, handler.MigrateOptions{})
	require.ErrorIs(t, err, migerr.InvalidFilter)
}

// DryRun never writes to the Ledger.
func TestMigrateDryRunWritesNothing(t *testing.T) {
	h := faketest.New("volumev3")
	h.Add("vol-1", faketest.Resource{})
	o := newOrchestrator(t, map[string]handler.Handler{"volume": h})

	rec, err := o.Migrate(context.Background(), "volume", "vol-1", handler.MigrateOptions{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, ledger.StatusCompleted, rec.Status)
	require.Empty(t, h.MigrateCalls)

	stored, err := o.Ledger.Lookup(context.Background(), "volume", "vol-1")
	require.NoError(t, err)
	require.Nil(t, stored)
}
