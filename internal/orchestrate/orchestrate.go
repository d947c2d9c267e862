// Package orchestrate implements the Orchestrator (§4.E): the top-level
// depth-first driver over the associated/member graph.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/handler"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/ledger"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/logging"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/registry"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/resolve"
)

// Options is an alias of handler.MigrateOptions: the per-call knobs
// (§6 CLI flags) threaded through every recursive Migrate call.
type Options = handler.MigrateOptions

// Orchestrator is the single-threaded, cooperative depth-first traversal
// described in §5: one resource at a time, dependencies before dependents,
// members after their parent.
type Orchestrator struct {
	Ledger   *ledger.Store
	Registry *registry.Registry
	Resolver *resolve.Resolver

	SourceCloud      string
	DestinationCloud string
	MultitenantMode  bool

	Log *slog.Logger

	// stack tracks (type, source_id) pairs currently IN_PROGRESS within
	// this top-level invocation, to distinguish a genuine cycle (§8
	// boundary behavior: "a dependency cycle ... must be detected and
	// surfaced as InvariantViolation") from a stale IN_PROGRESS record
	// left by a different, possibly crashed, run.
	mu    sync.Mutex
	stack map[handler.Key]bool

	// sf de-duplicates SubMigrate calls for a key that is already in
	// flight, without parallelizing the otherwise strictly sequential
	// traversal: callers for distinct keys still run one at a time because
	// every call is still issued from the same goroutine. It keeps no
	// result once a call returns; a later SubMigrate for the same key runs
	// Migrate again and is answered by its idempotency gate.
	sf singleflight.Group
}

// New builds an Orchestrator. Log defaults to logging.Default() if nil.
func New(store *ledger.Store, reg *registry.Registry, sourceCloud, destinationCloud string, multitenant bool, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = logging.Default()
	}
	return &Orchestrator{
		Ledger:           store,
		Registry:         reg,
		Resolver:         &resolve.Resolver{Ledger: store},
		SourceCloud:      sourceCloud,
		DestinationCloud: destinationCloud,
		MultitenantMode:  multitenant,
		Log:              log,
		stack:            make(map[handler.Key]bool),
	}
}

// SubMigrate implements handler.SubMigrator: it re-enters Migrate for an
// auxiliary resource a handler discovers mid-migration (§9).
func (o *Orchestrator) SubMigrate(ctx context.Context, resourceType, sourceID string, opts Options) (string, error) {
	key := handler.Key{ResourceType: resourceType, SourceID: sourceID}
	v, err, _ := o.sf.Do(fmt.Sprintf("%s/%s", key.ResourceType, key.SourceID), func() (any, error) {
		rec, err := o.Migrate(ctx, resourceType, sourceID, opts)
		if err != nil {
			return "", err
		}
		return rec.DestinationID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Migrate is the individual-migration entry point (§4.E).
func (o *Orchestrator) Migrate(ctx context.Context, resourceType, sourceID string, opts Options) (*ledger.Record, error) {
	h, err := o.Registry.Get(resourceType)
	if err != nil {
		return nil, err
	}

	// Step 1: idempotency gate.
	existing, err := o.Ledger.Lookup(ctx, resourceType, sourceID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status.Migrated() {
		return existing, nil
	}

	key := handler.Key{ResourceType: resourceType, SourceID: sourceID}

	if existing != nil && existing.Status == ledger.StatusInProgress {
		if o.inStack(key) {
			return nil, fmt.Errorf("%w: %s/%s participates in a dependency cycle", migerr.InvariantViolation, resourceType, sourceID)
		}
		return nil, fmt.Errorf("%w: %s/%s is IN_PROGRESS from a different run; use `delete`/`restore` to choose re-run semantics",
			migerr.ConcurrentOrStuck, resourceType, sourceID)
	}

	if opts.DryRun {
		return o.dryRunWalk(ctx, h, resourceType, sourceID, opts)
	}

	rec := existing
	if rec == nil {
		rec = &ledger.Record{
			Service:          h.ServiceTag(),
			ResourceType:     resourceType,
			SourceCloud:      o.SourceCloud,
			DestinationCloud: o.DestinationCloud,
			SourceID:         sourceID,
		}
	}
	rec.Status = ledger.StatusInProgress
	rec.ErrorMessage = ""
	if err := o.Ledger.Save(ctx, rec); err != nil {
		return nil, err
	}

	o.pushStack(key)
	defer o.popStack(key)

	fail := func(cause error) (*ledger.Record, error) {
		rec.Status = ledger.StatusFailed
		rec.ErrorMessage = cause.Error()
		if saveErr := o.Ledger.Save(ctx, rec); saveErr != nil {
			o.Log.Error("failed to persist FAILED status", slog.String("error", saveErr.Error()))
		}
		return nil, cause
	}

	// Step 3: parent phase.
	associated, err := h.Associated(ctx, sourceID)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", migerr.HandlerFailure, err))
	}
	if o.MultitenantMode {
		associated = append(o.multitenantDeps(ctx, resourceType, sourceID), associated...)
	}

	part, err := o.Resolver.Resolve(ctx, associated)
	if err != nil {
		return fail(err)
	}

	var cleanupDeps []handler.Dependency
	if len(part.Pending) > 0 {
		if !opts.IncludeDeps {
			return fail(fmt.Errorf("%w: %s/%s has unmigrated dependencies", migerr.DependenciesPending, resourceType, sourceID))
		}
		for _, dep := range part.Pending {
			if err := o.migrateDependency(ctx, dep, opts); err != nil {
				// A cycle or a stale concurrent run is an anomaly that must
				// surface immediately rather than be absorbed into "still
				// pending" (§8 boundary behavior). An ordinary dependency
				// failure (HandlerFailure, its own DependenciesPending, ...)
				// is logged and left for the resolver refresh below to turn
				// into this parent's own DependenciesPending (§8 S4).
				if errors.Is(err, migerr.InvariantViolation) || errors.Is(err, migerr.ConcurrentOrStuck) {
					return fail(err)
				}
				o.Log.Error("dependency migration failed; will report as dependencies pending",
					slog.String("resource_type", dep.ResourceType), slog.String("source_id", dep.SourceID), slog.String("error", err.Error()))
				continue
			}
			if dep.ShouldCleanup && opts.CleanupSource {
				cleanupDeps = append(cleanupDeps, dep)
			}
		}
		// Re-resolve; if still non-empty some dependency failed to migrate.
		final, err := o.Resolver.Resolve(ctx, associated)
		if err != nil {
			return fail(err)
		}
		if len(final.Pending) > 0 {
			return fail(fmt.Errorf("%w: %s/%s has unmigrated dependencies", migerr.DependenciesPending, resourceType, sourceID))
		}
		part = final
	}

	// Step 4: handler call.
	destID, err := h.Migrate(ctx, sourceID, part.Migrated)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", migerr.HandlerFailure, err))
	}

	// Step 5.
	rec.DestinationID = destID
	rec.Status = ledger.StatusPendingMembers
	if err := o.Ledger.Save(ctx, rec); err != nil {
		return nil, err
	}

	// Step 6: member phase.
	if opts.IncludeMembers {
		members, err := h.Members(ctx, sourceID)
		if err != nil {
			o.Log.Error("listing members failed; continuing best-effort", slog.String("resource_type", resourceType),
				slog.String("source_id", sourceID), slog.String("error", err.Error()))
		} else {
			migratedMembers := o.migrateMembers(ctx, members, opts)
			if err := h.ConnectMembers(ctx, destID, migratedMembers); err != nil {
				o.Log.Error("connect_members failed; parent migration still succeeds",
					slog.String("resource_type", resourceType), slog.String("source_id", sourceID), slog.String("error", err.Error()))
			}
		}
	}

	// Step 7.
	rec.Status = ledger.StatusPendingCleanup
	if err := o.Ledger.Save(ctx, rec); err != nil {
		return nil, err
	}

	// Step 8: cleanup phase.
	if opts.CleanupSource {
		if err := h.DeleteSource(ctx, sourceID); err != nil {
			rec.Status = ledger.StatusSourceCleanupFailed
			rec.ErrorMessage = err.Error()
			_ = o.Ledger.Save(ctx, rec)
			return nil, fmt.Errorf("%w: %v", migerr.SourceCleanupFailed, err)
		}
		rec.SourceRemoved = true

		for _, dep := range cleanupDeps {
			depHandler, err := o.Registry.Get(dep.ResourceType)
			if err != nil {
				o.Log.Error("no handler for cleanup dependency", slog.String("resource_type", dep.ResourceType))
				continue
			}
			if err := depHandler.DeleteSource(ctx, dep.SourceID); err != nil {
				rec.Status = ledger.StatusSourceCleanupFailed
				rec.ErrorMessage = err.Error()
				_ = o.Ledger.Save(ctx, rec)
				return nil, fmt.Errorf("%w: cleaning up %s/%s: %v", migerr.SourceCleanupFailed, dep.ResourceType, dep.SourceID, err)
			}
		}
	}

	// Step 9.
	rec.Status = ledger.StatusCompleted
	if err := o.Ledger.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// migrateDependency processes one pending dependency within the parent
// phase's iteration (§4.E step 3), re-checking the Ledger for races and
// distinguishing a real cycle from a stale concurrent run.
func (o *Orchestrator) migrateDependency(ctx context.Context, dep handler.Dependency, opts Options) error {
	rec, err := o.Ledger.Lookup(ctx, dep.ResourceType, dep.SourceID)
	if err != nil {
		return err
	}
	if rec != nil && rec.Status.Migrated() {
		return nil // satisfied by a concurrent/earlier save
	}
	key := handler.Key{ResourceType: dep.ResourceType, SourceID: dep.SourceID}
	if rec != nil && rec.Status == ledger.StatusInProgress {
		if o.inStack(key) {
			return fmt.Errorf("%w: %s/%s participates in a dependency cycle", migerr.InvariantViolation, dep.ResourceType, dep.SourceID)
		}
		return fmt.Errorf("%w: %s/%s is IN_PROGRESS from a different run", migerr.ConcurrentOrStuck, dep.ResourceType, dep.SourceID)
	}
	// A dependency never deletes its own source: the parent's cleanup phase
	// deletes it afterwards if, and only if, it is marked ShouldCleanup.
	depOpts := opts
	depOpts.CleanupSource = false
	_, err = o.Migrate(ctx, dep.ResourceType, dep.SourceID, depOpts)
	return err
}

// migrateMembers runs the best-effort member phase (§4.E step 6): a
// member's failure is logged and does not fail the parent.
func (o *Orchestrator) migrateMembers(ctx context.Context, members []handler.Dependency, opts Options) []handler.Migrated {
	var out []handler.Migrated
	for _, m := range members {
		key := handler.Key{ResourceType: m.ResourceType, SourceID: m.SourceID}
		rec, err := o.Ledger.Lookup(ctx, m.ResourceType, m.SourceID)
		if err != nil {
			o.Log.Error("member lookup failed", slog.String("error", err.Error()))
			continue
		}
		if rec != nil && rec.Status.Migrated() {
			out = append(out, handler.Migrated{Dependency: m, DestinationID: rec.DestinationID})
			continue
		}
		if rec != nil && rec.Status == ledger.StatusInProgress && !o.inStack(key) {
			o.Log.Warn("skipping member IN_PROGRESS from a different run", slog.String("resource_type", m.ResourceType), slog.String("source_id", m.SourceID))
			continue
		}
		memberRec, err := o.Migrate(ctx, m.ResourceType, m.SourceID, opts)
		if err != nil {
			o.Log.Error("member migration failed; continuing with remaining members",
				slog.String("resource_type", m.ResourceType), slog.String("source_id", m.SourceID), slog.String("error", err.Error()))
			continue
		}
		out = append(out, handler.Migrated{Dependency: m, DestinationID: memberRec.DestinationID})
	}
	return out
}

// multitenantDeps injects the project/user dependencies ahead of a
// handler's own associated() list when multitenant_mode is set (§9,
// Design Notes: "the core identifies the owning project/user of each
// source resource as additional dependencies").
func (o *Orchestrator) multitenantDeps(ctx context.Context, resourceType, sourceID string) []handler.Dependency {
	h, err := o.Registry.Get(resourceType)
	if err != nil {
		return nil
	}
	owner, ok := h.(interface {
		Owner(ctx context.Context, sourceID string) ([]handler.Dependency, error)
	})
	if !ok {
		return nil
	}
	deps, err := owner.Owner(ctx, sourceID)
	if err != nil {
		o.Log.Warn("multitenant owner lookup failed", slog.String("resource_type", resourceType), slog.String("error", err.Error()))
		return nil
	}
	return deps
}

func (o *Orchestrator) inStack(k handler.Key) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stack[k]
}

func (o *Orchestrator) pushStack(k handler.Key) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stack[k] = true
}

func (o *Orchestrator) popStack(k handler.Key) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.stack, k)
}
