package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/handler"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/ledger"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

// dryRunWalk implements §4.E's dry-run mode: it walks the dependency graph
// and logs what would happen, consulting the Ledger (read-only) to avoid
// spuriously reporting already-migrated resources, but performs no
// destination writes, no Ledger writes, and calls no handler mutating method.
func (o *Orchestrator) dryRunWalk(ctx context.Context, h handler.Handler, resourceType, sourceID string, opts Options) (*ledger.Record, error) {
	key := handler.Key{ResourceType: resourceType, SourceID: sourceID}
	if o.inStack(key) {
		return nil, fmt.Errorf("%w: %s/%s participates in a dependency cycle", migerr.InvariantViolation, resourceType, sourceID)
	}
	o.pushStack(key)
	defer o.popStack(key)

	o.Log.Info("dry-run: would migrate", slog.String("resource_type", resourceType), slog.String("source_id", sourceID))

	associated, err := h.Associated(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", migerr.HandlerFailure, err)
	}
	if o.MultitenantMode {
		associated = append(o.multitenantDeps(ctx, resourceType, sourceID), associated...)
	}

	part, err := o.Resolver.Resolve(ctx, associated)
	if err != nil {
		return nil, err
	}
	if len(part.Pending) > 0 {
		if !opts.IncludeDeps {
			return nil, fmt.Errorf("%w: %s/%s has unmigrated dependencies", migerr.DependenciesPending, resourceType, sourceID)
		}
		var depFailed bool
		for _, dep := range part.Pending {
			depHandler, err := o.Registry.Get(dep.ResourceType)
			if err != nil {
				return nil, err
			}
			if _, err := o.dryRunWalk(ctx, depHandler, dep.ResourceType, dep.SourceID, opts); err != nil {
				if errors.Is(err, migerr.InvariantViolation) || errors.Is(err, migerr.ConcurrentOrStuck) {
					return nil, err
				}
				o.Log.Error("dry-run: dependency would fail; resource would be left pending",
					slog.String("resource_type", dep.ResourceType), slog.String("source_id", dep.SourceID), slog.String("error", err.Error()))
				depFailed = true
				continue
			}
		}
		if depFailed {
			return nil, fmt.Errorf("%w: %s/%s has unmigrated dependencies", migerr.DependenciesPending, resourceType, sourceID)
		}
	}

	if opts.IncludeMembers {
		members, err := h.Members(ctx, sourceID)
		if err != nil {
			o.Log.Error("dry-run: listing members failed", slog.String("error", err.Error()))
		}
		for _, m := range members {
			rec, err := o.Ledger.Lookup(ctx, m.ResourceType, m.SourceID)
			if err != nil {
				return nil, err
			}
			if rec != nil && rec.Status.Migrated() {
				continue
			}
			memberHandler, err := o.Registry.Get(m.ResourceType)
			if err != nil {
				o.Log.Error("dry-run: no handler for member", slog.String("resource_type", m.ResourceType))
				continue
			}
			if _, err := o.dryRunWalk(ctx, memberHandler, m.ResourceType, m.SourceID, opts); err != nil {
				o.Log.Error("dry-run: member would fail", slog.String("error", err.Error()))
			}
		}
	}

	if opts.CleanupSource {
		o.Log.Info("dry-run: would clean up source", slog.String("resource_type", resourceType), slog.String("source_id", sourceID))
	}

	return &ledger.Record{ResourceType: resourceType, SourceID: sourceID, Status: ledger.StatusCompleted}, nil
}
