// Package resolve implements the Dependency Resolver (§4.C): given the
// associated resources a handler reported for a resource (the caller
// queries the handler), it partitions them against the Ledger into
// migrated vs. pending.
package resolve

import (
	"context"
	"fmt"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/handler"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/ledger"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

// Resolver partitions a handler's associated/member lists against the Ledger.
type Resolver struct {
	Ledger *ledger.Store
}

// Partition is the result of resolving one dependency list: Migrated holds
// the full migrated-dependency shape (with DestinationID populated from the
// Ledger); Pending holds everything else — absent, IN_PROGRESS, or FAILED —
// in the same order the handler returned them.
type Partition struct {
	Migrated []handler.Migrated
	Pending  []handler.Dependency
}

// Resolve partitions deps (as returned by handler.Associated or
// handler.Members) against the Ledger, preserving order within each
// partition.
func (r *Resolver) Resolve(ctx context.Context, deps []handler.Dependency) (Partition, error) {
	var p Partition
	for _, dep := range deps {
		rec, err := r.Ledger.Lookup(ctx, dep.ResourceType, dep.SourceID)
		if err != nil {
			return Partition{}, fmt.Errorf("resolving dependency %s/%s: %w", dep.ResourceType, dep.SourceID, err)
		}
		if rec != nil && rec.Status.Migrated() {
			if rec.DestinationID == "" {
				return Partition{}, fmt.Errorf("%w: %s/%s is migrated but has no destination_id",
					migerr.InvariantViolation, dep.ResourceType, dep.SourceID)
			}
			p.Migrated = append(p.Migrated, handler.Migrated{Dependency: dep, DestinationID: rec.DestinationID})
			continue
		}
		p.Pending = append(p.Pending, dep)
	}
	return p, nil
}
