package orchestrate

import (
	"context"
	"fmt"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/ledger"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

// RegisterExternal backs the `register-external` CLI command (§6): it
// inserts a Ledger entry recording a migration the core did not itself
// perform. Per the original implementation, it refuses to overwrite an
// existing active (non-archived) record for the same (type, source_id)
// pair rather than silently clobbering it (SPEC_FULL.md "Supplemented
// features").
func (o *Orchestrator) RegisterExternal(ctx context.Context, resourceType, sourceID, destinationID string) (*ledger.Record, error) {
	existing, err := o.Ledger.Lookup(ctx, resourceType, sourceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: an active migration record already exists for %s/%s (uuid %s)",
			migerr.InvalidInput, resourceType, sourceID, existing.UUID)
	}

	serviceTag := ""
	if h, err := o.Registry.Get(resourceType); err == nil {
		serviceTag = h.ServiceTag()
	}

	rec := &ledger.Record{
		Service:          serviceTag,
		ResourceType:     resourceType,
		SourceCloud:      o.SourceCloud,
		DestinationCloud: o.DestinationCloud,
		SourceID:         sourceID,
		DestinationID:    destinationID,
		Status:           ledger.StatusCompleted,
		External:         true,
	}
	if err := o.Ledger.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
