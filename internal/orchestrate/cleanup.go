package orchestrate

import (
	"context"
	"fmt"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/ledger"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

// CleanupSource backs the `cleanup-source` CLI command (§6): it retries
// only the cleanup phase of a prior migration, without re-running
// handler.Migrate, per the original implementation's cleanup-source
// subcommand (see SPEC_FULL.md "Supplemented features").
func (o *Orchestrator) CleanupSource(ctx context.Context, resourceType, sourceID string) (*ledger.Record, error) {
	rec, err := o.Ledger.Lookup(ctx, resourceType, sourceID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: no migration found for %s/%s", migerr.NotFound, resourceType, sourceID)
	}
	if rec.Status != ledger.StatusPendingCleanup && rec.Status != ledger.StatusSourceCleanupFailed {
		return nil, fmt.Errorf("%w: %s/%s is in status %s, not eligible for cleanup retry",
			migerr.InvalidInput, resourceType, sourceID, rec.Status)
	}

	h, err := o.Registry.Get(resourceType)
	if err != nil {
		return nil, err
	}

	if err := h.DeleteSource(ctx, sourceID); err != nil {
		rec.Status = ledger.StatusSourceCleanupFailed
		rec.ErrorMessage = err.Error()
		_ = o.Ledger.Save(ctx, rec)
		return nil, fmt.Errorf("%w: %v", migerr.SourceCleanupFailed, err)
	}

	rec.SourceRemoved = true
	rec.Status = ledger.StatusCompleted
	rec.ErrorMessage = ""
	if err := o.Ledger.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
