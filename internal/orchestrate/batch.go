package orchestrate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/ledger"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

// BatchResult reports, per source id, the outcome of one batch-migration attempt.
type BatchResult struct {
	SourceID string
	Record   *ledger.Record
	Err      error
	Skipped  bool
}

// MigrateBatch is the batch-migration entry point (§4.E "Batch migration").
// It validates filters against the handler's supported set, enumerates
// matching source ids, and migrates each independently — a per-id failure
// is logged and does not abort the batch.
func (o *Orchestrator) MigrateBatch(ctx context.Context, resourceType string, filters map[string]string, opts Options) ([]BatchResult, error) {
	h, err := o.Registry.Get(resourceType)
	if err != nil {
		return nil, err
	}

	supported := make(map[string]bool, len(h.SupportedFilters()))
	for _, k := range h.SupportedFilters() {
		supported[k] = true
	}
	var unknown []string
	for k := range filters {
		if !supported[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: unsupported filter(s) %s for resource type %q", migerr.InvalidFilter, strings.Join(unknown, ", "), resourceType)
	}

	ids, err := h.ListIDs(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", migerr.HandlerFailure, err)
	}

	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		existing, err := o.Ledger.Lookup(ctx, resourceType, id)
		if err != nil {
			results = append(results, BatchResult{SourceID: id, Err: err})
			continue
		}
		if existing != nil && existing.Status == ledger.StatusCompleted {
			o.Log.Info("batch: skipping already-completed migration", slog.String("resource_type", resourceType), slog.String("source_id", id))
			results = append(results, BatchResult{SourceID: id, Record: existing, Skipped: true})
			continue
		}

		rec, err := o.Migrate(ctx, resourceType, id, opts)
		if err != nil {
			o.Log.Error("batch: migration failed, continuing with remaining ids",
				slog.String("resource_type", resourceType), slog.String("source_id", id), slog.String("error", err.Error()))
			results = append(results, BatchResult{SourceID: id, Err: err})
			continue
		}
		results = append(results, BatchResult{SourceID: id, Record: rec})
	}
	return results, nil
}
