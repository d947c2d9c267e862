package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

// Filters is a conjunctive filter over Ledger records, per §4.A.
type Filters struct {
	Service          string
	ResourceType     string
	SourceID         string
	DestinationID    string
	Status           Status
	IncludeArchived  bool
	ArchivedOnly     bool
	External         *bool
	SourceRemoved    *bool
}

// Get returns the single record with the given uuid.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM migrations WHERE uuid = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: no migration with uuid %s", migerr.NotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", migerr.StorageUnavailable, err)
	}
	return rec, nil
}

// Lookup returns the non-archived record for (resourceType, sourceID), if any.
// It is the idempotency-gate primitive: callers check rec.Status.Migrated().
func (s *Store) Lookup(ctx context.Context, resourceType, sourceID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+` FROM migrations WHERE resource_type = ? AND source_id = ? AND archived = 0
			ORDER BY created_at DESC LIMIT 1`,
		resourceType, sourceID)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", migerr.StorageUnavailable, err)
	}
	return rec, nil
}

// Query returns records matching filters, newest first.
func (s *Store) Query(ctx context.Context, f Filters) ([]*Record, error) {
	var where []string
	var args []any

	if !f.IncludeArchived && !f.ArchivedOnly {
		where = append(where, "archived = 0")
	}
	if f.ArchivedOnly {
		where = append(where, "archived = 1")
	}
	if f.Service != "" {
		where = append(where, "service = ?")
		args = append(args, f.Service)
	}
	if f.ResourceType != "" {
		where = append(where, "resource_type = ?")
		args = append(args, f.ResourceType)
	}
	if f.SourceID != "" {
		where = append(where, "source_id = ?")
		args = append(args, f.SourceID)
	}
	if f.DestinationID != "" {
		where = append(where, "destination_id = ?")
		args = append(args, f.DestinationID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.External != nil {
		where = append(where, "external = ?")
		args = append(args, boolToInt(*f.External))
	}
	if f.SourceRemoved != nil {
		where = append(where, "source_removed = ?")
		args = append(args, boolToInt(*f.SourceRemoved))
	}

	query := selectColumns + " FROM migrations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying: %v", migerr.StorageUnavailable, err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning row: %v", migerr.StorageUnavailable, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

const selectColumns = `SELECT uuid, created_at, updated_at, service, resource_type, source_cloud,
	destination_cloud, source_id, destination_id, status, error_message, archived, source_removed, external`

// scanner matches both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	var status string
	var createdAt, updatedAt time.Time
	var archived, sourceRemoved, external int

	err := row.Scan(&rec.UUID, &createdAt, &updatedAt, &rec.Service, &rec.ResourceType, &rec.SourceCloud,
		&rec.DestinationCloud, &rec.SourceID, &rec.DestinationID, &status, &rec.ErrorMessage,
		&archived, &sourceRemoved, &external)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = createdAt
	rec.UpdatedAt = updatedAt
	rec.Status = normalizeStatus(status)
	rec.Archived = archived != 0
	rec.SourceRemoved = sourceRemoved != 0
	rec.External = external != 0
	return &rec, nil
}

// normalizeStatus maps any intermediate status observed in older Ledger
// files to PENDING_MEMBERS, per the spec's open-question resolution in §9:
// "Implementations should treat any other intermediate state observed in
// older Ledger files as equivalent to PENDING_MEMBERS on read."
func normalizeStatus(s string) Status {
	switch Status(s) {
	case StatusInProgress, StatusPendingMembers, StatusPendingCleanup,
		StatusCompleted, StatusFailed, StatusSourceCleanupFailed:
		return Status(s)
	default:
		return StatusPendingMembers
	}
}
