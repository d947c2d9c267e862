// Package ledger is the durable, single-writer record store of migration
// attempts (§3, §4.A of the spec): a single SQLite file guarded by a
// coarse process-level file lock, written through by the Orchestrator
// alone.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/logging"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

const schema = `
CREATE TABLE IF NOT EXISTS migrations (
	uuid               TEXT PRIMARY KEY,
	created_at         DATETIME NOT NULL,
	updated_at         DATETIME NOT NULL,
	service            TEXT NOT NULL DEFAULT '',
	resource_type      TEXT NOT NULL,
	source_cloud       TEXT NOT NULL DEFAULT '',
	destination_cloud  TEXT NOT NULL DEFAULT '',
	source_id          TEXT NOT NULL,
	destination_id     TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL,
	error_message      TEXT NOT NULL DEFAULT '',
	archived           INTEGER NOT NULL DEFAULT 0,
	source_removed     INTEGER NOT NULL DEFAULT 0,
	external           INTEGER NOT NULL DEFAULT 0
);

-- invariant 5: at most one active (non-archived) LIST_MIGRATED record per (type, source_id)
CREATE UNIQUE INDEX IF NOT EXISTS idx_migrations_active_migrated
	ON migrations(resource_type, source_id)
	WHERE archived = 0 AND status IN ('PENDING_MEMBERS', 'PENDING_CLEANUP', 'COMPLETED');

CREATE INDEX IF NOT EXISTS idx_migrations_lookup
	ON migrations(resource_type, source_id, archived);
`

// Store is the Ledger. It owns a single sqlite connection guarded by a
// file lock taken at process start; concurrent sunbeam-migrate invocations
// against the same store are not supported beyond the coarse lock (§4.A).
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open acquires the process lock and opens (creating if absent) the Ledger
// at path, applying its schema.
func Open(ctx context.Context, path string) (*Store, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, 200*time.Millisecond)
	if err != nil || !locked {
		return nil, fmt.Errorf("%w: acquiring lock on %s: %v", migerr.StorageUnavailable, path, err)
	}

	db, err := sql.Open("sqlite3", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)")
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("%w: opening %s: %v", migerr.StorageUnavailable, path, err)
	}
	db.SetMaxOpenConns(1) // single-writer store; serialize all access through one connection

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("%w: applying schema: %v", migerr.StorageUnavailable, err)
	}

	return &Store{db: db, lock: lock, path: path}, nil
}

// Close releases the database connection and the process lock.
func (s *Store) Close() error {
	err := s.db.Close()
	if uerr := s.lock.Unlock(); uerr != nil && err == nil {
		err = uerr
	}
	return err
}

// Save upserts record. If UUID is unset a fresh one is assigned. UpdatedAt
// is always refreshed. Durable before return (sqlite commit + synchronous=FULL).
func (s *Store) Save(ctx context.Context, rec *Record) error {
	now := time.Now().UTC()
	if rec.UUID == "" {
		rec.UUID = uuid.NewString()
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO migrations (
			uuid, created_at, updated_at, service, resource_type, source_cloud,
			destination_cloud, source_id, destination_id, status, error_message,
			archived, source_removed, external
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(uuid) DO UPDATE SET
			updated_at = excluded.updated_at,
			service = excluded.service,
			resource_type = excluded.resource_type,
			source_cloud = excluded.source_cloud,
			destination_cloud = excluded.destination_cloud,
			source_id = excluded.source_id,
			destination_id = excluded.destination_id,
			status = excluded.status,
			error_message = excluded.error_message,
			archived = excluded.archived,
			source_removed = excluded.source_removed,
			external = excluded.external
	`,
		rec.UUID, rec.CreatedAt, rec.UpdatedAt, rec.Service, rec.ResourceType, rec.SourceCloud,
		rec.DestinationCloud, rec.SourceID, rec.DestinationID, string(rec.Status), rec.ErrorMessage,
		boolToInt(rec.Archived), boolToInt(rec.SourceRemoved), boolToInt(rec.External),
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Prefer the active record on an archived-vs-active clash; surface a warning.
			logging.Default().Warn("ledger unique violation on active-migrated index; keeping existing active record",
				slog.String("resource_type", rec.ResourceType), slog.String("source_id", rec.SourceID), slog.String("error", err.Error()))
			return fmt.Errorf("%w: %v", migerr.InvariantViolation, err)
		}
		return fmt.Errorf("%w: saving record: %v", migerr.StorageUnavailable, err)
	}
	return nil
}

// Delete permanently removes a record (administrative).
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM migrations WHERE uuid = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting %s: %v", migerr.StorageUnavailable, id, err)
	}
	return requireAffected(res, id)
}

// Archive sets archived=true on a record, hiding it from default queries.
func (s *Store) Archive(ctx context.Context, id string) error { return s.setArchived(ctx, id, true) }

// Unarchive sets archived=false on a record.
func (s *Store) Unarchive(ctx context.Context, id string) error { return s.setArchived(ctx, id, false) }

func (s *Store) setArchived(ctx context.Context, id string, archived bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE migrations SET archived = ?, updated_at = ? WHERE uuid = ?`,
		boolToInt(archived), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("%w: archiving %s: %v", migerr.StorageUnavailable, id, err)
	}
	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", migerr.StorageUnavailable, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: no migration with uuid %s", migerr.InvalidInput, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed") || strings.Contains(err.Error(), "constraint violation")
}
