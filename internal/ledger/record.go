package ledger

import "time"

// Status is the Ledger record lifecycle state (§3, §4.E of the spec).
type Status string

const (
	StatusInProgress          Status = "IN_PROGRESS"
	StatusPendingMembers      Status = "PENDING_MEMBERS"
	StatusPendingCleanup      Status = "PENDING_CLEANUP"
	StatusCompleted           Status = "COMPLETED"
	StatusFailed              Status = "FAILED"
	StatusSourceCleanupFailed Status = "SOURCE_CLEANUP_FAILED"
)

// Migrated reports whether status belongs to LIST_MIGRATED: the set of
// statuses considered "migrated" for dependency-partition purposes.
func (s Status) Migrated() bool {
	switch s {
	case StatusPendingMembers, StatusPendingCleanup, StatusCompleted:
		return true
	default:
		return false
	}
}

// Terminal reports whether status is one of the state machine's terminal states.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusSourceCleanupFailed:
		return true
	default:
		return false
	}
}

// Record is one row of the Ledger: a single migration attempt for the pair
// (resource_type, source_id).
type Record struct {
	UUID      string
	CreatedAt time.Time
	UpdatedAt time.Time

	Service           string
	ResourceType      string
	SourceCloud       string
	DestinationCloud  string

	SourceID      string
	DestinationID string

	Status       Status
	ErrorMessage string

	Archived       bool
	SourceRemoved  bool
	External       bool
}
