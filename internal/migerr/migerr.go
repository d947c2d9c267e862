// Package migerr models the error taxonomy of the migration core as
// sentinel values wrapped with context, so callers can branch with
// errors.Is instead of parsing messages.
package migerr

import "errors"

var (
	// InvalidInput is a user-visible misuse: unknown resource type, bad
	// filter syntax. Surfaced; no Ledger write.
	InvalidInput = errors.New("invalid input")

	// NotFound means a source resource referenced, by the user or by a
	// handler's dependency walk, does not exist.
	NotFound = errors.New("not found")

	// DependenciesPending means include_dependencies=false and
	// prerequisites are missing.
	DependenciesPending = errors.New("dependencies pending")

	// HandlerFailure wraps anything raised by handler.Migrate.
	HandlerFailure = errors.New("handler failure")

	// SourceCleanupFailed wraps anything raised by handler.DeleteSource.
	SourceCleanupFailed = errors.New("source cleanup failed")

	// InvariantViolation signals a Ledger-vs-Resolver disagreement: a
	// dependency cycle, or a LIST_MIGRATED record missing its destination_id.
	InvariantViolation = errors.New("invariant violation")

	// StorageUnavailable means the Ledger is inaccessible; abort the process.
	StorageUnavailable = errors.New("storage unavailable")

	// ConcurrentOrStuck means an IN_PROGRESS record was encountered for a
	// dependency that is not an ancestor of the current call stack.
	ConcurrentOrStuck = errors.New("concurrent or stuck migration")

	// UnsupportedType means the handler registry has no handler for a
	// requested resource type.
	UnsupportedType = errors.New("unsupported resource type")

	// MissingDependency means the Projector could not find a destination_id
	// for a dependency the Resolver reported as already migrated — a
	// Ledger corruption indicator.
	MissingDependency = errors.New("missing dependency destination id")

	// InvalidFilter means a batch filter key is not in a handler's
	// SupportedFilters().
	InvalidFilter = errors.New("invalid filter")
)
