// Package handler defines the contract the migration core requires from
// every per-resource-type adapter. The core never implements a concrete
// handler itself; handlers are supplied by the caller (the CLI binary or
// an embedder) through the registry in internal/registry.
package handler

import "context"

// Dependency is produced by a handler to describe one prerequisite or
// member resource it refers to by source identifier.
type Dependency struct {
	ResourceType string
	SourceID     string
	// ShouldCleanup controls whether a cleanup-source pass may ask the
	// handler to delete this dependency from the source cloud. false means
	// the dependency is shared (e.g. a flavor referenced by many instances)
	// and must never be cleaned up cascadingly.
	ShouldCleanup bool
}

// Migrated is the migrated form of a Dependency: the core hands a list of
// these to Handler.Migrate so the handler can rewrite foreign references
// embedded in the body it is about to send to the destination cloud.
type Migrated struct {
	Dependency
	DestinationID string
}

// Key returns the (resource_type, source_id) pair identifying this
// dependency, usable as a map key for ID-map lookups.
func (d Dependency) Key() Key { return Key{ResourceType: d.ResourceType, SourceID: d.SourceID} }

// Key identifies a resource by (resource_type, source_id).
type Key struct {
	ResourceType string
	SourceID     string
}

// MigrateOptions are the per-call options the CLI's start/start-batch
// commands translate into (§4.E, §6).
type MigrateOptions struct {
	CleanupSource  bool
	IncludeDeps    bool
	IncludeMembers bool
	DryRun         bool
}

// SubMigrator is the narrow capability a handler uses to trigger an
// auxiliary migration of a resource it discovers while constructing its
// own destination body (§9 "handler<->core mutual reference"), e.g. the
// volume handler migrating an intermediate image it just uploaded. The
// Orchestrator implements this interface and is handed to handler
// constructors by the embedder; re-entry goes through the same
// idempotency gate as any other call.
type SubMigrator interface {
	SubMigrate(ctx context.Context, resourceType, sourceID string, opts MigrateOptions) (destinationID string, err error)
}

// Handler is the per-resource-type adapter the core drives. Implementations
// must never mutate the Ledger; must be idempotent in DeleteSource (a
// second call after a successful delete must not fail); must leave no
// destination side effects when Migrate fails; and must surface NotFound
// distinctly (via errors.Is against migerr.NotFound) when a source
// resource has vanished mid-migration.
type Handler interface {
	// ServiceTag is a short service name used for display/grouping (e.g. "cinder").
	ServiceTag() string

	// AssociatedTypes lists, statically, the resource types this handler
	// may refer to as prerequisites.
	AssociatedTypes() []string

	// MemberTypes lists, statically, the resource types this handler contains.
	MemberTypes() []string

	// SupportedFilters lists the query-key tags this handler accepts for
	// batch selection via ListIDs.
	SupportedFilters() []string

	// Associated returns the actual prerequisites of the instance
	// identified by sourceID, in a semantically meaningful order (e.g.
	// network before subnet).
	Associated(ctx context.Context, sourceID string) ([]Dependency, error)

	// Members returns the actual contained resources of the instance
	// identified by sourceID, in order.
	Members(ctx context.Context, sourceID string) ([]Dependency, error)

	// ListIDs enumerates source resource IDs matching filters, for batch migration.
	ListIDs(ctx context.Context, filters map[string]string) ([]string, error)

	// Migrate is the atomic per-handler create-on-destination step. It must
	// wait, with its own configured timeout/poll interval, for a terminal
	// destination-side status before returning, and must clean up any
	// partial destination state on its own failure.
	Migrate(ctx context.Context, sourceID string, deps []Migrated) (destinationID string, err error)

	// ConnectMembers runs, optionally, after all members of a parent have
	// been migrated (e.g. attach interfaces to a router). A failure here is
	// logged by the caller but never fails the parent.
	ConnectMembers(ctx context.Context, parentDestinationID string, members []Migrated) error

	// DeleteSource removes the resource from the source cloud. Must be
	// idempotent: a second call after a successful delete must not fail.
	DeleteSource(ctx context.Context, sourceID string) error
}
