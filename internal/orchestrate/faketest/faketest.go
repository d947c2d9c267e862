// Package faketest provides an in-memory handler.Handler used to drive
// Orchestrator tests without talking to any real cloud.
package faketest

import (
	"context"
	"fmt"
	"sync"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/handler"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

// Resource is one fake source-side resource: its static dependency/member
// lists and the scripted failures a test wants to inject.
type Resource struct {
	Associated []handler.Dependency
	Members    []handler.Dependency

	FailMigrate     error
	FailDeleteSource error
}

// Handler is a scriptable, in-memory handler.Handler. It is safe for
// sequential use by a single Orchestrator the way the core itself drives
// handlers.
type Handler struct {
	Tag string

	mu            sync.Mutex
	resources     map[string]*Resource
	MigrateCalls  []string
	DeletedIDs    []string
	ConnectedWith map[string][]handler.Migrated
	nextSuffix    int
}

// New builds a Handler whose ServiceTag is tag, with empty
// AssociatedTypes/MemberTypes, SupportedFilters of {"name"}, and no
// resources registered yet.
func New(tag string) *Handler {
	return &Handler{
		Tag:           tag,
		resources:     make(map[string]*Resource),
		ConnectedWith: make(map[string][]handler.Migrated),
	}
}

// Add registers a fake resource at sourceID.
func (h *Handler) Add(sourceID string, r Resource) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resources[sourceID] = &r
}

func (h *Handler) ServiceTag() string          { return h.Tag }
func (h *Handler) AssociatedTypes() []string    { return nil }
func (h *Handler) MemberTypes() []string        { return nil }
func (h *Handler) SupportedFilters() []string   { return []string{"name"} }

func (h *Handler) Associated(_ context.Context, sourceID string) ([]handler.Dependency, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.resources[sourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no fake resource registered", migerr.NotFound, sourceID)
	}
	return append([]handler.Dependency(nil), r.Associated...), nil
}

func (h *Handler) Members(_ context.Context, sourceID string) ([]handler.Dependency, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.resources[sourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no fake resource registered", migerr.NotFound, sourceID)
	}
	return append([]handler.Dependency(nil), r.Members...), nil
}

func (h *Handler) ListIDs(_ context.Context, filters map[string]string) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var ids []string
	for id := range h.resources {
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *Handler) Migrate(_ context.Context, sourceID string, deps []handler.Migrated) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.MigrateCalls = append(h.MigrateCalls, sourceID)
	r, ok := h.resources[sourceID]
	if !ok {
		return "", fmt.Errorf("%w: %s has no fake resource registered", migerr.NotFound, sourceID)
	}
	if r.FailMigrate != nil {
		return "", r.FailMigrate
	}
	h.nextSuffix++
	return fmt.Sprintf("%s-dst-%d", sourceID, h.nextSuffix), nil
}

func (h *Handler) ConnectMembers(_ context.Context, parentDestinationID string, members []handler.Migrated) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ConnectedWith[parentDestinationID] = members
	return nil
}

func (h *Handler) DeleteSource(_ context.Context, sourceID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.resources[sourceID]
	if ok && r.FailDeleteSource != nil {
		return r.FailDeleteSource
	}
	h.DeletedIDs = append(h.DeletedIDs, sourceID)
	return nil
}
