// Package registry is the static mapping from resource-type tag to handler
// (§4.B of the spec). It is read-only after process start.
package registry

import (
	"fmt"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/handler"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

// Registry maps resource-type tags to their Handler.
type Registry struct {
	handlers map[string]handler.Handler
}

// New builds a Registry from a resource-type -> Handler map. The map is
// copied; the returned Registry is immutable thereafter.
func New(handlers map[string]handler.Handler) *Registry {
	r := &Registry{handlers: make(map[string]handler.Handler, len(handlers))}
	for t, h := range handlers {
		r.handlers[t] = h
	}
	return r
}

// Get returns the handler for resourceType, or UnsupportedType if none is registered.
func (r *Registry) Get(resourceType string) (handler.Handler, error) {
	h, ok := r.handlers[resourceType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", migerr.UnsupportedType, resourceType)
	}
	return h, nil
}

// Types returns every registered resource-type tag.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	return out
}

// Capability is the static metadata the `capabilities` CLI command reports.
type Capability struct {
	ResourceType     string
	ServiceTag       string
	AssociatedTypes  []string
	MemberTypes      []string
	SupportedFilters []string
}

// Capabilities returns the static metadata for every registered type, or
// just resourceType if non-empty.
func (r *Registry) Capabilities(resourceType string) ([]Capability, error) {
	if resourceType != "" {
		h, err := r.Get(resourceType)
		if err != nil {
			return nil, err
		}
		return []Capability{capabilityOf(resourceType, h)}, nil
	}
	out := make([]Capability, 0, len(r.handlers))
	for t, h := range r.handlers {
		out = append(out, capabilityOf(t, h))
	}
	return out, nil
}

func capabilityOf(resourceType string, h handler.Handler) Capability {
	return Capability{
		ResourceType:     resourceType,
		ServiceTag:       h.ServiceTag(),
		AssociatedTypes:  h.AssociatedTypes(),
		MemberTypes:      h.MemberTypes(),
		SupportedFilters: h.SupportedFilters(),
	}
}
