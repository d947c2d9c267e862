// Package handlers is the registration point concrete per-resource-type
// adapters plug into. The adapters themselves (cinder volumes, neutron
// networks, keystone projects, ...) are out of this repository's scope —
// spec §1 treats them as external collaborators "specified only through
// the interface the core requires" (internal/handler.Handler). A
// deployment wires its adapters by calling Register from an init() in its
// own package and blank-importing that package from cmd/sunbeam-migrate,
// the same self-registration shape the teacher's CLI commands use for
// rootCmd.AddCommand.
package handlers

import "github.com/sunbeamcloud/sunbeam-migrate/internal/handler"

var registered = map[string]handler.Handler{}

// Register adds a handler for resourceType. Intended to be called from an
// init() function in an adapter package; panics on a duplicate
// registration since that indicates a build-time wiring mistake, not a
// runtime condition.
func Register(resourceType string, h handler.Handler) {
	if _, exists := registered[resourceType]; exists {
		panic("handlers: duplicate registration for resource type " + resourceType)
	}
	registered[resourceType] = h
}

// Registered returns a copy of every handler registered so far, for
// building an internal/registry.Registry.
func Registered() map[string]handler.Handler {
	out := make(map[string]handler.Handler, len(registered))
	for k, v := range registered {
		out[k] = v
	}
	return out
}
