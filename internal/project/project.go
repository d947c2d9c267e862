// Package project implements the ID-Mapping Projector (§4.D): a thin
// lookup helper handlers use to rewrite foreign references when
// constructing a destination-side resource body.
package project

import (
	"fmt"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/handler"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
)

// Map is the ID-map the core builds for each resource being migrated: the
// set of (resource_type, source_id, destination_id) triples its handler
// needs to rewrite foreign references, keyed by (resource_type, source_id).
type Map struct {
	byKey map[handler.Key]string
}

// Build assembles a Map from a list of migrated-dependency descriptors.
func Build(migrated []handler.Migrated) Map {
	m := Map{byKey: make(map[handler.Key]string, len(migrated))}
	for _, dep := range migrated {
		m.byKey[dep.Key()] = dep.DestinationID
	}
	return m
}

// DestinationID looks up the destination identifier to substitute for
// (resourceType, sourceID). It returns MissingDependency, rather than a
// sentinel string, if the pair is absent — the Resolver saw it as migrated
// but no destination_id is on file, a Ledger corruption indicator.
func (m Map) DestinationID(resourceType, sourceID string) (string, error) {
	id, ok := m.byKey[handler.Key{ResourceType: resourceType, SourceID: sourceID}]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", migerr.MissingDependency, resourceType, sourceID)
	}
	return id, nil
}
