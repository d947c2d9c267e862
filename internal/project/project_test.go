package project_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/handler"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/migerr"
	"github.com/sunbeamcloud/sunbeam-migrate/internal/project"
)

func TestBuildAndDestinationID(t *testing.T) {
	m := project.Build([]handler.Migrated{
		{Dependency: handler.Dependency{ResourceType: "network", SourceID: "net-1"}, DestinationID: "net-1-dst"},
	})

	id, err := m.DestinationID("network", "net-1")
	require.NoError(t, err)
	require.Equal(t, "net-1-dst", id)
}

func TestDestinationIDMissIsMissingDependency(t *testing.T) {
	m := project.Build(nil)
	_, err := m.DestinationID("network", "net-1")
	require.ErrorIs(t, err, migerr.MissingDependency)
}
