package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/config"
)

func TestLoadAppliesDefaultsWithoutEnvVar(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "sunbeam-migrate.db", cfg.DatabaseFile)
	require.Equal(t, "info", cfg.LogLevel)
	require.True(t, cfg.LogConsole)
}

func TestLoadReadsFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source_cloud_name: src\ndestination_cloud_name: dst\ncloud_config_file: clouds.yaml\ndatabase_file: custom.db\n"), 0o644))

	t.Setenv(config.EnvVar, path)
	t.Setenv("SUNBEAM_MIGRATE_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "custom.db", cfg.DatabaseFile)
	require.Equal(t, "src", cfg.SourceCloudName)
	require.Equal(t, "debug", cfg.LogLevel)
	require.NoError(t, cfg.RequireMigrationFields())
}

func TestRequireMigrationFieldsReportsMissing(t *testing.T) {
	cfg := &config.Config{}
	err := cfg.RequireMigrationFields()
	require.Error(t, err)
	require.Contains(t, err.Error(), "source_cloud_name")
	require.Contains(t, err.Error(), "destination_cloud_name")
	require.Contains(t, err.Error(), "cloud_config_file")
}
