package credentials_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunbeamcloud/sunbeam-migrate/internal/credentials"
)

func TestLoadAndCloud(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clouds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clouds:\n  src:\n    auth:\n      auth_url: https://src.example/v3\n"), 0o644))

	f, err := credentials.Load(path)
	require.NoError(t, err)

	cloud, ok := f.Cloud("src")
	require.True(t, ok)
	require.NotNil(t, cloud["auth"])

	_, ok = f.Cloud("missing")
	require.False(t, ok)
}
