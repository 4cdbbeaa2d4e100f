package testutils

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes an unversioned Loam
// repository in it. Extra options are applied after the defaults.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	tmpDir := t.TempDir()

	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	all := append([]loam.Option{loam.WithVersioning(false)}, opts...)
	repo, err := loam.Init(absPath, all...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}
