// Package testutil provides shared test helpers used across integration
// and unit test packages.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CheerlessCloud/veendor/internal/types"
)

// WriteProject lays out a minimal project directory: a package.json with
// the given dependency maps.
func WriteProject(t *testing.T, deps map[string]string, devDeps map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	data, err := json.Marshal(map[string]any{
		"name":            "fixture",
		"dependencies":    deps,
		"devDependencies": devDeps,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, types.ManifestName), data, 0644))
	return dir
}

// WriteTree populates dir/node_modules with a marker file so tests can
// recognize the tree after a round-trip.
func WriteTree(t *testing.T, dir string, marker string) {
	t.Helper()
	treeDir := filepath.Join(dir, types.NodeModules)
	require.NoError(t, os.MkdirAll(treeDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(treeDir, "origin.txt"), []byte(marker), 0644))
}
