package backends

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/CheerlessCloud/veendor/internal/types"
)

// markerArchive stands in for the tar runner: Create captures the tree's
// marker file into the archive file, Extract restores it. Round-trips
// behave like the real thing without shelling out.
type markerArchive struct{}

func (markerArchive) Create(_ context.Context, archivePath string, dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, types.NodeModules, "origin.txt"))
	if err != nil {
		return err
	}
	return os.WriteFile(archivePath, data, 0644)
}

func (markerArchive) Extract(_ context.Context, archivePath string, destDir string) error {
	data, err := os.ReadFile(archivePath)
	if err != nil {
		return err
	}
	treeDir := filepath.Join(destDir, types.NodeModules)
	if err := os.MkdirAll(treeDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(treeDir, "origin.txt"), data, 0644)
}

func backendConfig(t *testing.T, alias string, kind string, options map[string]any) types.BackendConfig {
	t.Helper()
	entry := types.BackendConfig{Alias: alias, Backend: kind}
	if options != nil {
		data, err := yaml.Marshal(options)
		require.NoError(t, err)
		var node yaml.Node
		require.NoError(t, yaml.Unmarshal(data, &node))
		if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
			entry.Options = *node.Content[0]
		}
	}
	return entry
}

func writeProjectTree(t *testing.T, marker string) string {
	t.Helper()
	dir := t.TempDir()
	treeDir := filepath.Join(dir, types.NodeModules)
	require.NoError(t, os.MkdirAll(treeDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(treeDir, "origin.txt"), []byte(marker), 0644))
	return dir
}
