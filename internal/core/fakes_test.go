package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/types"
)

// fakeBackend holds bundles in memory and materializes a marker file so
// tests can tell which backend served a pull.
type fakeBackend struct {
	alias string
	has   map[string]bool

	pullCalls []string
	pushCalls []string

	pullErr error
	// pushErrs is consumed one entry per push attempt before the
	// default behavior applies.
	pushErrs []error
	// claimOnConflict simulates the concurrent writer: after a
	// conflicting push attempt the backend holds the bundle.
	claimOnConflict bool
}

func newFakeBackend(alias string, hashes ...string) *fakeBackend {
	has := map[string]bool{}
	for _, hash := range hashes {
		has[hash] = true
	}
	return &fakeBackend{alias: alias, has: has}
}

func (b *fakeBackend) Pull(_ context.Context, hash string, cacheDir string) error {
	b.pullCalls = append(b.pullCalls, hash)
	if b.pullErr != nil {
		return b.pullErr
	}
	if !b.has[hash] {
		return types.ErrBundleNotFound(b.alias, hash)
	}
	treeDir := filepath.Join(cacheDir, types.NodeModules)
	if err := os.MkdirAll(treeDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(treeDir, "origin.txt"), []byte(b.alias+":"+hash), 0644)
}

func (b *fakeBackend) Push(_ context.Context, hash string, _ string, _ string) error {
	b.pushCalls = append(b.pushCalls, hash)
	if len(b.pushErrs) > 0 {
		err := b.pushErrs[0]
		b.pushErrs = b.pushErrs[1:]
		if b.claimOnConflict && types.IsBundleAlreadyExists(err) {
			b.has[hash] = true
		}
		return err
	}
	if b.has[hash] {
		return types.ErrBundleAlreadyExists(b.alias, hash)
	}
	b.has[hash] = true
	return nil
}

func (b *fakeBackend) ValidateOptions(_ context.Context) error {
	return nil
}

func configured(backend *fakeBackend, push bool) ports.ConfiguredBackend {
	return ports.ConfiguredBackend{
		Alias:   backend.alias,
		Push:    push,
		Backend: backend,
	}
}

type fakeNpm struct {
	installs    []map[string]string
	uninstalls  [][]string
	installAlls int
	// sequence records call ordering across the three operations.
	sequence []string

	installErr error
	allErr     error
}

func (n *fakeNpm) Install(_ context.Context, _ string, deps map[string]string) error {
	n.installs = append(n.installs, deps)
	n.sequence = append(n.sequence, "install")
	return n.installErr
}

func (n *fakeNpm) Uninstall(_ context.Context, _ string, names []string) error {
	n.uninstalls = append(n.uninstalls, names)
	n.sequence = append(n.sequence, "uninstall")
	return nil
}

func (n *fakeNpm) InstallAll(_ context.Context, dir string) error {
	n.installAlls++
	n.sequence = append(n.sequence, "installAll")
	if n.allErr != nil {
		return n.allErr
	}
	treeDir := filepath.Join(dir, types.NodeModules)
	if err := os.MkdirAll(treeDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(treeDir, "origin.txt"), []byte("npm"), 0644)
}

// fakeVCS serves manifest revisions from memory. revisions[0] is one
// commit back, revisions[1] two commits back, and so on.
type fakeVCS struct {
	repo      bool
	revisions [][]byte
}

func (v *fakeVCS) IsRepo(_ context.Context, _ string) bool {
	return v.repo
}

func (v *fakeVCS) IsTracked(_ context.Context, _ string, _ string) (bool, error) {
	return false, nil
}

func (v *fakeVCS) FileAtRevision(_ context.Context, _ string, path string, back int) ([]byte, error) {
	if path != types.ManifestName || back < 1 || back > len(v.revisions) {
		return nil, types.ErrBundleNotFound("history", path)
	}
	return v.revisions[back-1], nil
}

type fakeSync struct {
	available bool
	syncs     int
}

func (s *fakeSync) Available(_ context.Context) bool {
	return s.available
}

func (s *fakeSync) Sync(_ context.Context, srcDir string, destDir string) error {
	s.syncs++
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(srcDir, entry.Name()))
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(destDir, entry.Name()), data, 0644); err != nil {
			return err
		}
	}
	return nil
}

func manifestJSON(t *testing.T, deps map[string]string, devDeps map[string]string) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"name":            "fixture",
		"dependencies":    deps,
		"devDependencies": devDeps,
	})
	require.NoError(t, err)
	return data
}

func writeManifest(t *testing.T, dir string, deps map[string]string, devDeps map[string]string) types.Manifest {
	t.Helper()
	data := manifestJSON(t, deps, devDeps)
	require.NoError(t, os.WriteFile(filepath.Join(dir, types.ManifestName), data, 0644))
	manifest, err := types.ParseManifest(data)
	require.NoError(t, err)
	return manifest
}

func mustHash(t *testing.T, manifest types.Manifest) string {
	t.Helper()
	hash, err := Hash(manifest, nil, nil)
	require.NoError(t, err)
	return hash
}
