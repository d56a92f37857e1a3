package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/types"
)

func TestInstallPullsFromFirstBackendThatHasTheBundle(t *testing.T) {
	dir := t.TempDir()
	manifest := writeManifest(t, dir, map[string]string{"foo": "1.0.0"}, nil)
	hash := mustHash(t, manifest)

	first := newFakeBackend("b0")
	second := newFakeBackend("b1", hash)
	third := newFakeBackend("b2", hash)

	engine := newTestEngine(t, &fakeVCS{}, &fakeNpm{}, &fakeSync{})
	err := engine.Install(t.Context(), InstallRequest{
		Dir:   dir,
		Chain: []ports.ConfiguredBackend{configured(first, true), configured(second, true), configured(third, true)},
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, types.NodeModules, "origin.txt"))
	require.NoError(t, err)
	assert.Equal(t, "b1:"+hash, string(content))

	// The miss before the hit is repaired; the backend after the hit
	// was never consulted.
	assert.Equal(t, []string{hash}, first.pushCalls)
	assert.Empty(t, second.pushCalls)
	assert.Empty(t, third.pullCalls)
	assert.Empty(t, third.pushCalls)
}

func TestInstallChainExhaustedWithoutFallback(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, map[string]string{"foo": "1.0.0"}, nil)

	backend := newFakeBackend("b0")
	npm := &fakeNpm{}
	engine := newTestEngine(t, &fakeVCS{}, npm, &fakeSync{})
	err := engine.Install(t.Context(), InstallRequest{
		Dir:   dir,
		Chain: []ports.ConfiguredBackend{configured(backend, true)},
	})

	require.Error(t, err)
	assert.True(t, types.IsBundlesNotFound(err))
	assert.Zero(t, npm.installAlls)
	assert.Empty(t, backend.pushCalls)
	assert.NoDirExists(t, filepath.Join(dir, types.NodeModules))
}

func TestInstallAbortsChainOnBackendError(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, map[string]string{"foo": "1.0.0"}, nil)

	broken := newFakeBackend("b0")
	broken.pullErr = types.ErrBackend("b0", "boom", nil)
	next := newFakeBackend("b1")

	engine := newTestEngine(t, &fakeVCS{}, &fakeNpm{}, &fakeSync{})
	err := engine.Install(t.Context(), InstallRequest{
		Dir:   dir,
		Chain: []ports.ConfiguredBackend{configured(broken, true), configured(next, true)},
	})

	require.Error(t, err)
	assert.False(t, types.IsBundlesNotFound(err))
	assert.Empty(t, next.pullCalls)
}
