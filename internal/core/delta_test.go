package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheerlessCloud/veendor/internal/types"
)

func TestReconcileInstallsChangedVersions(t *testing.T) {
	npm := &fakeNpm{}
	engine := Engine{Npm: npm}

	old := types.Manifest{
		Dependencies:    map[string]string{"foo": "2.2.8", "c": "2.1.8"},
		DevDependencies: map[string]string{"baz": "6.6.6-dev"},
	}
	current := types.Manifest{
		Dependencies:    map[string]string{"foo": "2.2.8", "c": "2.2.9"},
		DevDependencies: map[string]string{"baz": "6.6.6-dev"},
	}

	require.NoError(t, engine.Reconcile(t.Context(), old, current, t.TempDir()))
	require.Len(t, npm.installs, 1)
	assert.Equal(t, map[string]string{"c": "2.2.9"}, npm.installs[0])
	assert.Empty(t, npm.uninstalls)
}

func TestReconcileUninstallsDroppedPackages(t *testing.T) {
	npm := &fakeNpm{}
	engine := Engine{Npm: npm}

	old := types.Manifest{
		Dependencies:    map[string]string{"foo": "2.2.8", "c": "2.1.8"},
		DevDependencies: map[string]string{"baz": "6.6.6-dev"},
	}
	current := types.Manifest{
		Dependencies:    map[string]string{"foo": "2.2.8"},
		DevDependencies: map[string]string{"baz": "6.6.6-dev"},
	}

	require.NoError(t, engine.Reconcile(t.Context(), old, current, t.TempDir()))
	assert.Empty(t, npm.installs)
	require.Len(t, npm.uninstalls, 1)
	assert.Equal(t, []string{"c"}, npm.uninstalls[0])
}

func TestReconcileInstallsBeforeUninstalls(t *testing.T) {
	npm := &fakeNpm{}
	engine := Engine{Npm: npm}

	old := types.Manifest{
		Dependencies:    map[string]string{"keep": "1.0.0", "drop": "1.0.0"},
		DevDependencies: map[string]string{},
	}
	current := types.Manifest{
		Dependencies:    map[string]string{"keep": "2.0.0"},
		DevDependencies: map[string]string{},
	}

	require.NoError(t, engine.Reconcile(t.Context(), old, current, t.TempDir()))
	assert.Equal(t, []string{"install", "uninstall"}, npm.sequence)
}

func TestReconcileRuntimeWinsOverDev(t *testing.T) {
	npm := &fakeNpm{}
	engine := Engine{Npm: npm}

	// The dev entry for "a" is shadowed by the runtime entry, so the
	// old effective version is 2.0.0 and only the bump to 3.0.0 counts.
	old := types.Manifest{
		Dependencies:    map[string]string{"a": "2.0.0"},
		DevDependencies: map[string]string{"a": "1.0.0"},
	}
	current := types.Manifest{
		Dependencies:    map[string]string{"a": "3.0.0"},
		DevDependencies: map[string]string{"a": "1.0.0"},
	}

	require.NoError(t, engine.Reconcile(t.Context(), old, current, t.TempDir()))
	require.Len(t, npm.installs, 1)
	assert.Equal(t, map[string]string{"a": "3.0.0"}, npm.installs[0])
	assert.Empty(t, npm.uninstalls)
}
