//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gopkg.in/yaml.v3"

	"github.com/CheerlessCloud/veendor/internal/adapters"
	"github.com/CheerlessCloud/veendor/internal/backends"
	"github.com/CheerlessCloud/veendor/internal/types"
	"github.com/CheerlessCloud/veendor/tests/testutil"
)

const redisTestHash = "1111111111111111111111111111111111111111111111111111111111111111"

func startRedis(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	addr := fmt.Sprintf("%s:%s", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return addr, cleanup
}

func redisBackendConfig(t *testing.T, addr string) types.BackendConfig {
	t.Helper()
	content := fmt.Sprintf("alias: cache\nbackend: redis\npush: true\noptions:\n  addr: %s\n  ping: true\n", addr)
	var entry types.BackendConfig
	require.NoError(t, yaml.Unmarshal([]byte(content), &entry))
	return entry
}

func TestRedisBackendRoundTripWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers integration in short mode")
	}

	ctx := t.Context()
	addr, cleanup := startRedis(ctx, t)
	t.Cleanup(cleanup)

	runner := adapters.NewProcessRunnerAdapter()
	archive := adapters.NewTarRunnerAdapter(runner)
	backend, err := backends.NewRedisBackend(redisBackendConfig(t, addr), archive)
	require.NoError(t, err)
	require.NoError(t, backend.ValidateOptions(ctx))

	projectDir := testutil.WriteProject(t, map[string]string{"foo": "1.0.0"}, nil)
	testutil.WriteTree(t, projectDir, "redis-roundtrip")

	require.NoError(t, backend.Push(ctx, redisTestHash, projectDir, t.TempDir()))

	// The same fingerprint cannot be pushed twice.
	err = backend.Push(ctx, redisTestHash, projectDir, t.TempDir())
	require.Error(t, err)
	assert.True(t, types.IsBundleAlreadyExists(err))

	cacheDir := t.TempDir()
	require.NoError(t, backend.Pull(ctx, redisTestHash, cacheDir))
	data, err := os.ReadFile(filepath.Join(cacheDir, types.NodeModules, "origin.txt"))
	require.NoError(t, err)
	assert.Equal(t, "redis-roundtrip", string(data))

	// A fingerprint nobody pushed is a clean miss.
	err = backend.Pull(ctx, "2222222222222222222222222222222222222222222222222222222222222222", t.TempDir())
	require.Error(t, err)
	assert.True(t, types.IsBundleNotFound(err))
}
