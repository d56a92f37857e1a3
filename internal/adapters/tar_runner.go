package adapters

import (
	"context"
	"time"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/types"
)

const defaultTarTimeout = 10 * time.Minute

// TarRunnerAdapter serializes dependency trees as gzipped tarballs via
// the system tar.
type TarRunnerAdapter struct {
	Runner ports.ProcessRunner
}

func NewTarRunnerAdapter(runner ports.ProcessRunner) TarRunnerAdapter {
	return TarRunnerAdapter{Runner: runner}
}

// Create archives dir/node_modules into archivePath.
func (a TarRunnerAdapter) Create(ctx context.Context, archivePath string, dir string) error {
	_, err := a.Runner.Run(ctx, dir, defaultTarTimeout, "tar", "-czf", archivePath, types.NodeModules)
	return err
}

// Extract unpacks archivePath into destDir, yielding destDir/node_modules.
func (a TarRunnerAdapter) Extract(ctx context.Context, archivePath string, destDir string) error {
	_, err := a.Runner.Run(ctx, destDir, defaultTarTimeout, "tar", "-xzf", archivePath, "-C", destDir)
	return err
}

var _ ports.Archive = TarRunnerAdapter{}
