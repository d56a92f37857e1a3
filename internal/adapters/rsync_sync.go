package adapters

import (
	"context"
	"os/exec"
	"sync"
	"time"

	"github.com/CheerlessCloud/veendor/internal/ports"
)

const defaultRsyncTimeout = 10 * time.Minute

// RsyncSyncAdapter merges trees with rsync when it is installed. The
// availability probe runs once per process.
type RsyncSyncAdapter struct {
	Runner ports.ProcessRunner

	probeOnce *sync.Once
	available *bool
}

func NewRsyncSyncAdapter(runner ports.ProcessRunner) *RsyncSyncAdapter {
	return &RsyncSyncAdapter{
		Runner:    runner,
		probeOnce: &sync.Once{},
		available: new(bool),
	}
}

func (a *RsyncSyncAdapter) Available(_ context.Context) bool {
	a.probeOnce.Do(func() {
		_, err := exec.LookPath("rsync")
		*a.available = err == nil
	})
	return *a.available
}

// Sync makes destDir identical to srcDir, deleting extraneous files so
// the result is exactly the pulled bundle while unchanged files are
// reused in place.
func (a *RsyncSyncAdapter) Sync(ctx context.Context, srcDir string, destDir string) error {
	_, err := a.Runner.Run(ctx, "", defaultRsyncTimeout, "rsync", "-a", "--delete", srcDir+"/", destDir+"/")
	return err
}

var _ ports.TreeSync = (*RsyncSyncAdapter)(nil)
