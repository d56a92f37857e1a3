package adapters

import (
	"context"
	"sort"
	"time"

	"github.com/CheerlessCloud/veendor/internal/ports"
)

const defaultNpmTimeout = 20 * time.Minute

// NpmRunnerAdapter drives npm inside a project directory.
type NpmRunnerAdapter struct {
	Runner  ports.ProcessRunner
	Timeout time.Duration
}

func NewNpmRunnerAdapter(runner ports.ProcessRunner) NpmRunnerAdapter {
	return NpmRunnerAdapter{Runner: runner, Timeout: defaultNpmTimeout}
}

func (a NpmRunnerAdapter) Install(ctx context.Context, dir string, deps map[string]string) error {
	args := append([]string{"install"}, installSpecs(deps)...)
	_, err := a.Runner.Run(ctx, dir, a.Timeout, "npm", args...)
	return err
}

func (a NpmRunnerAdapter) Uninstall(ctx context.Context, dir string, names []string) error {
	args := append([]string{"uninstall"}, names...)
	_, err := a.Runner.Run(ctx, dir, a.Timeout, "npm", args...)
	return err
}

func (a NpmRunnerAdapter) InstallAll(ctx context.Context, dir string) error {
	_, err := a.Runner.Run(ctx, dir, a.Timeout, "npm", "install")
	return err
}

// installSpecs renders name -> specifier entries as npm install
// arguments, sorted for stable command lines.
func installSpecs(deps map[string]string) []string {
	specs := make([]string, 0, len(deps))
	for name, spec := range deps {
		specs = append(specs, name+"@"+spec)
	}
	sort.Strings(specs)
	return specs
}

var _ ports.PackageManager = NpmRunnerAdapter{}
