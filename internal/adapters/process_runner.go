package adapters

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/shared"
)

// ProcessRunnerAdapter executes external tools with a per-call timeout.
// A cancelled context terminates the subprocess. Stdout is returned
// verbatim (some callers read file bytes from it); stderr travels in
// the error.
type ProcessRunnerAdapter struct{}

func NewProcessRunnerAdapter() ProcessRunnerAdapter {
	return ProcessRunnerAdapter{}
}

func (a ProcessRunnerAdapter) Run(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	stdout, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		stderr := []byte(nil)
		if errors.As(err, &exitErr) {
			stderr = exitErr.Stderr
		}
		msg := "command failed: " + name
		if ctx.Err() == context.DeadlineExceeded {
			msg = "command timed out: " + name
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(msg).
			WithCause(shared.CommandError(stderr, err))
	}
	return stdout, nil
}

var _ ports.ProcessRunner = ProcessRunnerAdapter{}
