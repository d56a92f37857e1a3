// Package backends provides the artifact backend implementations the
// install engine pulls bundles from and pushes bundles to, plus the
// factory that builds a configured chain.
package backends

import (
	"context"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/types"
)

// Deps carries the shared collaborators backend instances need.
type Deps struct {
	Archive   ports.Archive
	GitRemote ports.GitRemote

	// BaseDir is the veendor cache root; the git backend keeps its
	// remote mirrors below it.
	BaseDir string
}

// Build turns the configured chain into bound backend instances and
// validates every options record. Validation failures abort startup.
func Build(ctx context.Context, cfg types.Config, deps Deps) ([]ports.ConfiguredBackend, error) {
	chain := make([]ports.ConfiguredBackend, 0, len(cfg.Backends))
	for _, entry := range cfg.Backends {
		backend, err := newBackend(entry, deps)
		if err != nil {
			return nil, err
		}
		if err := backend.ValidateOptions(ctx); err != nil {
			return nil, err
		}
		chain = append(chain, ports.ConfiguredBackend{
			Alias:       entry.Alias,
			Push:        entry.Push,
			PushMayFail: entry.PushMayFail,
			Backend:     backend,
		})
	}
	return chain, nil
}

func newBackend(entry types.BackendConfig, deps Deps) (ports.Backend, error) {
	switch entry.Backend {
	case "local":
		return NewLocalBackend(entry, deps.Archive)
	case "http":
		return NewHTTPBackend(entry, deps.Archive)
	case "git":
		return NewGitBackend(entry, deps.GitRemote, deps.Archive, deps.BaseDir)
	case "redis":
		return NewRedisBackend(entry, deps.Archive)
	case "gcs":
		return NewGCSBackend(entry, deps.Archive)
	default:
		return nil, types.ErrInvalidOptions(entry.Alias, "unknown backend kind "+entry.Backend)
	}
}

// decodeOptions fills opts from the entry's options node, tolerating a
// missing node so defaults apply.
func decodeOptions(entry types.BackendConfig, opts any) error {
	if entry.Options.IsZero() {
		return nil
	}
	if err := entry.Options.Decode(opts); err != nil {
		return types.ErrInvalidOptions(entry.Alias, err.Error())
	}
	return nil
}
