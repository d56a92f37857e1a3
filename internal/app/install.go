package app

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/CheerlessCloud/veendor/internal/backends"
	"github.com/CheerlessCloud/veendor/internal/core"
)

// InstallRequest is one CLI install invocation.
type InstallRequest struct {
	Dir        string
	ConfigPath string
	Force      bool
}

// Install loads config, builds and validates the backend chain, and
// runs the install engine against the project directory.
func (s Service) Install(ctx context.Context, req InstallRequest) error {
	cfg, err := LoadConfig(req.Dir, req.ConfigPath)
	if err != nil {
		return err
	}
	chain, err := backends.Build(ctx, cfg, backends.Deps{
		Archive:   s.Archive,
		GitRemote: s.GitRemote,
		BaseDir:   s.BaseDir,
	})
	if err != nil {
		return err
	}
	engine := core.NewEngine(s.Manifests, s.VCS, s.Npm, s.Sync, s.Workspace)
	return engine.Install(ctx, core.InstallRequest{
		Dir:           req.Dir,
		Force:         req.Force,
		Chain:         chain,
		HistoryDepth:  cfg.HistoryDepth(),
		FallbackToNpm: cfg.FallbackToNpm,
		Salt:          cfg.PackageHash,
	})
}

// CalcRequest asks for the fingerprint of a project without installing.
type CalcRequest struct {
	Dir        string
	ConfigPath string
}

// Calc computes the fingerprint the install would use, honoring the
// configured salt.
func (s Service) Calc(ctx context.Context, req CalcRequest) (string, error) {
	var salt map[string]any
	cfg, err := LoadConfig(req.Dir, req.ConfigPath)
	switch {
	case err == nil:
		salt = cfg.PackageHash
	case req.ConfigPath == "" && errbuilder.CodeOf(err) == errbuilder.CodeNotFound:
		// No config at all is fine for calc; the salt is just empty.
	default:
		return "", err
	}
	manifest, err := s.Manifests.LoadManifest(req.Dir)
	if err != nil {
		return "", err
	}
	lockfile, err := s.Manifests.LoadLockfile(req.Dir)
	if err != nil {
		return "", err
	}
	return core.Hash(manifest, lockfile, salt)
}
