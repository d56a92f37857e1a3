package app

import (
	"github.com/CheerlessCloud/veendor/internal/adapters"
	"github.com/CheerlessCloud/veendor/internal/ports"
)

// Service wires the tool adapters into the install engine. Ports stay
// swappable for tests.
type Service struct {
	Manifests ports.ManifestSource
	Runner    ports.ProcessRunner
	VCS       ports.VCS
	GitRemote ports.GitRemote
	Npm       ports.PackageManager
	Archive   ports.Archive
	Sync      ports.TreeSync
	Workspace ports.Workspace

	// BaseDir is the veendor cache root shared by workspace scratch
	// areas and backend mirrors.
	BaseDir string
}

func NewService() (Service, error) {
	baseDir, err := adapters.DefaultBaseDir()
	if err != nil {
		return Service{}, err
	}
	runner := adapters.NewProcessRunnerAdapter()
	git := adapters.NewGitRunnerAdapter(runner)
	return Service{
		Manifests: adapters.NewManifestFileAdapter(),
		Runner:    runner,
		VCS:       git,
		GitRemote: git,
		Npm:       adapters.NewNpmRunnerAdapter(runner),
		Archive:   adapters.NewTarRunnerAdapter(runner),
		Sync:      adapters.NewRsyncSyncAdapter(runner),
		Workspace: adapters.NewWorkspaceAdapter(baseDir),
		BaseDir:   baseDir,
	}, nil
}
