package backends

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/shared"
	"github.com/CheerlessCloud/veendor/internal/types"
)

// GitBackend stores each bundle as a single-file commit tagged
// veendor-<hash> in a dedicated git repository. A local mirror under the
// veendor cache root avoids re-cloning; the remote is fetched at most
// once per process.
type GitBackend struct {
	alias   string
	remote  ports.GitRemote
	archive ports.Archive
	opts    gitOptions

	mirrorDir string
	syncOnce  sync.Once
	syncErr   error
}

type gitOptions struct {
	Repo string `yaml:"repo"`
}

func NewGitBackend(entry types.BackendConfig, remote ports.GitRemote, archive ports.Archive, baseDir string) (*GitBackend, error) {
	backend := &GitBackend{alias: entry.Alias, remote: remote, archive: archive}
	if err := decodeOptions(entry, &backend.opts); err != nil {
		return nil, err
	}
	backend.mirrorDir = filepath.Join(baseDir, "git-remotes", shared.SanitizeDirName(backend.opts.Repo))
	return backend, nil
}

func (b *GitBackend) ValidateOptions(_ context.Context) error {
	if b.opts.Repo == "" {
		return types.ErrInvalidOptions(b.alias, "repo is required")
	}
	return nil
}

func (b *GitBackend) Pull(ctx context.Context, hash string, cacheDir string) error {
	if err := b.ensureSynced(ctx); err != nil {
		return types.ErrBackend(b.alias, "failed to sync remote", err)
	}
	tag := shared.BundleTag(hash)
	found, err := b.remote.HasTag(ctx, b.mirrorDir, tag)
	if err != nil {
		return types.ErrBackend(b.alias, "failed to list tags", err)
	}
	if !found {
		return types.ErrBundleNotFound(b.alias, hash)
	}
	data, err := b.remote.ShowFileAtTag(ctx, b.mirrorDir, tag, shared.BundleFileName(hash))
	if err != nil {
		return types.ErrBackend(b.alias, "failed to read bundle at tag", err)
	}
	staging := filepath.Join(cacheDir, shared.BundleFileName(hash))
	if err := os.WriteFile(staging, data, 0644); err != nil {
		return types.ErrBackend(b.alias, "failed to stage bundle", err)
	}
	if err := b.archive.Extract(ctx, staging, cacheDir); err != nil {
		return types.ErrBackend(b.alias, "failed to extract bundle", err)
	}
	return nil
}

func (b *GitBackend) Push(ctx context.Context, hash string, projectDir string, cacheDir string) error {
	if err := b.ensureSynced(ctx); err != nil {
		return types.ErrBackend(b.alias, "failed to sync remote", err)
	}
	tag := shared.BundleTag(hash)
	found, err := b.remote.HasTag(ctx, b.mirrorDir, tag)
	if err != nil {
		return types.ErrBackend(b.alias, "failed to list tags", err)
	}
	if found {
		return types.ErrBundleAlreadyExists(b.alias, hash)
	}
	workDir := filepath.Join(cacheDir, "push")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return types.ErrBackend(b.alias, "failed to create push workdir", err)
	}
	bundlePath := filepath.Join(workDir, shared.BundleFileName(hash))
	if err := b.archive.Create(ctx, bundlePath, projectDir); err != nil {
		return types.ErrBackend(b.alias, "failed to archive bundle", err)
	}
	if err := b.remote.PushTaggedBundle(ctx, b.opts.Repo, workDir, tag, bundlePath); err != nil {
		if errbuilder.CodeOf(err) == errbuilder.CodeAlreadyExists {
			return types.ErrBundleAlreadyExists(b.alias, hash)
		}
		return types.ErrBackend(b.alias, "failed to push bundle tag", err)
	}
	return nil
}

// ensureSynced clones or fetches the mirror at most once per process.
func (b *GitBackend) ensureSynced(ctx context.Context) error {
	b.syncOnce.Do(func() {
		b.syncErr = b.remote.SyncRemote(ctx, b.opts.Repo, b.mirrorDir)
	})
	return b.syncErr
}

var _ ports.Backend = (*GitBackend)(nil)
