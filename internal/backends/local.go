package backends

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/shared"
	"github.com/CheerlessCloud/veendor/internal/types"
)

// LocalBackend stores bundles as <hash>.tar.gz files in a directory,
// typically a network mount shared across a team.
type LocalBackend struct {
	alias   string
	archive ports.Archive
	opts    localOptions
}

type localOptions struct {
	Directory string `yaml:"directory"`
}

func NewLocalBackend(entry types.BackendConfig, archive ports.Archive) (*LocalBackend, error) {
	backend := &LocalBackend{alias: entry.Alias, archive: archive}
	if err := decodeOptions(entry, &backend.opts); err != nil {
		return nil, err
	}
	return backend, nil
}

func (b *LocalBackend) ValidateOptions(_ context.Context) error {
	if b.opts.Directory == "" {
		return types.ErrInvalidOptions(b.alias, "directory is required")
	}
	if err := os.MkdirAll(b.opts.Directory, 0755); err != nil {
		return types.ErrInvalidOptions(b.alias, "directory is not writable: "+err.Error())
	}
	return nil
}

func (b *LocalBackend) Pull(ctx context.Context, hash string, cacheDir string) error {
	path := filepath.Join(b.opts.Directory, shared.BundleFileName(hash))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return types.ErrBundleNotFound(b.alias, hash)
		}
		return types.ErrBackend(b.alias, "failed to stat bundle", err)
	}
	if err := b.archive.Extract(ctx, path, cacheDir); err != nil {
		return types.ErrBackend(b.alias, "failed to extract bundle", err)
	}
	return nil
}

// Push archives the tree and writes it with O_EXCL so the loser of a
// concurrent-writer race sees the conflict instead of clobbering.
func (b *LocalBackend) Push(ctx context.Context, hash string, projectDir string, cacheDir string) error {
	staging := filepath.Join(cacheDir, shared.BundleFileName(hash))
	if err := b.archive.Create(ctx, staging, projectDir); err != nil {
		return types.ErrBackend(b.alias, "failed to archive bundle", err)
	}
	target := filepath.Join(b.opts.Directory, shared.BundleFileName(hash))
	out, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return types.ErrBundleAlreadyExists(b.alias, hash)
		}
		return types.ErrBackend(b.alias, "failed to create bundle file", err)
	}
	in, err := os.Open(staging)
	if err != nil {
		out.Close()
		return types.ErrBackend(b.alias, "failed to open staged bundle", err)
	}
	defer in.Close()
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return types.ErrBackend(b.alias, "failed to write bundle", err)
	}
	if err := out.Close(); err != nil {
		return types.ErrBackend(b.alias, "failed to finish bundle write", err)
	}
	return nil
}

var _ ports.Backend = (*LocalBackend)(nil)
