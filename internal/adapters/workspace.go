package adapters

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/types"
)

// WorkspaceAdapter owns the scratch areas under a veendor cache root and
// the node_modules lifecycle at the project root. It never changes the
// process working directory.
type WorkspaceAdapter struct {
	// BaseDir is the cache root; per-backend scratch areas live below it.
	BaseDir string
}

func NewWorkspaceAdapter(baseDir string) WorkspaceAdapter {
	return WorkspaceAdapter{BaseDir: baseDir}
}

// DefaultBaseDir resolves the cache root: $VEENDOR_DIR when set,
// otherwise <user cache dir>/veendor.
func DefaultBaseDir() (string, error) {
	if dir := os.Getenv("VEENDOR_DIR"); dir != "" {
		return dir, nil
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to resolve user cache dir").
			WithCause(err)
	}
	return filepath.Join(cacheDir, "veendor"), nil
}

// CacheDir returns a clean scratch area for one backend attempt. Any
// leftovers from a previous attempt are discarded first.
func (a WorkspaceAdapter) CacheDir(alias string) (string, error) {
	dir := filepath.Join(a.BaseDir, alias)
	if err := os.RemoveAll(dir); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to clear cache dir for " + alias).
			WithCause(err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create cache dir for " + alias).
			WithCause(err)
	}
	return dir, nil
}

// TempDir returns a fresh scratch directory under the cache root and a
// release func that removes it.
func (a WorkspaceAdapter) TempDir() (string, func(), error) {
	if err := os.MkdirAll(a.BaseDir, 0755); err != nil {
		return "", nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create cache root").
			WithCause(err)
	}
	dir, err := os.MkdirTemp(a.BaseDir, "tmp-")
	if err != nil {
		return "", nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create temp dir").
			WithCause(err)
	}
	release := func() { os.RemoveAll(dir) }
	return dir, release, nil
}

func (a WorkspaceAdapter) HasNodeModules(root string) bool {
	info, err := os.Stat(filepath.Join(root, types.NodeModules))
	return err == nil && info.IsDir()
}

// StageRemoval starts removing root's node_modules. The keepInPlace mode
// leaves the tree on disk for a later sync-merge; otherwise the tree is
// renamed aside immediately (so the name is free) and deleted in the
// background while the pull is in flight.
func (a WorkspaceAdapter) StageRemoval(root string, keepInPlace bool) (ports.StagedRemoval, error) {
	removal := &stagedRemoval{done: make(chan struct{})}
	if keepInPlace || !a.HasNodeModules(root) {
		close(removal.done)
		return removal, nil
	}
	trash := filepath.Join(root, fmt.Sprintf(".veendor-trash-%d", time.Now().UnixNano()))
	if err := os.Rename(filepath.Join(root, types.NodeModules), trash); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to stage node_modules removal").
			WithCause(err)
	}
	go func() {
		removal.err = os.RemoveAll(trash)
		close(removal.done)
	}()
	return removal, nil
}

type stagedRemoval struct {
	done chan struct{}
	err  error
}

func (r *stagedRemoval) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PlaceTree moves src to root/node_modules. Rename is tried first; a
// cache root on another filesystem falls back to a copy.
func (a WorkspaceAdapter) PlaceTree(_ context.Context, src string, root string) error {
	dest := filepath.Join(root, types.NodeModules)
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyTree(src, dest); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to place node_modules").
			WithCause(err)
	}
	return os.RemoveAll(src)
}

func copyTree(src string, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

func copyFile(src string, dest string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

var _ ports.Workspace = WorkspaceAdapter{}
