package ports

import "context"

// Workspace provides the scratch areas and node_modules lifecycle the
// engine needs around each backend attempt. Implementations never leave
// the caller's working directory changed.
type Workspace interface {
	// CacheDir returns a clean per-backend scratch area. Any previous
	// contents for the alias are discarded.
	CacheDir(alias string) (string, error)

	// TempDir returns a fresh scratch directory and a release func.
	TempDir() (string, func(), error)

	// HasNodeModules reports whether root already holds a dependency tree.
	HasNodeModules(root string) bool

	// StageRemoval begins removing root's node_modules. With keepInPlace
	// the tree is left on disk for a later sync-merge and only the
	// bookkeeping is staged; otherwise the tree is renamed aside at once
	// and deleted in the background. Completion is awaited via the
	// returned handle after a successful pull.
	StageRemoval(root string, keepInPlace bool) (StagedRemoval, error)

	// PlaceTree moves the pulled tree at src to root/node_modules.
	PlaceTree(ctx context.Context, src string, root string) error
}

// StagedRemoval is the handle for an in-flight node_modules removal.
type StagedRemoval interface {
	Wait(ctx context.Context) error
}
