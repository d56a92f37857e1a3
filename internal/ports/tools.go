package ports

import (
	"context"
	"time"

	"github.com/CheerlessCloud/veendor/internal/types"
)

// ProcessRunner executes external tools. The engine never shells out
// directly; every subprocess goes through here so timeouts and
// cancellation behave uniformly.
type ProcessRunner interface {
	// Run executes name with args in dir and returns stdout. A zero
	// timeout means no deadline beyond ctx. Failures carry the
	// command's stderr.
	Run(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) ([]byte, error)
}

// ManifestSource loads the project manifest and optional lockfile.
type ManifestSource interface {
	// LoadManifest reads and parses dir/package.json. A missing file is
	// a ManifestNotFound error, an unparseable one ManifestInvalid.
	LoadManifest(dir string) (types.Manifest, error)

	// LoadLockfile reads the preferred lockfile in dir. Absence is a
	// first-class state: (nil, nil).
	LoadLockfile(dir string) (*types.Lockfile, error)
}

// VCS answers the engine's version-control queries against the project
// repository.
type VCS interface {
	// IsRepo reports whether dir is inside a work tree.
	IsRepo(ctx context.Context, dir string) bool

	// IsTracked reports whether path (relative to dir) is tracked.
	IsTracked(ctx context.Context, dir string, path string) (bool, error)

	// FileAtRevision returns the contents of path as of `back` commits
	// before HEAD on that path's history.
	FileAtRevision(ctx context.Context, dir string, path string, back int) ([]byte, error)
}

// GitRemote drives the dedicated bundle repository used by the git
// backend. Implementations keep the local mirror under localDir.
type GitRemote interface {
	// SyncRemote clones repoURL into localDir, or fetches tags when the
	// mirror already exists.
	SyncRemote(ctx context.Context, repoURL string, localDir string) error

	// HasTag reports whether the mirror holds tag.
	HasTag(ctx context.Context, localDir string, tag string) (bool, error)

	// ShowFileAtTag returns path's contents at tag.
	ShowFileAtTag(ctx context.Context, localDir string, tag string, path string) ([]byte, error)

	// PushTaggedBundle commits bundlePath into a fresh history inside
	// workDir, tags it, and pushes the tag to repoURL. A tag that
	// already exists on the remote surfaces as an AlreadyExists error.
	PushTaggedBundle(ctx context.Context, repoURL string, workDir string, tag string, bundlePath string) error
}

// PackageManager drives the native package manager inside a project dir.
type PackageManager interface {
	// Install installs the given name -> specifier entries.
	Install(ctx context.Context, dir string, deps map[string]string) error

	// Uninstall removes the given packages.
	Uninstall(ctx context.Context, dir string, names []string) error

	// InstallAll performs a full install from the manifest.
	InstallAll(ctx context.Context, dir string) error
}

// Archive serializes dependency trees. The bundle format is a gzipped
// tarball holding node_modules at its top level.
type Archive interface {
	// Create writes dir/node_modules into archivePath.
	Create(ctx context.Context, archivePath string, dir string) error

	// Extract unpacks archivePath into destDir.
	Extract(ctx context.Context, archivePath string, destDir string) error
}

// TreeSync merges one tree into another, reusing unchanged files. Backed
// by an rsync-class tool when one is installed.
type TreeSync interface {
	// Available reports whether the sync tool exists. The probe result
	// is memoized for the process lifetime.
	Available(ctx context.Context) bool

	// Sync makes destDir's contents identical to srcDir's, deleting
	// extraneous files.
	Sync(ctx context.Context, srcDir string, destDir string) error
}
