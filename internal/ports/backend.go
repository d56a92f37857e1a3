package ports

import "context"

// Backend is the contract every artifact backend satisfies. Backends are
// fingerprint-idempotent: pulling the same hash twice yields byte-identical
// trees. How the bundle travels on the wire is the backend's business.
type Backend interface {
	// Pull materializes the bundle for hash into cacheDir as a
	// subdirectory named node_modules. A backend that has no such
	// fingerprint fails with a BundleNotFound error; anything else is
	// a backend error.
	Pull(ctx context.Context, hash string, cacheDir string) error

	// Push uploads the dependency tree rooted at projectDir/node_modules
	// under hash. A backend that already holds the fingerprint (a race
	// with another writer) fails with a BundleAlreadyExists error.
	Push(ctx context.Context, hash string, projectDir string, cacheDir string) error

	// ValidateOptions normalizes the backend's options record at
	// startup, populating defaults and rejecting invalid values with an
	// InvalidOptions error. It may probe for external capabilities.
	ValidateOptions(ctx context.Context) error
}

// ConfiguredBackend binds a backend implementation to its descriptor
// from config. The alias is unique within one chain.
type ConfiguredBackend struct {
	Alias       string
	Push        bool
	PushMayFail bool
	Backend     Backend
}
