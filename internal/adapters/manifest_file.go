package adapters

import (
	"os"
	"path/filepath"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/types"
)

// ManifestFileAdapter loads package.json and the preferred lockfile from
// a project root.
type ManifestFileAdapter struct{}

func NewManifestFileAdapter() ManifestFileAdapter {
	return ManifestFileAdapter{}
}

func (a ManifestFileAdapter) LoadManifest(dir string) (types.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, types.ManifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return types.Manifest{}, types.ErrManifestNotFound(err)
		}
		return types.Manifest{}, types.ErrManifestInvalid("failed to read "+types.ManifestName, err)
	}
	return types.ParseManifest(data)
}

// LoadLockfile reads the first lockfile present, shrinkwrap preferred.
// Absence is not an error: (nil, nil).
func (a ManifestFileAdapter) LoadLockfile(dir string) (*types.Lockfile, error) {
	for _, name := range types.LockfileNames {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, types.ErrManifestInvalid("failed to read "+name, err)
		}
		return types.ParseLockfile(name, data)
	}
	return nil, nil
}

var _ ports.ManifestSource = ManifestFileAdapter{}
