package types

import (
	"encoding/json"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ManifestName is the well-known manifest file name at the project root.
const ManifestName = "package.json"

// Lockfile names recognized at the project root, in precedence order.
// npm itself prefers a shrinkwrap over a package lock when both exist.
var LockfileNames = []string{"npm-shrinkwrap.json", "package-lock.json"}

// NodeModules is the well-known name of the dependency-tree directory.
const NodeModules = "node_modules"

// Manifest is the parsed dependency-bearing subset of package.json.
// Only the two dependency maps participate in the bundle fingerprint;
// everything else in the file is ignored.
type Manifest struct {
	Name            string
	Dependencies    map[string]string
	DevDependencies map[string]string
}

// Lockfile is a parsed lockfile document. The document is opaque to the
// engine; it is folded into the fingerprint as-is. A nil *Lockfile means
// "no lockfile", which hashes differently from an empty document.
type Lockfile struct {
	Source string
	Doc    map[string]any
}

type manifestJSON struct {
	Name            string             `json:"name"`
	Dependencies    *map[string]string `json:"dependencies"`
	DevDependencies *map[string]string `json:"devDependencies"`
}

// ParseManifest decodes package.json bytes into a Manifest. A manifest
// with neither a dependencies nor a devDependencies section is invalid.
func ParseManifest(data []byte) (Manifest, error) {
	var raw manifestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest invalid: failed to parse json").
			WithCause(err)
	}
	if raw.Dependencies == nil && raw.DevDependencies == nil {
		return Manifest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest invalid: no dependency sections")
	}
	manifest := Manifest{
		Name:            raw.Name,
		Dependencies:    map[string]string{},
		DevDependencies: map[string]string{},
	}
	if raw.Dependencies != nil {
		manifest.Dependencies = *raw.Dependencies
	}
	if raw.DevDependencies != nil {
		manifest.DevDependencies = *raw.DevDependencies
	}
	return manifest, nil
}

// ParseLockfile decodes lockfile bytes into a Lockfile document.
func ParseLockfile(source string, data []byte) (*Lockfile, error) {
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest invalid: failed to parse lockfile").
			WithCause(err)
	}
	return &Lockfile{Source: source, Doc: doc}, nil
}

// MergedDependencies flattens a manifest into a single name -> specifier
// map. Runtime dependencies win over dev dependencies on key conflicts,
// matching npm's own convention.
func (m Manifest) MergedDependencies() map[string]string {
	merged := make(map[string]string, len(m.Dependencies)+len(m.DevDependencies))
	for name, spec := range m.DevDependencies {
		merged[name] = spec
	}
	for name, spec := range m.Dependencies {
		merged[name] = spec
	}
	return merged
}
