package core

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/CheerlessCloud/veendor/internal/types"
)

// Hash computes the bundle fingerprint for a manifest, an optional
// lockfile, and an operator salt. The fingerprint depends only on the
// dependency maps, the lockfile document (or its absence), and the salt;
// identical inputs produce the identical hex string on any machine.
//
// Canonical form: a single JSON document whose maps are serialized with
// sorted keys at every level, digested with sha256. An absent lockfile
// omits the lockfile key entirely, so it hashes differently from a
// lockfile that parses to an empty document.
func Hash(manifest types.Manifest, lockfile *types.Lockfile, salt map[string]any) (string, error) {
	payload := map[string]any{
		"dependencies":    manifest.Dependencies,
		"devDependencies": manifest.DevDependencies,
	}
	if lockfile != nil {
		payload["lockfile"] = lockfile.Doc
	}
	if len(salt) > 0 {
		payload["packageHash"] = salt
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to serialize fingerprint payload").
			WithCause(err)
	}
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:]), nil
}
