package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/CheerlessCloud/veendor/internal/types"
)

// walkHistory walks the manifest's version-control history looking for a
// revision whose fingerprint some backend still holds. On a hit the
// older bundle is already installed at the project root and the older
// manifest is returned for delta reconciliation against the current one.
//
// Revisions whose fingerprint equals the previous one did not change the
// dependency set; they extend the depth transparently instead of
// consuming a user-budgeted slot.
func (e Engine) walkHistory(ctx context.Context, at *attemptContext, depth int) (types.Manifest, error) {
	lockfileName := e.trackedLockfileName(ctx, at)
	lastHash := at.hash
	for index := 0; index <= depth; index++ {
		data, err := e.VCS.FileAtRevision(ctx, at.dir, types.ManifestName, index+1)
		if err != nil {
			// Manifest history exhausted; nothing older to try.
			log.Ctx(ctx).Debug().Int("index", index).Msg("manifest history exhausted")
			break
		}
		manifest, err := types.ParseManifest(data)
		if err != nil {
			// An unparseable old manifest counts as a miss at this
			// index, not a failure of the whole walk.
			log.Ctx(ctx).Warn().Int("index", index).Err(err).Msg("skipping unparseable manifest revision")
			continue
		}
		var lockfile *types.Lockfile
		if lockfileName != "" {
			if lockData, lockErr := e.VCS.FileAtRevision(ctx, at.dir, lockfileName, index+1); lockErr == nil {
				if parsed, parseErr := types.ParseLockfile(lockfileName, lockData); parseErr == nil {
					lockfile = parsed
				}
			}
		}
		hash, err := Hash(manifest, lockfile, at.salt)
		if err != nil {
			return types.Manifest{}, err
		}
		if hash == lastHash {
			// The revision did not change the dependency set; look one
			// commit further without spending the depth budget.
			depth++
			continue
		}
		lastHash = hash
		if _, err := e.pullChain(ctx, at, hash); err != nil {
			if types.IsBundlesNotFound(err) {
				continue
			}
			return types.Manifest{}, err
		}
		log.Ctx(ctx).Info().
			Int("index", index).
			Str("hash", hash).
			Msg("bundle found in manifest history")
		return manifest, nil
	}
	return types.Manifest{}, types.ErrBundlesNotFound(at.hash)
}

// trackedLockfileName returns the lockfile path to follow through
// history: the current lockfile when tracked, otherwise the first
// tracked candidate name.
func (e Engine) trackedLockfileName(ctx context.Context, at *attemptContext) string {
	candidates := types.LockfileNames
	if at.lockfile != nil {
		candidates = append([]string{at.lockfile.Source}, candidates...)
	}
	for _, name := range candidates {
		tracked, err := e.VCS.IsTracked(ctx, at.dir, name)
		if err == nil && tracked {
			return name
		}
	}
	return ""
}
