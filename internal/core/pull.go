package core

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/types"
)

// pullChain tries each backend in order for hash. On a hit the staged
// node_modules removal is awaited, the retrieved tree is placed at the
// project root, and the strict prefix of the chain before the hit is
// returned as the missed backends. Backends after the hit are never
// consulted; their state is unknown and they are not push candidates.
func (e Engine) pullChain(ctx context.Context, at *attemptContext, hash string) ([]ports.ConfiguredBackend, error) {
	missed := make([]ports.ConfiguredBackend, 0, len(at.chain))
	for _, entry := range at.chain {
		cacheDir, err := e.Workspace.CacheDir(entry.Alias)
		if err != nil {
			return nil, err
		}
		err = entry.Backend.Pull(ctx, hash, cacheDir)
		if types.IsBundleNotFound(err) {
			log.Ctx(ctx).Debug().
				Str("backend", entry.Alias).
				Str("hash", hash).
				Msg("bundle not found, trying next backend")
			missed = append(missed, entry)
			continue
		}
		if err != nil {
			return nil, err
		}
		if at.removal != nil {
			if err := at.removal.Wait(ctx); err != nil {
				return nil, err
			}
		}
		if err := e.placeTree(ctx, at, filepath.Join(cacheDir, types.NodeModules)); err != nil {
			return nil, err
		}
		log.Ctx(ctx).Info().
			Str("backend", entry.Alias).
			Str("hash", hash).
			Msg("bundle pulled")
		return missed, nil
	}
	return nil, types.ErrBundlesNotFound(hash)
}

// placeTree installs the pulled tree at the project root. When a sync
// tool is available and a tree is still in place, the files are merged
// rather than move-replaced so unchanged files are reused.
func (e Engine) placeTree(ctx context.Context, at *attemptContext, src string) error {
	if e.Sync != nil && e.Sync.Available(ctx) && e.Workspace.HasNodeModules(at.dir) {
		return e.Sync.Sync(ctx, src, filepath.Join(at.dir, types.NodeModules))
	}
	return e.Workspace.PlaceTree(ctx, src, at.dir)
}
