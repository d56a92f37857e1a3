package core

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/CheerlessCloud/veendor/internal/types"
)

// Install runs the full install pipeline: fingerprint, pull chain,
// history fallback, native rebuild, push fanout. A push conflict
// triggers exactly one forced second pass pinned to the original
// fingerprint; a second conflict on the same fingerprint is fatal.
func (e Engine) Install(ctx context.Context, req InstallRequest) error {
	err := e.installOnce(ctx, req, "")
	var rePull *rePullError
	if errors.As(err, &rePull) {
		log.Ctx(ctx).Info().
			Str("hash", rePull.hash).
			Msg("push conflict, re-pulling bundle")
		req.Force = true
		return e.installOnce(ctx, req, rePull.hash)
	}
	return err
}

// installOnce is one pass of the orchestrator. A non-empty pinned hash
// marks the rePull pass: the fingerprint is reused unchanged so the same
// bundle identity is sought.
func (e Engine) installOnce(ctx context.Context, req InstallRequest, pinned string) error {
	at := &attemptContext{
		dir:    req.Dir,
		chain:  req.Chain,
		salt:   req.Salt,
		rePull: pinned != "",
	}
	defer at.runCleanups()

	hadTree := e.Workspace.HasNodeModules(req.Dir)
	if hadTree && !req.Force {
		return types.ErrNodeModulesAlreadyExist()
	}

	manifest, err := e.Manifests.LoadManifest(req.Dir)
	if err != nil {
		return err
	}
	at.manifest = manifest
	lockfile, err := e.Manifests.LoadLockfile(req.Dir)
	if err != nil {
		return err
	}
	at.lockfile = lockfile
	if pinned != "" {
		at.hash = pinned
	} else {
		at.hash, err = Hash(manifest, lockfile, req.Salt)
		if err != nil {
			return err
		}
	}
	log.Ctx(ctx).Debug().Str("hash", at.hash).Bool("rePull", at.rePull).Msg("fingerprint computed")

	// The removal is staged only once the fingerprint is in hand, so a
	// bad manifest never costs a working tree. Completion is awaited
	// after a successful pull; the cleanup guarantees the background
	// delete does not outlive the call.
	if hadTree {
		keepInPlace := e.Sync != nil && e.Sync.Available(ctx)
		removal, err := e.Workspace.StageRemoval(req.Dir, keepInPlace)
		if err != nil {
			return err
		}
		at.removal = removal
		at.addCleanup(func() { _ = removal.Wait(context.Background()) })
	}

	missed, err := e.pullChain(ctx, at, at.hash)
	switch {
	case err == nil:
		at.missed = missed
	case types.IsBundlesNotFound(err):
		if rebuildErr := e.rebuild(ctx, at, req, err); rebuildErr != nil {
			return rebuildErr
		}
		// The bundle was rebuilt locally, not served by any backend;
		// the whole chain is a push candidate.
		at.missed = at.chain
	default:
		return err
	}

	return e.pushFanout(ctx, at)
}

// rebuild reconstructs the dependency tree after the chain came up
// empty: first via the manifest's history plus a delta install, then via
// a full native install when permitted.
func (e Engine) rebuild(ctx context.Context, at *attemptContext, req InstallRequest, chainErr error) error {
	if req.HistoryDepth > 0 && e.VCS.IsRepo(ctx, at.dir) {
		older, err := e.walkHistory(ctx, at, req.HistoryDepth)
		if err == nil {
			err = e.Reconcile(ctx, older, at.manifest, at.dir)
			if err == nil {
				return nil
			}
		}
		if !req.FallbackToNpm {
			return err
		}
		log.Ctx(ctx).Warn().Err(err).Msg("history fallback failed, falling back to full install")
	} else if !req.FallbackToNpm {
		return chainErr
	}

	if at.removal != nil {
		if err := at.removal.Wait(ctx); err != nil {
			return err
		}
	}
	log.Ctx(ctx).Info().Msg("no bundle available, performing full native install")
	return e.Npm.InstallAll(ctx, at.dir)
}
