package core

import (
	"context"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/types"
)

// rePullError is the internal signal carried from the push phase back to
// the orchestrator: another writer got the bundle there first, so one
// forced second pass with the same fingerprint is needed.
type rePullError struct {
	hash  string
	cause error
}

func (e *rePullError) Error() string {
	return "re-pull needed for " + e.hash + ": " + e.cause.Error()
}

func (e *rePullError) Unwrap() error {
	return e.cause
}

// pushFanout uploads the freshly materialized bundle to every missed
// backend with push capability. Pushes run concurrently; each backend's
// conflict is handled independently. Pushes that completed before a
// conflict stay committed; only the conflict triggers the rePull.
func (e Engine) pushFanout(ctx context.Context, at *attemptContext) error {
	targets := make([]ports.ConfiguredBackend, 0, len(at.missed))
	for _, entry := range at.missed {
		if entry.Push {
			targets = append(targets, entry)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	conflicts := make([]error, len(targets))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, entry := range targets {
		group.Go(func() error {
			cacheDir, err := e.Workspace.CacheDir("push-" + entry.Alias)
			if err != nil {
				return err
			}
			err = entry.Backend.Push(groupCtx, at.hash, at.dir, cacheDir)
			switch {
			case err == nil:
				log.Ctx(ctx).Info().
					Str("backend", entry.Alias).
					Str("hash", at.hash).
					Msg("bundle pushed")
			case types.IsBundleAlreadyExists(err):
				conflicts[i] = err
			case entry.PushMayFail:
				log.Ctx(ctx).Warn().
					Str("backend", entry.Alias).
					Err(err).
					Msg("push failed, tolerated by pushMayFail")
			default:
				return err
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for _, conflict := range conflicts {
		if conflict == nil {
			continue
		}
		if at.rePull {
			// We just re-pulled for this very fingerprint; a second
			// conflict means the backend is lying or racing beyond the
			// one-rePull budget.
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("push conflict after re-pull for " + at.hash).
				WithCause(conflict)
		}
		return &rePullError{hash: at.hash, cause: conflict}
	}
	return nil
}
