package core

import (
	"context"
	"sort"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog/log"

	"github.com/CheerlessCloud/veendor/internal/types"
)

// Reconcile drives the native package manager to transform the installed
// tree of oldManifest into the tree newManifest declares. Installs run
// before uninstalls: new versions may replace old packages transitively,
// shrinking the uninstall set.
//
// Callers guarantee a non-empty diff; the history walker only delivers
// bundles whose fingerprint, and therefore dependency set, differs.
func (e Engine) Reconcile(ctx context.Context, oldManifest types.Manifest, newManifest types.Manifest, dir string) error {
	oldAll := oldManifest.MergedDependencies()
	newAll := newManifest.MergedDependencies()

	toInstall := map[string]string{}
	for name, spec := range newAll {
		if oldSpec, ok := oldAll[name]; !ok || oldSpec != spec {
			toInstall[name] = spec
		}
	}
	toUninstall := []string{}
	for name := range oldAll {
		if _, ok := newAll[name]; !ok {
			toUninstall = append(toUninstall, name)
		}
	}
	sort.Strings(toUninstall)

	diffKeys := make([]string, 0, len(toInstall)+len(toUninstall))
	for name := range toInstall {
		diffKeys = append(diffKeys, name)
	}
	diffKeys = append(diffKeys, toUninstall...)
	assert.NotEmpty(ctx, strings.Join(diffKeys, ","), "reconcile requires differing manifests")

	if len(toInstall) > 0 {
		log.Ctx(ctx).Info().Int("count", len(toInstall)).Msg("installing changed dependencies")
		if err := e.Npm.Install(ctx, dir, toInstall); err != nil {
			return err
		}
	}
	if len(toUninstall) > 0 {
		log.Ctx(ctx).Info().Strs("packages", toUninstall).Msg("removing dropped dependencies")
		if err := e.Npm.Uninstall(ctx, dir, toUninstall); err != nil {
			return err
		}
	}
	return nil
}
