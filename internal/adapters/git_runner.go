package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"github.com/CheerlessCloud/veendor/internal/ports"
)

const defaultGitTimeout = 60 * time.Second
const defaultGitPushTimeout = 5 * time.Minute

// GitRunnerAdapter answers VCS queries for the project repository and
// drives the dedicated bundle repository used by the git backend.
type GitRunnerAdapter struct {
	Runner ports.ProcessRunner
}

func NewGitRunnerAdapter(runner ports.ProcessRunner) GitRunnerAdapter {
	return GitRunnerAdapter{Runner: runner}
}

func (a GitRunnerAdapter) IsRepo(ctx context.Context, dir string) bool {
	output, err := a.Runner.Run(ctx, dir, defaultGitTimeout, "git", "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(output)) == "true"
}

func (a GitRunnerAdapter) IsTracked(ctx context.Context, dir string, path string) (bool, error) {
	_, err := a.Runner.Run(ctx, dir, defaultGitTimeout, "git", "ls-files", "--error-unmatch", path)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// FileAtRevision returns path's contents `back` commits older than HEAD
// on that path's own history.
func (a GitRunnerAdapter) FileAtRevision(ctx context.Context, dir string, path string, back int) ([]byte, error) {
	output, err := a.Runner.Run(ctx, dir, defaultGitTimeout,
		"git", "log", "--format=%H", "-n", "1", "--skip", fmt.Sprintf("%d", back), "--", path)
	if err != nil {
		return nil, err
	}
	revision := strings.TrimSpace(string(output))
	if revision == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("no revision " + fmt.Sprintf("%d", back) + " back for " + path)
	}
	return a.Runner.Run(ctx, dir, defaultGitTimeout, "git", "show", revision+":"+path)
}

func (a GitRunnerAdapter) SyncRemote(ctx context.Context, repoURL string, localDir string) error {
	if _, err := os.Stat(filepath.Join(localDir, ".git")); err == nil {
		_, err := a.Runner.Run(ctx, localDir, defaultGitTimeout, "git", "fetch", "--tags", "--force", "origin")
		return err
	}
	if err := os.MkdirAll(filepath.Dir(localDir), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create git mirror parent").
			WithCause(err)
	}
	_, err := a.Runner.Run(ctx, filepath.Dir(localDir), defaultGitTimeout, "git", "clone", repoURL, localDir)
	return err
}

func (a GitRunnerAdapter) HasTag(ctx context.Context, localDir string, tag string) (bool, error) {
	output, err := a.Runner.Run(ctx, localDir, defaultGitTimeout, "git", "tag", "--list", tag)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(output)) == tag, nil
}

func (a GitRunnerAdapter) ShowFileAtTag(ctx context.Context, localDir string, tag string, path string) ([]byte, error) {
	return a.Runner.Run(ctx, localDir, defaultGitTimeout, "git", "show", tag+":"+path)
}

// PushTaggedBundle publishes bundlePath to repoURL under tag via a
// throwaway single-commit history built in workDir. A tag that already
// exists on the remote is reported as AlreadyExists so the caller can
// treat it as a concurrent-writer race.
func (a GitRunnerAdapter) PushTaggedBundle(ctx context.Context, repoURL string, workDir string, tag string, bundlePath string) error {
	steps := [][]string{
		{"git", "init", "--quiet"},
		{"git", "add", filepath.Base(bundlePath)},
		{"git", "-c", "user.name=veendor", "-c", "user.email=veendor@localhost", "commit", "--quiet", "-m", tag},
		{"git", "tag", tag},
	}
	for _, step := range steps {
		if _, err := a.Runner.Run(ctx, workDir, defaultGitTimeout, step[0], step[1:]...); err != nil {
			return err
		}
	}
	_, err := a.Runner.Run(ctx, workDir, defaultGitPushTimeout, "git", "push", repoURL, tag)
	if err != nil {
		if isRejectedPush(err) {
			return errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg("tag already exists on remote: " + tag).
				WithCause(err)
		}
		return err
	}
	return nil
}

func isRejectedPush(err error) bool {
	text := err.Error()
	return strings.Contains(text, "already exists") || strings.Contains(text, "[rejected]")
}

var _ ports.VCS = GitRunnerAdapter{}
var _ ports.GitRemote = GitRunnerAdapter{}
