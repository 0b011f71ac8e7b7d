// Package gitsource fetches remote content repositories into a local cache
// directory before discovery. The cache is a mirror: local modifications are
// discarded on every sync.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	appcfg "git.home.luguber.info/inful/pagepress/internal/config"
	"git.home.luguber.info/inful/pagepress/internal/logfields"
)

// Fetcher synchronizes one remote content repository into a cache directory.
type Fetcher struct {
	cfg      *appcfg.GitConfig
	cacheDir string
}

// NewFetcher creates a fetcher for the given git config and cache directory.
func NewFetcher(cfg *appcfg.GitConfig, cacheDir string) *Fetcher {
	return &Fetcher{cfg: cfg, cacheDir: cacheDir}
}

// Fetch clones the repository on first use and hard-syncs it to the remote
// branch afterwards. It returns the local content directory.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	if _, err := os.Stat(filepath.Join(f.cacheDir, ".git")); err != nil {
		return f.clone(ctx)
	}
	return f.update(ctx)
}

func (f *Fetcher) clone(ctx context.Context) (string, error) {
	slog.Debug("Cloning content repository",
		slog.String("url", f.cfg.URL),
		slog.String("branch", f.cfg.Branch),
		logfields.Path(f.cacheDir))

	if err := os.RemoveAll(f.cacheDir); err != nil {
		return "", fmt.Errorf("remove stale cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.cacheDir), 0o750); err != nil {
		return "", fmt.Errorf("ensure cache parent: %w", err)
	}

	cloneOptions := &git.CloneOptions{URL: f.cfg.URL}
	if f.cfg.Branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + f.cfg.Branch)
		cloneOptions.SingleBranch = true
	}
	if f.cfg.Depth > 0 {
		cloneOptions.Depth = f.cfg.Depth
	}
	cloneOptions.Auth = authMethod(f.cfg.Auth)

	repository, err := git.PlainCloneContext(ctx, f.cacheDir, false, cloneOptions)
	if err != nil {
		return "", classifyError("clone", f.cfg.URL, err)
	}

	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Content repository cloned",
			slog.String("url", f.cfg.URL),
			slog.String("commit", shortHash(ref.Hash().String())),
			logfields.Path(f.cacheDir))
	} else {
		slog.Info("Content repository cloned", slog.String("url", f.cfg.URL), logfields.Path(f.cacheDir))
	}
	return f.cacheDir, nil
}

func (f *Fetcher) update(ctx context.Context) (string, error) {
	repository, err := git.PlainOpen(f.cacheDir)
	if err != nil {
		return "", fmt.Errorf("open cache repo: %w", err)
	}

	fetchOpts := &git.FetchOptions{
		RemoteName: "origin",
		Tags:       git.NoTags,
		RefSpecs:   []gitcfg.RefSpec{"+refs/heads/*:refs/remotes/origin/*"},
		Auth:       authMethod(f.cfg.Auth),
	}
	if f.cfg.Depth > 0 {
		fetchOpts.Depth = f.cfg.Depth
	}
	if err := repository.FetchContext(ctx, fetchOpts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", classifyError("fetch", f.cfg.URL, err)
	}

	remoteRef, err := repository.Reference(plumbing.NewRemoteReferenceName("origin", f.cfg.Branch), true)
	if err != nil {
		return "", fmt.Errorf("resolve origin/%s: %w", f.cfg.Branch, err)
	}

	wt, err := repository.Worktree()
	if err != nil {
		return "", fmt.Errorf("worktree: %w", err)
	}
	// Local cache edits are never preserved.
	if err := wt.Reset(&git.ResetOptions{Mode: git.HardReset, Commit: remoteRef.Hash()}); err != nil {
		return "", fmt.Errorf("reset to origin/%s: %w", f.cfg.Branch, err)
	}

	slog.Info("Content repository updated",
		slog.String("url", f.cfg.URL),
		slog.String("commit", shortHash(remoteRef.Hash().String())),
		logfields.Path(f.cacheDir))
	return f.cacheDir, nil
}

// authMethod maps config credentials onto a go-git transport auth method.
// Token wins over username/password when both are set.
func authMethod(auth *appcfg.AuthConfig) transport.AuthMethod {
	if auth == nil {
		return nil
	}
	if auth.Token != "" {
		return &http.BasicAuth{Username: "token", Password: auth.Token}
	}
	if auth.Username != "" {
		return &http.BasicAuth{Username: auth.Username, Password: auth.Password}
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
