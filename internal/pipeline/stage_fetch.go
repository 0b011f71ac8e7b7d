package pipeline

import (
	"context"
	"errors"
	"fmt"

	"git.home.luguber.info/inful/pagepress/internal/gitsource"
)

// stageFetchContent syncs the configured remote content repository into the
// cache directory. The stage only runs when content.git is configured; a
// fetch failure is fatal because building from a stale or absent cache would
// silently publish outdated content.
func stageFetchContent(ctx context.Context, bs *BuildState) error {
	gitCfg := bs.Config.Content.Git
	if gitCfg == nil {
		return nil
	}

	fetcher := gitsource.NewFetcher(gitCfg, bs.Config.Content.CacheDir)
	dir, err := fetcher.Fetch(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return NewCanceledStageError(StageFetchContent, err)
		}
		return NewFatalStageError(StageFetchContent, fmt.Errorf("sync content repository: %w", err))
	}

	bs.ContentDir = dir
	return nil
}
