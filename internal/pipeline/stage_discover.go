package pipeline

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/pagepress/internal/logfields"
	"git.home.luguber.info/inful/pagepress/internal/source"
)

// stageDiscoverSources walks the content directory and records every
// markdown source file. An empty content set is not an error: the build
// proceeds and produces an empty (but valid) site.
func stageDiscoverSources(_ context.Context, bs *BuildState) error {
	files, err := source.NewDiscovery(bs.ContentDir).Discover()
	if err != nil {
		return NewFatalStageError(StageDiscoverSources, err)
	}

	bs.Sources = files
	bs.Report.SourceFiles = len(files)
	if len(files) == 0 {
		slog.Warn("No markdown sources found", logfields.Path(bs.ContentDir))
	}
	return nil
}
