package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pagepress/internal/logfields"
	"git.home.luguber.info/inful/pagepress/internal/site"
)

// stageWriteSite persists the assembled site through the staged writer. Any
// write failure is fatal: a partially written output tree must never be
// promoted.
func stageWriteSite(ctx context.Context, bs *BuildState) error {
	writer := site.NewWriter(bs.Config.Output.Dir, bs.Config.Output.Clean)
	out := site.Site{
		Meta: site.Meta{
			Title:       bs.Config.Site.Title,
			BaseURL:     bs.Config.Site.BaseURL,
			GeneratedAt: time.Now().UTC(),
			BuildID:     bs.Report.BuildID,
		},
		Pages:    bs.Pages,
		Excluded: bs.ExcludedPages,
		Search:   bs.SearchEntries,
	}

	written, err := writer.Write(ctx, out)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return NewCanceledStageError(StageWriteSite, err)
		}
		return NewFatalStageError(StageWriteSite, err)
	}

	bs.Report.PagesWritten = written
	slog.Info("Site written", logfields.Path(bs.Config.Output.Dir), logfields.Count(written))
	return nil
}
