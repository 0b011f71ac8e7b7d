package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/pagepress/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepress/internal/history"
	"git.home.luguber.info/inful/pagepress/internal/logfields"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" default:"20" help:"Maximum number of runs to list"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return errors.NewError(errors.CategoryConfig,
			"build history is disabled (history.path is empty)").Build()
	}

	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return errors.WrapError(err, errors.CategoryHistory, "open history store").Build()
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close history store", logfields.Error(err))
		}
	}()

	runs, err := store.RecentRuns(context.Background(), h.Limit)
	if err != nil {
		return errors.WrapError(err, errors.CategoryHistory, "list build runs").Build()
	}
	if len(runs) == 0 {
		fmt.Println("no recorded builds")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tOUTCOME\tRENDERED\tEXCLUDED\tISSUES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Duration().Round(10*time.Millisecond),
			run.Outcome,
			run.DocumentsRendered,
			run.DocumentsExcluded,
			run.IssueCount)
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
