package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/pagepress/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct{}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	builder, cleanup, err := newBuilder(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	return watch.New(cfg, builder).Run(ctx)
}
