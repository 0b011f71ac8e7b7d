package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Force bool `short:"f" help:"Rebuild even when content and settings are unchanged"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	builder, cleanup, err := newBuilder(cfg, b.Force)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := builder.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Println(report.Summary())
	return nil
}
