package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory for the generated site (overrides config)"`
	Clean  bool   `help:"Remove the output directory before writing"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Clean {
		cfg.Output.Clean = true
	}

	store := openStore(cfg)
	if store != nil {
		defer store.Close()
	}

	opts := []build.Option{}
	if store != nil {
		opts = append(opts, build.WithStore(store))
	}
	pipeline := build.NewPipeline(cfg, opts...)

	summary, err := pipeline.Run(context.Background(), true)
	if err != nil {
		return err
	}

	slog.Info("Build complete",
		logfields.BuildID(summary.BuildID),
		logfields.Pages(summary.Pages),
		logfields.Assets(summary.Assets),
		logfields.DurationMS(float64(summary.Duration.Milliseconds())))
	fmt.Printf("Built %d pages and %d assets into %s\n",
		summary.Pages, summary.Assets, cfg.Output.Directory)
	return nil
}
