package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/linkcheck"
)

// CheckCmd implements the 'check' command. It runs a full in-memory build
// (so every taxonomy error surfaces) and then verifies internal links across
// the assembled tree. Nothing is written to disk.
type CheckCmd struct{}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	pipeline := build.NewPipeline(cfg)
	summary, err := pipeline.Run(context.Background(), false)
	if err != nil {
		return err
	}

	issues, err := linkcheck.Verify(summary.Tree)
	if err != nil {
		return err
	}
	if len(issues) > 0 {
		for _, issue := range issues {
			fmt.Printf("broken link: %s -> %s\n", issue.Page, issue.Target)
		}
		return fmt.Errorf("check failed: %d broken internal links", len(issues))
	}

	fmt.Printf("Checked %d pages and %d assets: all internal links resolve\n",
		summary.Pages, summary.Assets)
	return nil
}
