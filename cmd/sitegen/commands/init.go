package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing files"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	fmt.Printf("Initialized site scaffold; configuration written to %s\n", root.Config)
	fmt.Println("Run 'sitegen build' to generate the site, or 'sitegen serve' to preview it.")
	return nil
}
