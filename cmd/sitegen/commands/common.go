package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/state"
)

// Global carries state shared across subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI defines the command tree and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"site.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the site into the output directory"`
	Serve ServeCmd `cmd:"" help:"Serve the site with live rebuild on change"`
	Check CheckCmd `cmd:"" help:"Build in memory and verify internal links"`
	Init  InitCmd  `cmd:"" help:"Initialize a new site scaffold"`
}

// AfterApply runs after flag parsing; sets up logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// logLevel resolves the log level from the verbose flag and SITEGEN_LOG_LEVEL.
// The environment variable wins so CI can force debug output without flag
// plumbing.
func logLevel(verbose bool) slog.Level {
	if v := os.Getenv("SITEGEN_LOG_LEVEL"); v != "" {
		switch strings.ToLower(v) {
		case "debug":
			return slog.LevelDebug
		case "info":
			return slog.LevelInfo
		case "warn", "warning":
			return slog.LevelWarn
		case "error":
			return slog.LevelError
		}
	}
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// openStore opens the configured build-state store. A store failure is not
// fatal for building; callers log and continue without history.
func openStore(cfg *config.Config) *state.Store {
	store, err := state.Open(cfg.State.Path)
	if err != nil {
		slog.Warn("Build-state store unavailable, continuing without history",
			"path", cfg.State.Path, "error", err)
		return nil
	}
	return store
}
