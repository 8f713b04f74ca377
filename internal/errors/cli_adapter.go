package errors

import (
	stderrors "errors"
	"fmt"
	"io"
)

// CLIAdapter handles error presentation and exit code determination for the
// sitegen command line.
type CLIAdapter struct {
	verbose bool
}

// NewCLIAdapter creates a new CLI error adapter.
func NewCLIAdapter(verbose bool) *CLIAdapter {
	return &CLIAdapter{verbose: verbose}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	var be *BuildError
	if stderrors.As(err, &be) {
		switch be.Kind {
		case KindConfig:
			return 2 // Invalid configuration or usage
		case KindMalformedFrontMatter, KindUnresolvedFootnote:
			return 3 // Content error
		case KindUnknownLayout, KindLayoutCycle, KindOutputPathCollision:
			return 4 // Assembly error
		case KindFileSystem:
			return 5 // IO error
		default:
			return 10 // Internal error
		}
	}

	return 1
}

// Report prints a single user-facing error line. In verbose mode the
// underlying cause chain is printed on a second line.
func (a *CLIAdapter) Report(w io.Writer, err error) {
	if err == nil {
		return
	}

	var be *BuildError
	if stderrors.As(err, &be) {
		fmt.Fprintf(w, "sitegen: %s\n", be.Error())
		if a.verbose && be.Cause != nil {
			fmt.Fprintf(w, "  caused by: %v\n", be.Cause)
		}
		return
	}
	fmt.Fprintf(w, "sitegen: %v\n", err)
}
