// Package errors provides the structured build error type (BuildError) used
// across the pipeline for classification and user-facing reporting.
package errors

import (
	"fmt"
)

// Kind identifies the failure class of a BuildError.
type Kind string

const (
	// Content loading errors
	KindMalformedFrontMatter Kind = "malformed_front_matter"

	// Rendering errors
	KindUnresolvedFootnote Kind = "unresolved_footnote"

	// Assembly errors
	KindUnknownLayout       Kind = "unknown_layout"
	KindLayoutCycle         Kind = "layout_cycle"
	KindOutputPathCollision Kind = "output_path_collision"

	// Infrastructure errors
	KindConfig     Kind = "config"
	KindFileSystem Kind = "filesystem"
	KindInternal   Kind = "internal"
)

// Severity indicates how critical an error is
type Severity string

const (
	SeverityFatal   Severity = "fatal"   // Stops the build
	SeverityWarning Severity = "warning" // Logged, build continues
)

// BuildError is a structured error carrying the failure kind and the source
// location it originated from. Every pipeline failure aborts the build before
// anything is written; Severity exists so check mode can downgrade advisory
// findings.
type BuildError struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Document string   `json:"document,omitempty"` // source-relative path of the offending document
	Ref      string   `json:"ref,omitempty"`      // offending key, footnote label or layout name
	Cause    error    `json:"-"`
}

// Error implements the error interface
func (e *BuildError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Document != "" {
		msg = fmt.Sprintf("%s: %s: %s", e.Kind, e.Document, e.Message)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// Is matches BuildErrors by kind, so callers can test against the
// package-level sentinels without caring about message or location.
func (e *BuildError) Is(target error) bool {
	other, ok := target.(*BuildError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind && (other.Message == "" || other.Message == e.Message)
}

// Sentinels for errors.Is checks against the failure taxonomy.
var (
	ErrMalformedFrontMatter = &BuildError{Kind: KindMalformedFrontMatter}
	ErrUnresolvedFootnote   = &BuildError{Kind: KindUnresolvedFootnote}
	ErrUnknownLayout        = &BuildError{Kind: KindUnknownLayout}
	ErrLayoutCycle          = &BuildError{Kind: KindLayoutCycle}
	ErrOutputPathCollision  = &BuildError{Kind: KindOutputPathCollision}
)
