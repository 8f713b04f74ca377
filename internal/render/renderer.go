// Package render converts Markdown document bodies into HTML fragments.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

// Renderer converts Markdown bodies to HTML. It is safe for concurrent use;
// goldmark instances are stateless across Convert calls.
type Renderer struct {
	md goldmark.Markdown
}

// Result is the outcome of rendering one document body.
type Result struct {
	HTML []byte

	// UnusedFootnotes lists footnote definitions that were never referenced.
	// Unused definitions are advisory, not fatal.
	UnusedFootnotes []string
}

// New creates a Renderer.
//
// WithUnsafe is required: the footnote pass injects raw HTML anchors into the
// Markdown source before conversion. Code found inside fenced blocks is opaque
// payload; goldmark escapes it and nothing ever executes it.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithUnsafe(),
			),
		),
	}
}

// Render converts one document body to HTML. path is used only for error
// reporting. Identical input always yields byte-identical output: footnotes
// are emitted in first-occurrence order and goldmark itself is deterministic.
func (r *Renderer) Render(path string, body []byte) (Result, error) {
	notes, cleaned, unused, err := extractFootnotes(path, body)
	if err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	if err := r.md.Convert(cleaned, &buf); err != nil {
		return Result{}, &sgerrors.BuildError{
			Kind:     sgerrors.KindInternal,
			Severity: sgerrors.SeverityFatal,
			Message:  "markdown conversion failed",
			Document: path,
			Cause:    err,
		}
	}

	html := buf.Bytes()
	if len(notes) > 0 {
		html = append(html, r.footnoteSection(path, notes)...)
	}

	return Result{HTML: html, UnusedFootnotes: unused}, nil
}

// footnoteSection renders the ordered footnote list appended after the body.
func (r *Renderer) footnoteSection(path string, notes []footnote) []byte {
	var buf bytes.Buffer
	buf.WriteString("<div class=\"footnotes\">\n<hr>\n<ol>\n")
	for _, n := range notes {
		buf.WriteString(fmt.Sprintf("<li id=\"fn:%s\">", n.label))

		var rendered bytes.Buffer
		if err := r.md.Convert([]byte(n.text), &rendered); err != nil {
			// Conversion of a bare definition line cannot realistically fail;
			// fall back to the raw text escaped by goldmark on the main body.
			rendered.Reset()
			rendered.WriteString("<p>" + n.text + "</p>\n")
		}
		backref := fmt.Sprintf("&#160;<a href=\"#fnref:%s\" class=\"footnote-backref\">&#8617;</a>", n.label)
		note := bytes.TrimRight(rendered.Bytes(), "\n")
		if bytes.HasSuffix(note, []byte("</p>")) {
			note = append(note[:len(note)-len("</p>")], []byte(backref+"</p>")...)
		} else {
			note = append(note, []byte(backref)...)
		}
		buf.Write(note)
		buf.WriteString("</li>\n")
	}
	buf.WriteString("</ol>\n</div>\n")
	return buf.Bytes()
}
