// Package layout loads named HTML layouts and applies them to rendered
// content, walking parent chains from innermost to outermost.
package layout

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
)

// Layout is a named template with a single insertion point ({{ .Content }}).
// A layout may name a parent layout in its own front matter, forming a chain
// that must be acyclic.
type Layout struct {
	Name   string
	Parent string
	tmpl   *template.Template
}

// SiteInfo is the site-wide data exposed to layout templates as .Site.
type SiteInfo struct {
	Title       string
	Description string
	BaseURL     string
}

// PageData is the data a layout template is executed with.
type PageData struct {
	Content     string
	Title       string
	Description string
	Permalink   string
	Categories  []string
	LastMod     time.Time
	Params      map[string]any
	Site        SiteInfo
}

// Registry maps layout names to Layouts.
type Registry struct {
	layouts map[string]*Layout
}

// LoadDir loads every .html file in dir as a layout named after its base
// filename. A layout file may begin with a front matter block whose `layout`
// key names its parent. A missing dir yields an empty registry.
func LoadDir(dir string) (*Registry, error) {
	reg := &Registry{layouts: map[string]*Layout{}}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return reg, nil
	}
	if err != nil {
		return nil, sgerrors.FileSystem(dir, "read layouts directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".html") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		path := filepath.Join(dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, sgerrors.FileSystem(path, "read layout file", err)
		}

		raw, body, _, err := frontmatter.Split(data)
		if err != nil {
			return nil, sgerrors.MalformedFrontMatter(filepath.ToSlash(path), err)
		}
		matter, err := frontmatter.Parse(raw)
		if err != nil {
			return nil, sgerrors.MalformedFrontMatter(filepath.ToSlash(path), err)
		}

		tmpl, err := template.New(name).Parse(string(body))
		if err != nil {
			return nil, sgerrors.Config(fmt.Sprintf("parse layout %q", name), err)
		}

		reg.layouts[name] = &Layout{Name: name, Parent: matter.Layout, tmpl: tmpl}
	}
	return reg, nil
}

// Register adds a layout built from a template body. Used by tests and by
// init scaffolding.
func (r *Registry) Register(name, parent, body string) error {
	tmpl, err := template.New(name).Parse(body)
	if err != nil {
		return sgerrors.Config(fmt.Sprintf("parse layout %q", name), err)
	}
	r.layouts[name] = &Layout{Name: name, Parent: parent, tmpl: tmpl}
	return nil
}

// Has reports whether a layout with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.layouts[name]
	return ok
}

// Apply wraps data.Content in the named layout and its ancestors, innermost
// first. docPath is used for error reporting only.
//
// An unregistered name fails with UnknownLayout; a parent chain revisiting a
// name on the current path fails with LayoutCycle.
func (r *Registry) Apply(docPath, name string, data PageData) (string, error) {
	content := data.Content
	onPath := map[string]bool{}
	var chain []string

	for current := name; current != ""; {
		if onPath[current] {
			return "", sgerrors.LayoutCycle(docPath, append(chain, current))
		}
		l, ok := r.layouts[current]
		if !ok {
			return "", sgerrors.UnknownLayout(docPath, current)
		}
		onPath[current] = true
		chain = append(chain, current)

		data.Content = content
		var buf bytes.Buffer
		if err := l.tmpl.Execute(&buf, data); err != nil {
			return "", &sgerrors.BuildError{
				Kind:     sgerrors.KindInternal,
				Severity: sgerrors.SeverityFatal,
				Message:  fmt.Sprintf("execute layout %q", current),
				Document: docPath,
				Ref:      current,
				Cause:    err,
			}
		}
		content = buf.String()
		current = l.Parent
	}
	return content, nil
}
