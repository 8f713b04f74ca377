// Package content discovers content files and parses them into Documents.
package content

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// Loader walks a content root and produces Documents and Assets.
type Loader struct {
	root string
}

// NewLoader creates a Loader for the given content root directory.
func NewLoader(root string) *Loader {
	return &Loader{root: root}
}

// Load walks the content root. Every Markdown file becomes a Document; every
// other regular file becomes an Asset. Hidden files and directories are
// skipped. The walk is lexical, so repeated runs over unchanged input yield
// the same Documents in the same order.
//
// Load performs no writes. A document with malformed front matter fails the
// whole load; it is never partially returned.
func (l *Loader) Load() ([]*Document, []Asset, error) {
	var docs []*Document
	var assets []Asset

	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return sgerrors.FileSystem(path, "walk content root", err)
		}
		if strings.HasPrefix(d.Name(), ".") && path != l.root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(l.root, path)
		if relErr != nil {
			return sgerrors.FileSystem(path, "resolve relative path", relErr)
		}
		rel = filepath.ToSlash(rel)

		if !isMarkdown(d.Name()) {
			assets = append(assets, Asset{Path: rel, AbsPath: path})
			return nil
		}

		doc, loadErr := l.loadDocument(path, rel, d)
		if loadErr != nil {
			return loadErr
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Debug("Content loaded", logfields.Pages(len(docs)), logfields.Assets(len(assets)))
	return docs, assets, nil
}

func (l *Loader) loadDocument(path, rel string, d fs.DirEntry) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sgerrors.FileSystem(rel, "read content file", err)
	}

	raw, body, _, err := frontmatter.Split(data)
	if err != nil {
		return nil, sgerrors.MalformedFrontMatter(rel, err)
	}

	matter, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, sgerrors.MalformedFrontMatter(rel, err)
	}

	sum := sha256.Sum256(data)
	doc := &Document{
		Path:        rel,
		Matter:      matter,
		Body:        body,
		Fingerprint: hex.EncodeToString(sum[:]),
	}
	if info, infoErr := d.Info(); infoErr == nil {
		doc.LastMod = info.ModTime()
	}
	return doc, nil
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
