// Package site assembles rendered documents into the final output tree.
package site

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/sitegen/internal/content"
	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/layout"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

// Tree is the fully assembled site: output-relative path to file content.
// It is computed in memory in one build and discarded; nothing is written
// until the whole tree exists.
type Tree map[string][]byte

// Options configures an Assembler.
type Options struct {
	Site layout.SiteInfo

	// Workers bounds the parallel render pool; <= 0 means NumCPU.
	Workers int

	// CategoryIndexes enables generated listing pages per category.
	CategoryIndexes bool
}

// Assembler renders documents, applies layouts and produces the Tree.
type Assembler struct {
	renderer *render.Renderer
	layouts  *layout.Registry
	opts     Options
}

// NewAssembler creates an Assembler.
func NewAssembler(renderer *render.Renderer, layouts *layout.Registry, opts Options) *Assembler {
	return &Assembler{renderer: renderer, layouts: layouts, opts: opts}
}

// Assemble renders every document, wraps it in its layout chain and claims
// its output path. Documents render in parallel; they share no state. Path
// claiming, layout application and asset placement run serially afterwards so
// collision detection sees the full document set.
func (a *Assembler) Assemble(docs []*content.Document, assets []content.Asset) (Tree, error) {
	if err := a.renderAll(docs); err != nil {
		return nil, err
	}

	tree := Tree{}
	claims := map[string]string{}

	for _, doc := range docs {
		outputPath := OutputPath(doc)
		if other, taken := claims[outputPath]; taken {
			return nil, sgerrors.OutputPathCollision(doc.Path, other, outputPath)
		}
		claims[outputPath] = doc.Path

		page, err := a.layouts.Apply(doc.Path, doc.Matter.Layout, a.pageData(doc, outputPath))
		if err != nil {
			return nil, err
		}
		tree[outputPath] = []byte(page)
		slog.Debug("Page assembled", logfields.Document(doc.Path), logfields.OutputPath(outputPath))
	}

	if a.opts.CategoryIndexes {
		if err := a.addCategoryIndexes(tree, claims, docs); err != nil {
			return nil, err
		}
	}

	for _, asset := range assets {
		if other, taken := claims[asset.Path]; taken {
			return nil, sgerrors.OutputPathCollision(asset.Path, other, asset.Path)
		}
		claims[asset.Path] = asset.Path

		data, err := os.ReadFile(asset.AbsPath)
		if err != nil {
			return nil, sgerrors.FileSystem(asset.Path, "read asset", err)
		}
		tree[asset.Path] = data
	}

	return tree, nil
}

func (a *Assembler) renderAll(docs []*content.Document) error {
	workers := a.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	sem := make(chan struct{}, workers)
	errs := make([]error, len(docs))
	var wg sync.WaitGroup

	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc *content.Document) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := a.renderer.Render(doc.Path, doc.Body)
			if err != nil {
				errs[i] = err
				return
			}
			doc.RenderedBody = res.HTML
		}(i, doc)
	}
	wg.Wait()

	// Documents are in lexical order, so reporting the first slot keeps the
	// failing document stable across runs.
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) pageData(doc *content.Document, outputPath string) layout.PageData {
	return layout.PageData{
		Content:     string(doc.RenderedBody),
		Title:       doc.Matter.Title,
		Description: doc.Matter.Description,
		Permalink:   PermalinkFor(outputPath),
		Categories:  doc.Matter.Categories,
		LastMod:     doc.LastMod,
		Params:      doc.Matter.Params,
		Site:        a.opts.Site,
	}
}

// addCategoryIndexes emits a listing page per category. Authored content wins:
// a category whose index path is already claimed is skipped.
func (a *Assembler) addCategoryIndexes(tree Tree, claims map[string]string, docs []*content.Document) error {
	byCategory := map[string][]*content.Document{}
	var categories []string
	for _, doc := range docs {
		for _, c := range doc.Matter.Categories {
			slug := Slugify(c)
			if slug == "" {
				continue
			}
			if _, seen := byCategory[slug]; !seen {
				categories = append(categories, slug)
			}
			byCategory[slug] = append(byCategory[slug], doc)
		}
	}
	sort.Strings(categories)

	for _, slug := range categories {
		outputPath := slug + "/index.html"
		if _, taken := claims[outputPath]; taken {
			continue
		}

		members := byCategory[slug]
		var sb strings.Builder
		sb.WriteString("<ul class=\"category-index\">\n")
		for _, doc := range members {
			title := doc.Matter.Title
			if title == "" {
				title = doc.Path
			}
			sb.WriteString(fmt.Sprintf("<li><a href=\"%s\">%s</a></li>\n", PermalinkFor(OutputPath(doc)), title))
		}
		sb.WriteString("</ul>\n")

		layoutName := ""
		if a.layouts.Has("default") {
			layoutName = "default"
		}
		page, err := a.layouts.Apply(outputPath, layoutName, layout.PageData{
			Content:   sb.String(),
			Title:     TitleCase(slug),
			Permalink: PermalinkFor(outputPath),
			Site:      a.opts.Site,
		})
		if err != nil {
			return err
		}

		claims[outputPath] = "category:" + slug
		tree[outputPath] = []byte(page)
	}
	return nil
}

// Write materializes the tree under outputRoot. It is the only place in the
// pipeline that writes, and it runs only once the whole tree is assembled.
// With clean set, outputRoot is removed first.
func Write(outputRoot string, tree Tree, clean bool) error {
	if clean {
		if err := os.RemoveAll(outputRoot); err != nil {
			return sgerrors.FileSystem(outputRoot, "clean output root", err)
		}
	}
	if err := os.MkdirAll(outputRoot, 0750); err != nil {
		return sgerrors.FileSystem(outputRoot, "create output root", err)
	}

	paths := make([]string, 0, len(tree))
	for p := range tree {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		target := filepath.Join(outputRoot, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
			return sgerrors.FileSystem(p, "create output directory", err)
		}
		if err := os.WriteFile(target, tree[p], 0644); err != nil {
			return sgerrors.FileSystem(p, "write output file", err)
		}
	}
	return nil
}
