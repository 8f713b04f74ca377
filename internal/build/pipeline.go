// Package build orchestrates one pass of the Load → Render → Assemble → Write
// pipeline.
package build

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/gitinfo"
	"git.home.luguber.info/inful/sitegen/internal/layout"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/render"
	"git.home.luguber.info/inful/sitegen/internal/site"
	"git.home.luguber.info/inful/sitegen/internal/state"
)

// Pipeline runs builds for one configuration. It carries no per-build state;
// Run may be called repeatedly (the preview server does).
type Pipeline struct {
	cfg      *config.Config
	recorder metrics.Recorder
	store    *state.Store // nil disables build records and fingerprints
}

// Summary describes one completed build.
type Summary struct {
	BuildID      string
	Tree         site.Tree
	Pages        int
	Assets       int
	Duration     time.Duration
	Fingerprints map[string]string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithStore injects a build-state store.
func WithStore(s *state.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// NewPipeline creates a Pipeline for cfg.
func NewPipeline(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one build. With write set, the assembled tree is materialized
// under the configured output directory; the write happens only after the
// whole tree is assembled, so a failing build leaves the output untouched.
func (p *Pipeline) Run(ctx context.Context, write bool) (*Summary, error) {
	start := time.Now()
	summary, err := p.run(ctx, write)
	elapsed := time.Since(start)

	p.recorder.ObserveBuildDuration(elapsed)
	if err != nil {
		p.recorder.IncBuildOutcome(metrics.OutcomeFailure)
		p.record(ctx, state.BuildRecord{
			ID:        uuid.NewString(),
			StartedAt: start,
			Duration:  elapsed,
			Outcome:   state.OutcomeFailure,
			Error:     err.Error(),
		})
		return nil, err
	}

	summary.Duration = elapsed
	p.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	p.recorder.SetPages(summary.Pages)
	p.recorder.SetAssets(summary.Assets)
	p.record(ctx, state.BuildRecord{
		ID:        summary.BuildID,
		StartedAt: start,
		Duration:  elapsed,
		Pages:     summary.Pages,
		Assets:    summary.Assets,
		Outcome:   state.OutcomeSuccess,
	})
	if p.store != nil {
		if err := p.store.SaveFingerprints(ctx, summary.Fingerprints); err != nil {
			slog.Warn("Failed to save fingerprints", logfields.Error(err))
		}
	}

	slog.Info("Build finished",
		logfields.BuildID(summary.BuildID),
		logfields.Pages(summary.Pages),
		logfields.Assets(summary.Assets),
		logfields.DurationMS(float64(elapsed.Milliseconds())))
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, write bool) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docs, assets, err := content.NewLoader(p.cfg.Source.Content).Load()
	if err != nil {
		return nil, err
	}

	if p.cfg.Build.GitLastMod {
		p.applyGitLastMod(docs)
	}

	staticAssets, err := collectStatic(p.cfg.Source.Static)
	if err != nil {
		return nil, err
	}
	assets = append(assets, staticAssets...)

	layouts, err := layout.LoadDir(p.cfg.Source.Layouts)
	if err != nil {
		return nil, err
	}

	asm := site.NewAssembler(render.New(), layouts, site.Options{
		Site: layout.SiteInfo{
			Title:       p.cfg.Site.Title,
			Description: p.cfg.Site.Description,
			BaseURL:     p.cfg.Site.BaseURL,
		},
		Workers:         p.cfg.Build.Workers,
		CategoryIndexes: p.cfg.Build.CategoryIndexes,
	})
	tree, err := asm.Assemble(docs, assets)
	if err != nil {
		return nil, err
	}

	if write {
		if err := site.Write(p.cfg.Output.Directory, tree, p.cfg.Output.Clean); err != nil {
			return nil, err
		}
	}

	fps := make(map[string]string, len(docs))
	for _, doc := range docs {
		fps[doc.Path] = doc.Fingerprint
	}

	return &Summary{
		BuildID:      uuid.NewString(),
		Tree:         tree,
		Pages:        len(docs),
		Assets:       len(assets),
		Fingerprints: fps,
	}, nil
}

func (p *Pipeline) applyGitLastMod(docs []*content.Document) {
	resolver, err := gitinfo.NewResolver(p.cfg.Source.Content)
	if err != nil {
		if !errors.Is(err, gitinfo.ErrNotRepository) {
			slog.Warn("Failed to open git repository for lastmod", logfields.Error(err))
		}
		return
	}
	for _, doc := range docs {
		if when, ok := resolver.LastModified(doc.Path); ok {
			doc.LastMod = when
		}
	}
}

// collectStatic gathers the static dir as assets. A missing dir is fine.
func collectStatic(dir string) ([]content.Asset, error) {
	var assets []content.Asset
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		assets = append(assets, content.Asset{Path: filepath.ToSlash(rel), AbsPath: path})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, sgerrors.FileSystem(dir, "walk static directory", err)
	}
	return assets, nil
}

func (p *Pipeline) record(ctx context.Context, rec state.BuildRecord) {
	if p.store == nil {
		return
	}
	if err := p.store.RecordBuild(ctx, rec); err != nil {
		slog.Warn("Failed to record build", logfields.Error(err))
	}
}
