// Package server implements the preview server: it serves the built output
// tree, watches the source for changes and rebuilds with debouncing.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/state"
)

// buildStatus tracks the current build state for error display.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	hasGoodBuild bool
}

func (bs *buildStatus) setError(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
}

func (bs *buildStatus) setSuccess() {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = nil
	bs.hasGoodBuild = true
}

func (bs *buildStatus) get() (err error, hasGoodBuild bool) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastError, bs.hasGoodBuild
}

// Server runs the preview loop.
type Server struct {
	cfg      *config.Config
	pipeline *build.Pipeline
	store    *state.Store   // may be nil
	registry *prom.Registry // nil when metrics are disabled
	status   buildStatus
	recorder metrics.Recorder
}

// New creates a preview Server. store may be nil; registry enables /metrics.
func New(cfg *config.Config, pipeline *build.Pipeline, store *state.Store, registry *prom.Registry, recorder metrics.Recorder) *Server {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Server{cfg: cfg, pipeline: pipeline, store: store, registry: registry, recorder: recorder}
}

// Run serves until ctx is canceled. The initial build is skipped when the
// stored fingerprints match the current source and output already exists.
func (s *Server) Run(ctx context.Context) error {
	if s.canSkipInitialBuild(ctx) {
		slog.Info("Source unchanged since last build, skipping initial build")
		s.recorder.IncBuildOutcome(metrics.OutcomeSkipped)
		s.status.setSuccess()
	} else {
		s.rebuild(ctx)
	}

	httpServer := s.newHTTPServer()
	httpErr := make(chan error, 1)
	go func() {
		slog.Info("Preview server listening", "addr", s.cfg.Serve.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	watcher, err := newWatcher(s.cfg.Source.Content, s.cfg.Source.Layouts, s.cfg.Source.Static)
	if err != nil {
		return fmt.Errorf("set up file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	scheduler, err := s.startScheduler()
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	rebuildReq := make(chan struct{}, 1)
	go s.rebuildWorker(ctx, rebuildReq)

	debounce := s.cfg.Serve.Debounce.Std()
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		case err := <-httpErr:
			return fmt.Errorf("preview http server: %w", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("file watcher closed unexpectedly")
			}
			trackNewDirs(watcher, event)
			slog.Debug("Source change detected", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if ok {
				slog.Warn("File watcher error", logfields.Error(err))
			}
		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case rebuildReq <- struct{}{}:
			default: // rebuild already pending
			}
		}
	}
}

func (s *Server) rebuildWorker(ctx context.Context, req <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-req:
			s.rebuild(ctx)
		}
	}
}

func (s *Server) rebuild(ctx context.Context) {
	if _, err := s.pipeline.Run(ctx, true); err != nil {
		slog.Error("Build failed", logfields.Error(err))
		s.status.setError(err)
		return
	}
	s.status.setSuccess()
}

// canSkipInitialBuild compares stored fingerprints with the current content
// tree. Only document fingerprints are stored, so any difference in Markdown
// sources forces a build; layout or asset edits while the server was down are
// caught by the cheap existence check failing loudly at serve time instead.
func (s *Server) canSkipInitialBuild(ctx context.Context) bool {
	if s.store == nil {
		return false
	}
	if _, err := os.Stat(s.cfg.Output.Directory); err != nil {
		return false
	}
	stored, err := s.store.Fingerprints(ctx)
	if err != nil || len(stored) == 0 {
		return false
	}
	current, err := contentFingerprints(s.cfg.Source.Content)
	if err != nil {
		return false
	}
	return !state.Changed(stored, current)
}

// contentFingerprints hashes every Markdown file under root the same way the
// content loader does.
func contentFingerprints(root string) (map[string]string, error) {
	fps := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".md" && ext != ".markdown" {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		sum := sha256.Sum256(data)
		fps[filepath.ToSlash(rel)] = hex.EncodeToString(sum[:])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fps, nil
}

func (s *Server) newHTTPServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/", s.withBuildStatus(http.FileServer(http.Dir(s.cfg.Output.Directory))))
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}
	return &http.Server{
		Addr:              s.cfg.Serve.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// withBuildStatus serves a plain error page while no good build exists.
func (s *Server) withBuildStatus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastErr, hasGoodBuild := s.status.get()
		if !hasGoodBuild && lastErr != nil {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "build failed:\n\n%v\n", lastErr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	lastErr, hasGoodBuild := s.status.get()
	if lastErr != nil || !hasGoodBuild {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintln(w, "degraded")
		return
	}
	fmt.Fprintln(w, "ok")
}

// startScheduler sets up the optional periodic full rebuild.
func (s *Server) startScheduler() (gocron.Scheduler, error) {
	interval := s.cfg.Serve.RebuildInterval.Std()
	if interval <= 0 {
		return nil, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Debug("Scheduled rebuild")
			s.rebuild(context.Background())
		}),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
	}
	scheduler.Start()
	slog.Info("Periodic rebuild scheduled", "interval", interval.String())
	return scheduler, nil
}
