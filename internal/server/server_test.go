package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/state"
)

func TestContentFingerprints_MarkdownOnlyAndStable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("alpha"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pic.png"), []byte("img"), 0644))

	first, err := contentFingerprints(root)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Contains(t, first, "a.md")

	second, err := contentFingerprints(root)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("changed"), 0644))
	third, err := contentFingerprints(root)
	require.NoError(t, err)
	require.True(t, state.Changed(first, third))
}

func TestHealthz_DegradedUntilGoodBuild(t *testing.T) {
	s := New(&config.Config{}, nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.status.setSuccess()
	rec = httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWithBuildStatus_ErrorPageBeforeFirstGoodBuild(t *testing.T) {
	s := New(&config.Config{}, nil, nil, nil, nil)
	s.status.setError(errors.New("boom"))

	handler := s.withBuildStatus(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "boom")

	// After one good build, later failures keep serving the last good site.
	s.status.setSuccess()
	s.status.setError(errors.New("later"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCanSkipInitialBuild(t *testing.T) {
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	outputDir := filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(contentDir, 0750))
	require.NoError(t, os.MkdirAll(outputDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "a.md"), []byte("alpha"), 0644))

	cfg := &config.Config{
		Source: config.SourceConfig{Content: contentDir},
		Output: config.OutputConfig{Directory: outputDir},
	}
	store, err := state.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	s := New(cfg, build.NewPipeline(cfg), store, nil, nil)
	ctx := context.Background()

	// No stored fingerprints yet.
	require.False(t, s.canSkipInitialBuild(ctx))

	fps, err := contentFingerprints(contentDir)
	require.NoError(t, err)
	require.NoError(t, store.SaveFingerprints(ctx, fps))
	require.True(t, s.canSkipInitialBuild(ctx))

	// Source edit invalidates the skip.
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "a.md"), []byte("edited"), 0644))
	require.False(t, s.canSkipInitialBuild(ctx))
}
