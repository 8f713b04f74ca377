package layout

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

func TestLoadDir_MissingDir_YieldsEmptyRegistry(t *testing.T) {
	reg, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.False(t, reg.Has("default"))
}

func TestLoadDir_ParentFromFrontMatter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.html"),
		[]byte("<html><body>{{ .Content }}</body></html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.html"),
		[]byte("---\nlayout: default\n---\n<article>{{ .Content }}</article>"), 0644))

	reg, err := LoadDir(dir)
	require.NoError(t, err)
	require.True(t, reg.Has("default"))
	require.True(t, reg.Has("post"))

	out, err := reg.Apply("p.md", "post", PageData{Content: "<p>hi</p>"})
	require.NoError(t, err)
	require.Equal(t, "<html><body><article><p>hi</p></article></body></html>", out)
}

func TestApply_NoLayoutName_ReturnsContentUnwrapped(t *testing.T) {
	reg := &Registry{layouts: map[string]*Layout{}}
	out, err := reg.Apply("p.md", "", PageData{Content: "<p>bare</p>"})
	require.NoError(t, err)
	require.Equal(t, "<p>bare</p>", out)
}

func TestApply_UnknownLayout_Fails(t *testing.T) {
	reg := &Registry{layouts: map[string]*Layout{}}
	require.NoError(t, reg.Register("default", "", "{{ .Content }}"))

	_, err := reg.Apply("p.md", "missing", PageData{Content: "x"})
	require.Error(t, err)
	require.True(t, errors.Is(err, sgerrors.ErrUnknownLayout))

	var be *sgerrors.BuildError
	require.True(t, errors.As(err, &be))
	require.Equal(t, "p.md", be.Document)
	require.Equal(t, "missing", be.Ref)
}

func TestApply_CycleAtoBtoA_FailsWithLayoutCycle(t *testing.T) {
	reg := &Registry{layouts: map[string]*Layout{}}
	require.NoError(t, reg.Register("a", "b", "A({{ .Content }})"))
	require.NoError(t, reg.Register("b", "a", "B({{ .Content }})"))

	_, err := reg.Apply("p.md", "a", PageData{Content: "x"})
	require.Error(t, err)
	require.True(t, errors.Is(err, sgerrors.ErrLayoutCycle))
}

func TestApply_SelfCycle_Fails(t *testing.T) {
	reg := &Registry{layouts: map[string]*Layout{}}
	require.NoError(t, reg.Register("a", "a", "A({{ .Content }})"))

	_, err := reg.Apply("p.md", "a", PageData{Content: "x"})
	require.True(t, errors.Is(err, sgerrors.ErrLayoutCycle))
}

func TestApply_PageDataAvailableAtEveryLevel(t *testing.T) {
	reg := &Registry{layouts: map[string]*Layout{}}
	require.NoError(t, reg.Register("default", "", "<title>{{ .Title }} - {{ .Site.Title }}</title>{{ .Content }}"))
	require.NoError(t, reg.Register("post", "default", "<h1>{{ .Title }}</h1>{{ .Content }}"))

	out, err := reg.Apply("p.md", "post", PageData{
		Content: "<p>body</p>",
		Title:   "T",
		Site:    SiteInfo{Title: "My Site"},
	})
	require.NoError(t, err)
	require.Equal(t, "<title>T - My Site</title><h1>T</h1><p>body</p>", out)
}
