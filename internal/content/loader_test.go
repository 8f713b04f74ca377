package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_MarkdownAndAssets_Classified(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "posts/hello.md", "---\ntitle: Hello\nlayout: post\n---\nBody\n")
	writeFile(t, root, "img/chip.png", "not really a png")

	docs, assets, err := NewLoader(root).Load()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Len(t, assets, 1)

	require.Equal(t, "posts/hello.md", docs[0].Path)
	require.Equal(t, "Hello", docs[0].Matter.Title)
	require.Equal(t, "post", docs[0].Matter.Layout)
	require.Equal(t, []byte("Body\n"), docs[0].Body)
	require.Equal(t, "img/chip.png", assets[0].Path)
}

func TestLoad_NoFrontMatter_WholeFileIsBody(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "plain.md", "# Just markdown\n")

	docs, _, err := NewLoader(root).Load()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, frontmatter.Matter{}, docs[0].Matter)
	require.Equal(t, []byte("# Just markdown\n"), docs[0].Body)
}

func TestLoad_MalformedFrontMatter_FailsWholeLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "good.md", "---\ntitle: ok\n---\nfine\n")
	writeFile(t, root, "bad.md", "---\ntitle: broken\nno closing delimiter\n")

	docs, assets, err := NewLoader(root).Load()
	require.Error(t, err)
	require.True(t, errors.Is(err, sgerrors.ErrMalformedFrontMatter))
	require.Nil(t, docs)
	require.Nil(t, assets)

	var be *sgerrors.BuildError
	require.True(t, errors.As(err, &be))
	require.Equal(t, "bad.md", be.Document)
}

func TestLoad_EmptyFrontMatterBlock_YieldsEmptyMatter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "empty.md", "---\n---\nbody\n")

	docs, _, err := NewLoader(root).Load()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, frontmatter.Matter{}, docs[0].Matter)
}

func TestLoad_HiddenFilesAndDirs_Skipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".sitegen/state.db", "binary")
	writeFile(t, root, ".draft.md", "---\ntitle: hidden\n---\n")
	writeFile(t, root, "visible.md", "hello\n")

	docs, assets, err := NewLoader(root).Load()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Empty(t, assets)
	require.Equal(t, "visible.md", docs[0].Path)
}

func TestLoad_RepeatedRuns_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.md", "---\ntitle: B\n---\nb\n")
	writeFile(t, root, "a.md", "---\ntitle: A\n---\na\n")
	writeFile(t, root, "sub/c.md", "---\ntitle: C\n---\nc\n")

	first, _, err := NewLoader(root).Load()
	require.NoError(t, err)
	second, _, err := NewLoader(root).Load()
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i].Path, second[i].Path)
		require.Equal(t, first[i].Matter, second[i].Matter)
		require.Equal(t, first[i].Body, second[i].Body)
	}
	require.Equal(t, "a.md", first[0].Path)
	require.Equal(t, "b.md", first[1].Path)
	require.Equal(t, "sub/c.md", first[2].Path)
}
