package render

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	sgerrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

func TestRender_Headings_EmittedByHashDepth(t *testing.T) {
	res, err := New().Render("doc.md", []byte("# Top\n\n## Nested\n"))
	require.NoError(t, err)
	html := string(res.HTML)
	require.Contains(t, html, "<h1")
	require.Contains(t, html, ">Top</h1>")
	require.Contains(t, html, "<h2")
	require.Contains(t, html, ">Nested</h2>")
}

func TestRender_EmphasisStrongAndInlineCode(t *testing.T) {
	res, err := New().Render("doc.md", []byte("Some *em*, **strong** and `code` text.\n"))
	require.NoError(t, err)
	html := string(res.HTML)
	require.Contains(t, html, "<em>em</em>")
	require.Contains(t, html, "<strong>strong</strong>")
	require.Contains(t, html, "<code>code</code>")
}

func TestRender_FencedCodeBlock_LanguageTagPreservedAndEscaped(t *testing.T) {
	body := "```python\nclass Inverter(m.Circuit):\n    io = m.IO(I=m.In(m.Bit))\n    print(\"a < b\")\n```\n"
	res, err := New().Render("doc.md", []byte(body))
	require.NoError(t, err)
	html := string(res.HTML)
	require.Contains(t, html, `<code class="language-python">`)
	require.Contains(t, html, "a &lt; b")
	require.NotContains(t, html, "a < b\"")
}

func TestRender_InlineAndReferenceLinks(t *testing.T) {
	body := "See [inline](https://example.com/a) and [ref][1].\n\n[1]: https://example.com/b\n"
	res, err := New().Render("doc.md", []byte(body))
	require.NoError(t, err)
	html := string(res.HTML)
	require.Contains(t, html, `<a href="https://example.com/a">inline</a>`)
	require.Contains(t, html, `<a href="https://example.com/b">ref</a>`)
}

func TestRender_Lists(t *testing.T) {
	body := "- one\n- two\n\n1. first\n2. second\n"
	res, err := New().Render("doc.md", []byte(body))
	require.NoError(t, err)
	html := string(res.HTML)
	require.Contains(t, html, "<ul>")
	require.Contains(t, html, "<ol>")
	require.Contains(t, html, "<li>one</li>")
	require.Contains(t, html, "<li>first</li>")
}

func TestRender_Footnotes_NumberedByFirstOccurrence(t *testing.T) {
	body := "Alpha[^b] beta[^a] again[^b].\n\n[^a]: note a\n[^b]: note b\n"
	res, err := New().Render("doc.md", []byte(body))
	require.NoError(t, err)
	html := string(res.HTML)

	// [^b] appears first in the body, so it gets display index 1 even though
	// it is defined second.
	require.Contains(t, html, `<sup id="fnref:b"><a href="#fn:b" class="footnote-ref">1</a></sup>`)
	require.Contains(t, html, `<sup id="fnref:a"><a href="#fn:a" class="footnote-ref">2</a></sup>`)

	// Footnote section ordered by display index: b before a.
	require.Less(t, strings.Index(html, `id="fn:b"`), strings.Index(html, `id="fn:a"`))
	require.Contains(t, html, "note a")
	require.Contains(t, html, "note b")
}

func TestRender_UnresolvedFootnote_FailsDocument(t *testing.T) {
	_, err := New().Render("doc.md", []byte("Hello [^missing]\n"))
	require.Error(t, err)
	require.True(t, errors.Is(err, sgerrors.ErrUnresolvedFootnote))

	var be *sgerrors.BuildError
	require.True(t, errors.As(err, &be))
	require.Equal(t, "doc.md", be.Document)
	require.Equal(t, "missing", be.Ref)
}

func TestRender_UnusedFootnoteDefinition_WarnsNotFails(t *testing.T) {
	body := "Hello [^used]\n\n[^used]: u\n[^orphan]: o\n"
	res, err := New().Render("doc.md", []byte(body))
	require.NoError(t, err)
	require.Equal(t, []string{"orphan"}, res.UnusedFootnotes)
	require.NotContains(t, string(res.HTML), "fn:orphan")
}

func TestRender_FootnoteMarkerInsideCode_IsOpaque(t *testing.T) {
	body := "Regex like `[^abc]` and fenced:\n\n```\nmatch [^xyz]\n```\n\nreal[^1]\n\n[^1]: real note\n"
	res, err := New().Render("doc.md", []byte(body))
	require.NoError(t, err)
	html := string(res.HTML)
	require.Contains(t, html, "fnref:1")
	require.Contains(t, html, "[^abc]")
	require.Contains(t, html, "[^xyz]")
	require.NotContains(t, html, "fnref:abc")
	require.NotContains(t, html, "fnref:xyz")
}

func TestRender_Deterministic_ByteIdentical(t *testing.T) {
	body := "# T\n\nHello[^z] and[^y]\n\n[^y]: why\n[^z]: zed\n\n- a\n- b\n"
	first, err := New().Render("doc.md", []byte(body))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := New().Render("doc.md", []byte(body))
		require.NoError(t, err)
		require.Equal(t, first.HTML, again.HTML)
	}
}

func TestRender_ParagraphRoundTrip_TextRecovered(t *testing.T) {
	body := "Plain first paragraph.\n\nSecond paragraph here.\n"
	res, err := New().Render("doc.md", []byte(body))
	require.NoError(t, err)

	stripped := regexp.MustCompile(`<[^>]+>`).ReplaceAllString(string(res.HTML), "")
	normalize := func(s string) string { return strings.Join(strings.Fields(s), " ") }
	require.Equal(t, normalize(body), normalize(stripped))
}

func TestRender_MultilineFootnoteDefinition_Joined(t *testing.T) {
	body := "ref[^n]\n\n[^n]: first line\n    continued line\n"
	res, err := New().Render("doc.md", []byte(body))
	require.NoError(t, err)
	html := string(res.HTML)
	require.Contains(t, html, "first line continued line")
}
