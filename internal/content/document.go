package content

import (
	"time"

	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
)

// Document is one unit of content: a Markdown file with parsed front matter.
// The loader creates Documents, the renderer fills RenderedBody, and the
// assembler consumes them read-only. Ownership passes linearly along the
// pipeline; nothing mutates a Document concurrently.
type Document struct {
	// Path is the content-root-relative source path, slash separated. It is
	// the Document's identity in logs and error reports.
	Path string

	Matter frontmatter.Matter

	// Body is the raw Markdown with front matter already stripped.
	Body []byte

	// RenderedBody is the HTML fragment produced by the renderer.
	RenderedBody []byte

	// LastMod is the last-modified timestamp, taken from git history when the
	// source tree is a repository and from file mtime otherwise.
	LastMod time.Time

	// Fingerprint is the sha256 of the raw source file, used to detect
	// content changes between builds.
	Fingerprint string
}

// Asset is a non-Markdown file under the content root, copied verbatim into
// the output tree.
type Asset struct {
	Path    string // content-root-relative, slash separated
	AbsPath string
}
