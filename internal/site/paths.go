package site

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/sitegen/internal/content"
)

var (
	lower      = cases.Lower(language.Und)
	titleCaser = cases.Title(language.English)
	// Decompose, drop combining marks, recompose. Turns "Drömmar" into "Drommar".
	deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify lowercases s, strips diacritics and collapses every run of
// non-alphanumeric characters into a single hyphen.
func Slugify(s string) string {
	folded, _, err := transform.String(deaccent, lower.String(s))
	if err != nil {
		folded = lower.String(s)
	}

	var sb strings.Builder
	pendingHyphen := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingHyphen = false
			sb.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return sb.String()
}

// TitleCase returns s in English title case, used for category display names.
func TitleCase(s string) string {
	return titleCaser.String(s)
}

// OutputPath computes the output-tree-relative path for a document.
//
// An explicit permalink wins: directory-style values (trailing slash or no
// extension) gain index.html, values with an extension are used verbatim.
// Otherwise the path follows convention: categories, then the slug of the
// source filename, as a directory with index.html. A source file named index
// maps onto its directory's index.html directly.
func OutputPath(doc *content.Document) string {
	if p := doc.Matter.Permalink; p != "" {
		p = path.Clean("/" + p)
		if p == "/" {
			return "index.html"
		}
		if path.Ext(p) == "" {
			return strings.TrimPrefix(p, "/") + "/index.html"
		}
		return strings.TrimPrefix(p, "/")
	}

	base := path.Base(doc.Path)
	stem := strings.TrimSuffix(base, path.Ext(base))

	// Categories replace the source directory in the output tree; without
	// them the document keeps its directory placement.
	var parts []string
	if len(doc.Matter.Categories) > 0 {
		for _, c := range doc.Matter.Categories {
			if s := Slugify(c); s != "" {
				parts = append(parts, s)
			}
		}
	} else if dir := path.Dir(doc.Path); dir != "." {
		for _, seg := range strings.Split(dir, "/") {
			if s := Slugify(seg); s != "" {
				parts = append(parts, s)
			}
		}
	}

	if strings.EqualFold(stem, "index") {
		return path.Join(append(parts, "index.html")...)
	}

	parts = append(parts, Slugify(stem))
	return path.Join(append(parts, "index.html")...)
}

// PermalinkFor returns the served URL path for an output path, with the
// trailing index.html elided to its directory form.
func PermalinkFor(outputPath string) string {
	p := "/" + outputPath
	if strings.HasSuffix(p, "/index.html") {
		return strings.TrimSuffix(p, "index.html")
	}
	return p
}
