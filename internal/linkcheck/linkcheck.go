// Package linkcheck verifies that internal links in an assembled site point
// at paths that exist in the output tree.
package linkcheck

import (
	"bytes"
	"net/url"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitegen/internal/site"
)

// Issue is one broken internal link.
type Issue struct {
	Page   string // output path of the page containing the link
	Target string // the href/src as written
}

// Link is an extracted link-like attribute from an HTML page.
type Link struct {
	URL       string
	Tag       string
	Attribute string
}

var linkAttrs = map[string]string{
	"a":      "href",
	"img":    "src",
	"link":   "href",
	"script": "src",
}

// ExtractLinks extracts link-like attributes from an HTML document.
func ExtractLinks(data []byte) ([]Link, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				for _, a := range n.Attr {
					if a.Key == attr && a.Val != "" {
						links = append(links, Link{URL: a.Val, Tag: n.Data, Attribute: attr})
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

// Verify checks every internal link in the tree's HTML pages. Pages are
// visited in sorted order, so output is deterministic.
func Verify(tree site.Tree) ([]Issue, error) {
	pages := make([]string, 0, len(tree))
	for p := range tree {
		if strings.HasSuffix(p, ".html") {
			pages = append(pages, p)
		}
	}
	sort.Strings(pages)

	var issues []Issue
	for _, page := range pages {
		links, err := ExtractLinks(tree[page])
		if err != nil {
			return nil, err
		}
		for _, link := range links {
			target, internal := resolveInternal(page, link.URL)
			if !internal {
				continue
			}
			if !exists(tree, target) {
				issues = append(issues, Issue{Page: page, Target: link.URL})
			}
		}
	}
	return issues, nil
}

// resolveInternal resolves a link against its page and reports whether it is
// internal to the site. Scheme-qualified and protocol-relative URLs, mailto
// links and pure fragments are external or ignorable.
func resolveInternal(page, raw string) (string, bool) {
	if raw == "" || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "//") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}

	p := u.Path
	if p == "" {
		return "", false
	}
	if !strings.HasPrefix(p, "/") {
		p = path.Join("/", path.Dir(page), p)
	}
	return strings.TrimPrefix(path.Clean(p), "/"), true
}

func exists(tree site.Tree, target string) bool {
	if target == "" {
		target = "index.html"
	}
	if _, ok := tree[target]; ok {
		return true
	}
	if _, ok := tree[path.Join(target, "index.html")]; ok {
		return true
	}
	return false
}
