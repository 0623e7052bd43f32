// Package linkcheck verifies that the local links of generated pages resolve to
// files in the output tree.
package linkcheck

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

// Link represents an extracted link from HTML content.
type Link struct {
	URL       string // The URL or path as written
	Tag       string // HTML tag (a, img, script, link, ...)
	Attribute string // Attribute containing the link (href, src)
	Rel       string // rel attribute of <link> elements
}

// linkAttrs maps element names to the attribute holding their link.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"source": "src",
	"video":  "src",
	"audio":  "src",
	"iframe": "src",
}

// ExtractLinksFromFile extracts all links from an HTML file.
func ExtractLinksFromFile(htmlPath string) ([]Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open HTML file").
			WithContext("path", htmlPath).
			Build()
	}
	defer func() {
		_ = file.Close()
	}()
	return ExtractLinks(file)
}

// ExtractLinks extracts all links from an HTML reader in document order.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				if val := strings.TrimSpace(getAttr(n, attr)); val != "" {
					links = append(links, Link{
						URL:       val,
						Tag:       n.Data,
						Attribute: attr,
						Rel:       getAttr(n, "rel"),
					})
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

// IsStylesheet reports whether the link loads a stylesheet.
func (l Link) IsStylesheet() bool {
	if l.Tag != "link" {
		return false
	}
	for _, rel := range strings.Fields(strings.ToLower(l.Rel)) {
		if rel == "stylesheet" {
			return true
		}
	}
	return false
}

// IsLocal reports whether the link points at a file of the site itself and
// should be checked on disk. Absolute URLs, protocol-relative URLs, special
// schemes and same-page fragments are not local.
func (l Link) IsLocal() bool {
	raw := l.URL
	if raw == "" || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "//") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && u.Path != ""
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
