// Package markdown renders page content files written in Markdown to HTML.
package markdown

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Options controls Markdown rendering.
type Options struct {
	// Unsafe passes raw HTML blocks through instead of replacing them with comments.
	Unsafe bool
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
}

// DefaultOptions allows raw HTML, since page content commonly mixes both.
var DefaultOptions = Options{Unsafe: true}

// Renderer converts Markdown to HTML with GitHub Flavored Markdown enabled.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a Renderer for opts.
func NewRenderer(opts Options) *Renderer {
	var rendererOpts []goldmark.Option
	var htmlOpts []renderer.Option
	if opts.Unsafe {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	rendererOpts = append(rendererOpts,
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(htmlOpts...),
	)
	return &Renderer{md: goldmark.New(rendererOpts...)}
}

// Render converts source to HTML.
func (r *Renderer) Render(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// IsMarkdownFile reports whether path has a Markdown extension.
func IsMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}
