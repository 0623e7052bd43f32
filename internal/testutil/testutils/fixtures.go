package testutils

import (
	"os"
	"path/filepath"
	"testing"
)

// Minimal fragments exercising every placeholder the generator fills.
const (
	BaseTemplate = `<!DOCTYPE html><html><head><title>{{PAGE_TITLE}}</title>` +
		`<link rel="stylesheet" href="{{ASSETS_PATH}}css/style.css">{{PAGE_SPECIFIC_STYLES}}{{ADDITIONAL_HEAD_CONTENT}}</head>` +
		`<body>{{HEADER_CONTENT}}<main>{{MAIN_CONTENT}}</main>{{FOOTER_CONTENT}}{{ADDITIONAL_SCRIPTS}}</body></html>`
	HeaderTemplate     = `<header><a href="{{HOME_LINK}}">Home</a>{{NAVIGATION_CONTENT}}</header>`
	NavigationTemplate = `<nav><a href="{{LEADERSHIP_LINK}}" {{LEADERSHIP_ACTIVE}}>Leadership</a>` +
		`<a href="{{CALENDAR_LINK}}" {{CALENDAR_ACTIVE}}>Calendar</a></nav>`
	FooterTemplate = `<footer><a href="{{AWARDS_LINK}}">Awards</a></footer>`
)

// WriteFile writes content to dir/rel, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteTemplates writes the four standard fragments into dir and returns dir.
func WriteTemplates(t *testing.T, dir string) string {
	t.Helper()
	WriteFile(t, dir, "base-template.html", BaseTemplate)
	WriteFile(t, dir, "header.html", HeaderTemplate)
	WriteFile(t, dir, "navigation.html", NavigationTemplate)
	WriteFile(t, dir, "footer.html", FooterTemplate)
	return dir
}
