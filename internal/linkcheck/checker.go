package linkcheck

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

// BrokenLink is a local link whose target does not exist.
type BrokenLink struct {
	Page   string // page path relative to the checked root
	Link   Link
	Target string // resolved target relative to the root, or the raw path when it escapes
	Reason string
}

func (b BrokenLink) String() string {
	return fmt.Sprintf("%s: %s=%q -> %s (%s)", b.Page, b.Link.Attribute, b.Link.URL, b.Target, b.Reason)
}

// Result summarizes a tree check.
type Result struct {
	Pages    int
	Links    int // local links checked
	Broken   []BrokenLink
	Unstyled []string // pages without any stylesheet link
}

// OK reports whether no broken links were found.
func (r *Result) OK() bool {
	return len(r.Broken) == 0
}

// Err returns a validation error listing broken links, or nil.
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	lines := make([]string, 0, len(r.Broken))
	for _, b := range r.Broken {
		lines = append(lines, b.String())
	}
	return errors.ValidationError("broken links found").
		WithCause(fmt.Errorf("%s", strings.Join(lines, "\n"))).
		WithContext("broken", len(r.Broken)).
		Build()
}

// CheckTree checks every .html file under root.
func CheckTree(ctx context.Context, root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.NewError(errors.CategoryNotFound, "output directory not found").
			WithCause(err).
			WithContext("path", root).
			Build()
	}

	res := &Result{}
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		return res.checkPage(root, path)
	})
	if walkErr != nil {
		return nil, errors.WrapError(walkErr, errors.CategoryFileSystem, "walk output directory").
			WithContext("path", root).
			Build()
	}

	sort.Slice(res.Broken, func(i, j int) bool {
		if res.Broken[i].Page != res.Broken[j].Page {
			return res.Broken[i].Page < res.Broken[j].Page
		}
		return res.Broken[i].Link.URL < res.Broken[j].Link.URL
	})
	sort.Strings(res.Unstyled)
	return res, nil
}

func (r *Result) checkPage(root, pagePath string) error {
	links, err := ExtractLinksFromFile(pagePath)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, pagePath)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)
	r.Pages++

	styled := false
	for _, link := range links {
		if link.IsStylesheet() {
			styled = true
		}
		if !link.IsLocal() {
			continue
		}
		r.Links++
		if broken, ok := checkLink(root, filepath.Dir(pagePath), rel, link); !ok {
			r.Broken = append(r.Broken, broken)
		}
	}
	if !styled {
		r.Unstyled = append(r.Unstyled, rel)
	}
	return nil
}

// checkLink resolves link against pageDir (or root for "/"-prefixed paths).
func checkLink(root, pageDir, pageRel string, link Link) (BrokenLink, bool) {
	broken := BrokenLink{Page: pageRel, Link: link}

	u, err := url.Parse(link.URL)
	if err != nil {
		broken.Target, broken.Reason = link.URL, "unparsable URL"
		return broken, false
	}
	p := u.Path
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}

	base := pageDir
	if strings.HasPrefix(p, "/") {
		base = root
	}
	target := filepath.Join(base, filepath.FromSlash(p))

	targetRel, err := filepath.Rel(root, target)
	if err != nil || targetRel == ".." || strings.HasPrefix(targetRel, ".."+string(filepath.Separator)) {
		broken.Target, broken.Reason = p, "escapes output directory"
		return broken, false
	}
	broken.Target = filepath.ToSlash(targetRel)

	info, err := os.Stat(target)
	if err != nil {
		broken.Reason = "not found"
		return broken, false
	}
	if info.IsDir() {
		if _, err := os.Stat(filepath.Join(target, "index.html")); err != nil {
			broken.Reason = "directory without index.html"
			return broken, false
		}
	}
	return broken, true
}
