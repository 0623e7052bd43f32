package pagegen

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

// Fragment names one of the four template pieces a page is assembled from.
type Fragment string

const (
	FragmentBase       Fragment = "base"
	FragmentHeader     Fragment = "header"
	FragmentNavigation Fragment = "navigation"
	FragmentFooter     Fragment = "footer"
)

// Fragments lists every fragment in load order.
var Fragments = []Fragment{FragmentBase, FragmentHeader, FragmentNavigation, FragmentFooter}

// FileName returns the file the fragment is read from.
func (f Fragment) FileName() string {
	if f == FragmentBase {
		return "base-template.html"
	}
	return string(f) + ".html"
}

// TemplateSet is the read-only set of loaded fragments.
type TemplateSet struct {
	fragments map[Fragment]string
}

// NewTemplateSet builds a set from in-memory fragments.
func NewTemplateSet(fragments map[Fragment]string) *TemplateSet {
	copied := make(map[Fragment]string, len(fragments))
	for k, v := range fragments {
		copied[k] = v
	}
	return &TemplateSet{fragments: copied}
}

// Get returns a fragment's text and whether it was loaded.
func (s *TemplateSet) Get(f Fragment) (string, bool) {
	if s == nil {
		return "", false
	}
	text, ok := s.fragments[f]
	return text, ok
}

// LoadReport describes the outcome of loading a template directory.
type LoadReport struct {
	Dir     string
	Loaded  []Fragment
	Missing map[Fragment]error
}

// Complete reports whether every fragment was loaded.
func (r *LoadReport) Complete() bool {
	return r == nil || len(r.Missing) == 0
}

// MissingFragments returns the fragments that failed to load, in load order.
func (r *LoadReport) MissingFragments() []Fragment {
	if r == nil {
		return nil
	}
	var out []Fragment
	for _, f := range Fragments {
		if _, ok := r.Missing[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Err returns a classified template error describing every missing fragment, or nil.
func (r *LoadReport) Err() error {
	if r.Complete() {
		return nil
	}
	return r.missingError().Build()
}

// Warning is Err with warning severity, for builds that continue without the
// missing fragments.
func (r *LoadReport) Warning() error {
	if r.Complete() {
		return nil
	}
	return r.missingError().Warning().Build()
}

func (r *LoadReport) missingError() *errors.ErrorBuilder {
	missing := r.MissingFragments()
	causes := make([]error, 0, len(missing))
	names := make([]string, 0, len(missing))
	for _, f := range missing {
		causes = append(causes, fmt.Errorf("%s: %w", f.FileName(), r.Missing[f]))
		names = append(names, string(f))
	}
	return errors.TemplateError("template fragments missing").
		WithCause(stderrors.Join(causes...)).
		WithContext("path", r.Dir).
		WithContext("fragments", names)
}

// LoadTemplates reads the fragment files from dir. Read failures do not abort the
// load; they are recorded in the report and the fragment is left absent.
func LoadTemplates(dir string) (*TemplateSet, *LoadReport) {
	set, report := LoadTemplatesFS(os.DirFS(dir))
	report.Dir = filepath.Clean(dir)
	return set, report
}

// LoadTemplatesFS reads the fragment files from the root of fsys.
func LoadTemplatesFS(fsys fs.FS) (*TemplateSet, *LoadReport) {
	set := &TemplateSet{fragments: make(map[Fragment]string, len(Fragments))}
	report := &LoadReport{Missing: make(map[Fragment]error)}

	for _, f := range Fragments {
		data, err := fs.ReadFile(fsys, f.FileName())
		if err != nil {
			report.Missing[f] = err
			continue
		}
		set.fragments[f] = string(data)
		report.Loaded = append(report.Loaded, f)
	}
	return set, report
}
