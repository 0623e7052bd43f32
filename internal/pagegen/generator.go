package pagegen

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
)

// Placeholder names filled by the generator.
const (
	NavigationContentKey     = "NAVIGATION_CONTENT"
	PageTitleKey             = "PAGE_TITLE"
	MainContentKey           = "MAIN_CONTENT"
	HeaderContentKey         = "HEADER_CONTENT"
	FooterContentKey         = "FOOTER_CONTENT"
	PageSpecificStylesKey    = "PAGE_SPECIFIC_STYLES"
	AdditionalHeadContentKey = "ADDITIONAL_HEAD_CONTENT"
	AdditionalScriptsKey     = "ADDITIONAL_SCRIPTS"
)

const (
	DefaultTemplatesDir = "templates"
	DefaultOutputRoot   = "."
)

// PageRequest configures a single page. OutputPath is relative to the output root
// and Depth must match its nesting for links to resolve; neither is cross-checked.
type PageRequest struct {
	Title                 string
	MainContent           string
	OutputPath            string
	Depth                 int
	ActivePage            string
	PageSpecificStyles    string
	AdditionalHeadContent string
	AdditionalScripts     string
}

// RenderedPage is the final HTML of a page and the file it was written to.
type RenderedPage struct {
	HTML string
	Path string
}

// Generator renders pages from a fixed TemplateSet. It holds no mutable state
// and may be shared between goroutines writing distinct output paths.
type Generator struct {
	templates  *TemplateSet
	report     *LoadReport
	outputRoot string
	nav        NavTable
	strict     bool
	logger     *slog.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for generation and degraded-template warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithNavigation replaces DefaultNavigation.
func WithNavigation(table NavTable) Option {
	return func(g *Generator) {
		if len(table) > 0 {
			g.nav = table
		}
	}
}

// WithStrictTemplates makes NewGenerator fail when any fragment is missing.
func WithStrictTemplates(strict bool) Option {
	return func(g *Generator) { g.strict = strict }
}

// New creates a generator over an already loaded template set.
func New(templates *TemplateSet, outputRoot string, opts ...Option) *Generator {
	if outputRoot == "" {
		outputRoot = DefaultOutputRoot
	}
	g := &Generator{
		templates:  templates,
		report:     &LoadReport{},
		outputRoot: outputRoot,
		nav:        DefaultNavigation,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGenerator loads the fragments from templatesDir and returns a generator
// writing under outputRoot. Missing fragments are logged and tolerated unless
// WithStrictTemplates(true) is given; LoadReport exposes what was loaded.
func NewGenerator(templatesDir, outputRoot string, opts ...Option) (*Generator, error) {
	if templatesDir == "" {
		templatesDir = DefaultTemplatesDir
	}
	set, report := LoadTemplates(templatesDir)
	g := New(set, outputRoot, opts...)
	g.report = report

	if report.Complete() {
		g.logger.Debug("Templates loaded", logfields.TemplatesDir(report.Dir), slog.Int("fragments", len(report.Loaded)))
		return g, nil
	}
	if g.strict {
		return nil, report.Err()
	}
	for _, f := range report.MissingFragments() {
		g.logger.Warn("Template fragment could not be loaded; pages will render without it",
			logfields.Fragment(string(f)),
			logfields.Path(f.FileName()),
			logfields.TemplatesDir(report.Dir),
			logfields.Error(report.Missing[f]))
	}
	return g, nil
}

// LoadReport returns the outcome of the template load.
func (g *Generator) LoadReport() *LoadReport {
	return g.report
}

// OutputRoot returns the directory pages are written under.
func (g *Generator) OutputRoot() string {
	return g.outputRoot
}

// Navigation returns the navigation table in use.
func (g *Generator) Navigation() NavTable {
	return g.nav
}

// Render assembles the page HTML without writing it.
func (g *Generator) Render(req PageRequest) string {
	nav := g.nav.NavigationFor(req.Depth, req.ActivePage)
	navVars := nav.Variables()

	navigation := Substitute(g.fragment(FragmentNavigation), navVars)

	headerVars := navVars.Clone().Set(NavigationContentKey, navigation)
	header := Substitute(g.fragment(FragmentHeader), headerVars)

	footer := Substitute(g.fragment(FragmentFooter), navVars)

	pageVars := NewVariables().
		Set(PageTitleKey, req.Title).
		Set(MainContentKey, req.MainContent).
		Set(HeaderContentKey, header).
		Set(FooterContentKey, footer).
		Set(PageSpecificStylesKey, req.PageSpecificStyles).
		Set(AdditionalHeadContentKey, req.AdditionalHeadContent).
		Set(AdditionalScriptsKey, req.AdditionalScripts).
		Set(AssetsPathKey, nav.AssetsPath)

	return Substitute(g.fragment(FragmentBase), pageVars)
}

// GeneratePage renders req and writes it to <outputRoot>/<OutputPath>, replacing
// any existing file. Write failures are returned as filesystem errors naming the path.
func (g *Generator) GeneratePage(ctx context.Context, req PageRequest) (*RenderedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "page generation canceled").
			WithContext("output_path", req.OutputPath).
			Build()
	}

	fullPath, err := ResolveOutputPath(g.outputRoot, req.OutputPath)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	html := g.Render(req)
	if err := WritePage(fullPath, html); err != nil {
		return nil, err
	}

	g.logger.Info("Generated page",
		logfields.OutputPath(req.OutputPath),
		logfields.Depth(req.Depth),
		logfields.ActivePage(req.ActivePage),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))

	return &RenderedPage{HTML: html, Path: fullPath}, nil
}

// fragment returns the named fragment, or "" with a warning when it was not loaded.
func (g *Generator) fragment(f Fragment) string {
	text, ok := g.templates.Get(f)
	if !ok {
		g.logger.Warn("Rendering with absent template fragment", logfields.Fragment(string(f)))
	}
	return text
}
