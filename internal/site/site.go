// Package site drives the page generator from a loaded configuration.
package site

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/linkcheck"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/markdown"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/pagegen"
)

// Report summarizes a build.
type Report struct {
	BuildID     string
	StaticFiles int      // files copied from the static directory
	Pages       []string // output paths in generation order
	Templates   *pagegen.LoadReport
	Links       *linkcheck.Result // nil unless link checking ran
	Duration    time.Duration
}

// Degraded reports whether pages were generated with missing fragments.
func (r *Report) Degraded() bool {
	return r.Templates != nil && !r.Templates.Complete()
}

// Builder generates every page configured in a Config.
type Builder struct {
	cfg      *config.Config
	recorder metrics.Recorder
	logger   *slog.Logger
	md       *markdown.Renderer
}

// Option customizes a Builder.
type Option func(*Builder)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a builder for cfg.
func NewBuilder(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		md:       markdown.NewRenderer(markdown.DefaultOptions),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Generator creates the page generator configured by the builder's config.
func (b *Builder) Generator() (*pagegen.Generator, error) {
	return b.newGenerator(b.logger)
}

func (b *Builder) newGenerator(logger *slog.Logger) (*pagegen.Generator, error) {
	return pagegen.NewGenerator(b.cfg.TemplatesDir(), b.cfg.OutputDir(),
		pagegen.WithLogger(logger),
		pagegen.WithNavigation(NavTable(b.cfg.Navigation)),
		pagegen.WithStrictTemplates(b.cfg.Templates.Strict))
}

// Build generates all configured pages. It stops at the first failing page.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{BuildID: uuid.NewString()}
	logger := b.logger.With(logfields.BuildID(report.BuildID))

	outcome := metrics.BuildOutcomeFailed
	defer func() {
		report.Duration = time.Since(start)
		b.recorder.ObserveBuildDuration(report.Duration)
		b.recorder.IncBuildOutcome(outcome)
	}()

	if b.cfg.Output.Clean {
		if err := b.cleanOutput(logger); err != nil {
			return report, err
		}
	}

	if b.cfg.Static.Directory != "" {
		n, err := b.copyStatic(ctx, logger)
		report.StaticFiles = n
		if err != nil {
			return report, err
		}
	}

	gen, err := b.newGenerator(logger)
	if err != nil {
		return report, err
	}
	report.Templates = gen.LoadReport()
	b.recorder.SetTemplatesMissing(len(report.Templates.Missing))

	for i, page := range b.cfg.Pages {
		req, err := b.Request(page)
		if err != nil {
			b.recorder.IncPageResult(metrics.ResultFailed)
			return report, err
		}

		pageStart := time.Now()
		if _, err := gen.GeneratePage(ctx, req); err != nil {
			b.recorder.IncPageResult(metrics.ResultFailed)
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
				outcome = metrics.BuildOutcomeCanceled
			}
			logger.Error("Page generation failed",
				logfields.Page(req.Title),
				logfields.OutputPath(req.OutputPath),
				slog.Int("index", i),
				logfields.Error(err))
			return report, err
		}
		b.recorder.ObservePageDuration(time.Since(pageStart))
		b.recorder.IncPageResult(metrics.ResultSuccess)
		report.Pages = append(report.Pages, req.OutputPath)
	}

	if b.cfg.Check.Enabled {
		logger.Info("Checking links", logfields.Stage("linkcheck"), logfields.Path(b.cfg.OutputDir()))
		res, err := linkcheck.CheckTree(ctx, b.cfg.OutputDir())
		if err != nil {
			return report, err
		}
		report.Links = res
		b.recorder.AddBrokenLinks(len(res.Broken))
		for _, broken := range res.Broken {
			logger.Warn("Broken link", logfields.Page(broken.Page), logfields.Path(broken.Link.URL), slog.String("reason", broken.Reason))
		}
	}

	outcome = metrics.BuildOutcomeSuccess
	if report.Degraded() {
		outcome = metrics.BuildOutcomeDegraded
		logger.Warn("Pages built without some template fragments", logfields.Error(report.Templates.Warning()))
	}
	logger.Info("Build completed",
		slog.Int("pages", len(report.Pages)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return report, nil
}

// Request turns a page entry into a generator request.
func (b *Builder) Request(page config.PageConfig) (pagegen.PageRequest, error) {
	content, err := b.content(page)
	if err != nil {
		return pagegen.PageRequest{}, err
	}

	depth := DepthFor(page.Output)
	if page.Depth != nil {
		depth = *page.Depth
	}
	title := page.Title
	if title == "" {
		title = TitleFromPath(page.Output)
	}

	return pagegen.PageRequest{
		Title:                 title,
		MainContent:           content,
		OutputPath:            page.Output,
		Depth:                 depth,
		ActivePage:            page.Active,
		PageSpecificStyles:    page.Styles,
		AdditionalHeadContent: page.Head,
		AdditionalScripts:     page.Scripts,
	}, nil
}

// Find returns the configured page producing output.
func (b *Builder) Find(output string) (config.PageConfig, bool) {
	want := path.Clean(filepath.ToSlash(output))
	for _, p := range b.cfg.Pages {
		if path.Clean(filepath.ToSlash(p.Output)) == want {
			return p, true
		}
	}
	return config.PageConfig{}, false
}

func (b *Builder) content(page config.PageConfig) (string, error) {
	if page.ContentFile == "" {
		return page.Content, nil
	}

	file := b.cfg.ResolvePath(page.ContentFile)
	// #nosec G304 -- content files are listed in the operator's config.
	data, err := os.ReadFile(file)
	if err != nil {
		return "", errors.BuildError("failed to read page content").
			WithCause(err).
			WithContext("path", file).
			WithContext("output_path", page.Output).
			Build()
	}
	if !markdown.IsMarkdownFile(file) {
		return string(data), nil
	}
	html, err := b.md.Render(data)
	if err != nil {
		return "", errors.BuildError("failed to render markdown content").
			WithCause(err).
			WithContext("path", file).
			Build()
	}
	return html, nil
}

func (b *Builder) cleanOutput(logger *slog.Logger) error {
	dir := b.cfg.OutputDir()
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.FileSystemError("resolve output directory").WithCause(err).WithContext("path", dir).Build()
	}
	if abs == filepath.Dir(abs) {
		return errors.ValidationError("refusing to clean the filesystem root").
			WithContext("path", dir).
			Build()
	}
	for _, p := range b.protectedPaths() {
		if within(abs, p) {
			return errors.ValidationError("refusing to clean an output directory that contains project sources").
				WithContext("path", dir).
				WithContext("source", p).
				Build()
		}
	}
	logger.Info("Cleaning output directory", logfields.Path(dir))
	if err := os.RemoveAll(dir); err != nil {
		return errors.FileSystemError("clean output directory").WithCause(err).WithContext("path", dir).Build()
	}
	return nil
}

// protectedPaths lists the absolute project locations a clean must never remove.
func (b *Builder) protectedPaths() []string {
	candidates := []string{b.cfg.BaseDir, b.cfg.TemplatesDir(), b.cfg.StaticDir()}
	if candidates[0] == "" {
		candidates[0] = "."
	}
	for _, page := range b.cfg.Pages {
		candidates = append(candidates, b.cfg.ResolvePath(page.ContentFile))
	}
	var out []string
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if abs, err := filepath.Abs(c); err == nil {
			out = append(out, abs)
		}
	}
	return out
}

// within reports whether p is dir or lies below it.
func within(dir, p string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// copyStatic copies the static directory tree into the output root.
func (b *Builder) copyStatic(ctx context.Context, logger *slog.Logger) (int, error) {
	src := b.cfg.StaticDir()
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return 0, errors.NewError(errors.CategoryNotFound, "static directory not found").
			WithCause(err).
			WithContext("path", src).
			Build()
	}
	absSrc, _ := filepath.Abs(src)
	absOut, _ := filepath.Abs(b.cfg.OutputDir())
	if within(absSrc, absOut) || within(absOut, absSrc) {
		return 0, errors.ValidationError("static and output directories must not overlap").
			WithContext("path", src).
			Build()
	}

	copied := 0
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		if err := copyFile(p, filepath.Join(b.cfg.OutputDir(), rel)); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) {
			return copied, err
		}
		return copied, errors.WrapError(err, errors.CategoryFileSystem, "copy static files").
			WithContext("path", src).
			Build()
	}
	logger.Debug("Static files copied", logfields.Path(src), slog.Int("files", copied))
	return copied, nil
}

func copyFile(src, dst string) error {
	// #nosec G304 -- src is inside the configured static directory.
	f, err := os.Open(src)
	if err != nil {
		return errors.FileSystemError("open static file").WithCause(err).WithContext("path", src).Build()
	}
	defer func() {
		_ = f.Close()
	}()
	return pagegen.WriteFile(dst, f)
}

// NavTable converts configured navigation items, or returns DefaultNavigation when none are given.
func NavTable(items []config.NavItem) pagegen.NavTable {
	if len(items) == 0 {
		return pagegen.DefaultNavigation
	}
	table := make(pagegen.NavTable, 0, len(items))
	for _, it := range items {
		table = append(table, pagegen.NavEntry{ID: it.ID, Path: it.Path, Active: it.Active})
	}
	return table
}

// DepthFor returns the number of directories in outputPath.
func DepthFor(outputPath string) int {
	p := path.Clean(filepath.ToSlash(outputPath))
	if p == "." || p == "/" {
		return 0
	}
	return strings.Count(strings.TrimPrefix(p, "/"), "/")
}

// TitleFromPath derives a page title from the output file name:
// "pages/conferences/techmun/guest-speakers.html" -> "Guest Speakers".
func TitleFromPath(outputPath string) string {
	name := path.Base(filepath.ToSlash(outputPath))
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "index" {
		if dir := path.Dir(filepath.ToSlash(outputPath)); dir != "." && dir != "/" {
			name = path.Base(dir)
		}
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}
