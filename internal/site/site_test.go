package site

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/testutil/testutils"
)

type spyRecorder struct {
	metrics.NoopRecorder
	pages    map[metrics.ResultLabel]int
	outcomes []metrics.BuildOutcomeLabel
	missing  int
	broken   int
}

func newSpy() *spyRecorder {
	return &spyRecorder{pages: map[metrics.ResultLabel]int{}}
}

func (s *spyRecorder) IncPageResult(r metrics.ResultLabel) { s.pages[r]++ }
func (s *spyRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) {
	s.outcomes = append(s.outcomes, o)
}
func (s *spyRecorder) SetTemplatesMissing(n int)          { s.missing = n }
func (s *spyRecorder) AddBrokenLinks(n int)               { s.broken += n }
func (s *spyRecorder) ObserveBuildDuration(time.Duration) {}

func newProject(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	testutils.WriteTemplates(t, filepath.Join(dir, "templates"))
	cfg := &config.Config{
		BaseDir:   dir,
		Templates: config.TemplatesConfig{Directory: "templates"},
		Output:    config.OutputConfig{Directory: "site"},
	}
	return dir, cfg
}

func TestDepthFor(t *testing.T) {
	cases := map[string]int{
		"index.html":                    0,
		"./index.html":                  0,
		"pages/forms.html":              1,
		"pages/about/leadership.html":   2,
		"pages/conferences/techmun/x.h": 3,
		"/pages/a.html":                 1,
		"":                              0,
	}
	for in, want := range cases {
		require.Equal(t, want, DepthFor(in), in)
	}
}

func TestTitleFromPath(t *testing.T) {
	require.Equal(t, "Guest Speakers", TitleFromPath("pages/conferences/techmun/guest-speakers.html"))
	require.Equal(t, "Position Papers", TitleFromPath("position_papers.html"))
	require.Equal(t, "Techmun", TitleFromPath("pages/conferences/techmun/index.html"))
	require.Equal(t, "Index", TitleFromPath("index.html"))
}

func TestBuild(t *testing.T) {
	dir, cfg := newProject(t)
	testutils.WriteFile(t, dir, "content/leadership.md", "# Our Team\n\nMeet the **board**.\n")
	cfg.Pages = []config.PageConfig{
		{Title: "Home", Output: "index.html", Active: "home", Content: "<p>Welcome</p>"},
		{Output: "pages/about/leadership.html", Active: "leadership", ContentFile: "content/leadership.md"},
		{Title: "Raw", Output: "pages/raw.html", ContentFile: "content/raw.html", Scripts: "<script>x()</script>"},
	}
	testutils.WriteFile(t, dir, "content/raw.html", "<em>as is</em>")

	spy := newSpy()
	report, err := NewBuilder(cfg, WithRecorder(spy)).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"index.html", "pages/about/leadership.html", "pages/raw.html"}, report.Pages)
	require.False(t, report.Degraded())
	require.Nil(t, report.Links)

	site := testutils.NewFileAssertions(t, filepath.Join(dir, "site"))
	site.AssertFileContains("index.html", "<title>Home</title>").
		AssertFileContains("index.html", "<main><p>Welcome</p></main>").
		AssertFileContains("index.html", `href="css/style.css"`).
		AssertFileContains("index.html", `<a href="pages/about/leadership.html" >Leadership</a>`)
	site.AssertFileContains("pages/about/leadership.html", "<title>Leadership</title>").
		AssertFileContains("pages/about/leadership.html", "<strong>board</strong>").
		AssertFileContains("pages/about/leadership.html", `<a href="../../index.html">Home</a>`).
		AssertFileContains("pages/about/leadership.html", `href="../../pages/about/leadership.html" class="active"`).
		AssertFileContains("pages/about/leadership.html", `href="../../pages/about/awards.html"`)
	site.AssertFileContains("pages/raw.html", "<main><em>as is</em></main>").
		AssertFileContains("pages/raw.html", "<script>x()</script></body>").
		AssertFileContains("pages/raw.html", `href="../css/style.css"`)

	require.Equal(t, 3, spy.pages[metrics.ResultSuccess])
	require.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeSuccess}, spy.outcomes)
}

func TestBuildExplicitDepthWins(t *testing.T) {
	dir, cfg := newProject(t)
	zero := 0
	cfg.Pages = []config.PageConfig{{Title: "Flat", Output: "pages/flat.html", Depth: &zero}}

	_, err := NewBuilder(cfg).Build(context.Background())
	require.NoError(t, err)
	testutils.NewFileAssertions(t, filepath.Join(dir, "site")).
		AssertFileContains("pages/flat.html", `<a href="index.html">Home</a>`)
}

func TestBuildDegradedTemplates(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFile(t, dir, "templates/base-template.html", "<title>{{PAGE_TITLE}}</title>{{FOOTER_CONTENT}}")
	cfg := &config.Config{
		BaseDir:   dir,
		Templates: config.TemplatesConfig{Directory: "templates"},
		Output:    config.OutputConfig{Directory: "out"},
		Pages:     []config.PageConfig{{Title: "T", Output: "index.html"}},
	}

	spy := newSpy()
	report, err := NewBuilder(cfg, WithRecorder(spy)).Build(context.Background())
	require.NoError(t, err)
	require.True(t, report.Degraded())
	require.Equal(t, 3, spy.missing)
	require.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeDegraded}, spy.outcomes)
	testutils.NewFileAssertions(t, filepath.Join(dir, "out")).AssertFileEquals("index.html", "<title>T</title>")
}

func TestBuildStrictTemplates(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		BaseDir:   dir,
		Templates: config.TemplatesConfig{Directory: "templates", Strict: true},
		Output:    config.OutputConfig{Directory: "out"},
		Pages:     []config.PageConfig{{Title: "T", Output: "index.html"}},
	}

	spy := newSpy()
	_, err := NewBuilder(cfg, WithRecorder(spy)).Build(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryTemplate))
	require.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeFailed}, spy.outcomes)
}

func TestBuildStopsAtFirstFailure(t *testing.T) {
	dir, cfg := newProject(t)
	cfg.Pages = []config.PageConfig{
		{Title: "One", Output: "one.html"},
		{Title: "Two", Output: "two.html", ContentFile: "content/missing.md"},
		{Title: "Three", Output: "three.html"},
	}

	spy := newSpy()
	report, err := NewBuilder(cfg, WithRecorder(spy)).Build(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryBuild))
	require.Equal(t, []string{"one.html"}, report.Pages)
	require.Equal(t, 1, spy.pages[metrics.ResultFailed])

	testutils.NewFileAssertions(t, filepath.Join(dir, "site")).
		AssertFileExists("one.html").
		AssertNoFile("three.html")
}

func TestBuildCanceled(t *testing.T) {
	_, cfg := newProject(t)
	cfg.Pages = []config.PageConfig{{Title: "One", Output: "one.html"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	spy := newSpy()
	_, err := NewBuilder(cfg, WithRecorder(spy)).Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeCanceled}, spy.outcomes)
}

func TestBuildCleanOutput(t *testing.T) {
	dir, cfg := newProject(t)
	testutils.WriteFile(t, dir, "site/stale.html", "old")
	cfg.Output.Clean = true
	cfg.Pages = []config.PageConfig{{Title: "Home", Output: "index.html"}}

	_, err := NewBuilder(cfg).Build(context.Background())
	require.NoError(t, err)
	testutils.NewFileAssertions(t, filepath.Join(dir, "site")).
		AssertNoFile("stale.html").
		AssertFileExists("index.html")
}

func TestBuildRefusesCleaningProjectDir(t *testing.T) {
	dir, cfg := newProject(t)
	cfg.Output = config.OutputConfig{Directory: ".", Clean: true}
	cfg.Pages = []config.PageConfig{{Title: "Home", Output: "index.html"}}

	_, err := NewBuilder(cfg).Build(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
	testutils.NewFileAssertions(t, dir).AssertDirExists("templates")
}

func TestBuildRefusesCleaningAncestorOfProject(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "scripts")
	testutils.WriteTemplates(t, filepath.Join(project, "templates"))
	testutils.WriteFile(t, project, "precious.txt", "keep me")
	cfg := &config.Config{
		BaseDir:   project,
		Templates: config.TemplatesConfig{Directory: "templates"},
		Output:    config.OutputConfig{Directory: "..", Clean: true},
		Pages:     []config.PageConfig{{Title: "Home", Output: "index.html"}},
	}

	_, err := NewBuilder(cfg).Build(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
	testutils.NewFileAssertions(t, project).
		AssertFileEquals("precious.txt", "keep me").
		AssertDirExists("templates")
}

func TestBuildRefusesCleaningOutputHoldingTemplates(t *testing.T) {
	dir, cfg := newProject(t)
	cfg.Templates.Directory = "site/templates"
	testutils.WriteTemplates(t, filepath.Join(dir, "site", "templates"))
	cfg.Output.Clean = true
	cfg.Pages = []config.PageConfig{{Title: "Home", Output: "index.html"}}

	_, err := NewBuilder(cfg).Build(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
	testutils.NewFileAssertions(t, dir).AssertDirExists("site/templates")
}

func TestWithin(t *testing.T) {
	out := filepath.Join("/srv", "site")
	require.True(t, within(out, out))
	require.True(t, within(out, filepath.Join(out, "templates")))
	require.False(t, within(out, filepath.Join("/srv", "site-src")))
	require.False(t, within(out, "/srv"))
	require.False(t, within(out, filepath.Join("/srv", "..data")))
}

func TestBuildCopiesStaticFilesAfterClean(t *testing.T) {
	dir, cfg := newProject(t)
	testutils.WriteFile(t, dir, "static/assets/css/style.css", "body{}")
	testutils.WriteFile(t, dir, "static/favicon.ico", "icon")
	testutils.WriteFile(t, dir, "site/stale.html", "old")
	cfg.Static.Directory = "static"
	cfg.Output.Clean = true
	cfg.Pages = []config.PageConfig{{Title: "Home", Output: "index.html"}}

	report, err := NewBuilder(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.StaticFiles)
	testutils.NewFileAssertions(t, filepath.Join(dir, "site")).
		AssertNoFile("stale.html").
		AssertFileEquals("assets/css/style.css", "body{}").
		AssertFileEquals("favicon.ico", "icon").
		AssertFileExists("index.html")

	// A second clean build still serves the stylesheet.
	_, err = NewBuilder(cfg).Build(context.Background())
	require.NoError(t, err)
	testutils.NewFileAssertions(t, filepath.Join(dir, "site")).
		AssertFileExists("assets/css/style.css")
}

func TestBuildMissingStaticDirectory(t *testing.T) {
	_, cfg := newProject(t)
	cfg.Static.Directory = "absent"
	cfg.Pages = []config.PageConfig{{Title: "Home", Output: "index.html"}}

	_, err := NewBuilder(cfg).Build(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestBuildRejectsStaticInsideOutput(t *testing.T) {
	dir, cfg := newProject(t)
	testutils.WriteFile(t, dir, "site/static/app.js", "x")
	cfg.Static.Directory = "site/static"
	cfg.Pages = []config.PageConfig{{Title: "Home", Output: "index.html"}}

	_, err := NewBuilder(cfg).Build(context.Background())
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestBuildWithLinkCheck(t *testing.T) {
	dir, cfg := newProject(t)
	testutils.WriteFile(t, dir, "site/css/style.css", "body{}")
	cfg.Check.Enabled = true
	cfg.Pages = []config.PageConfig{
		{Title: "Home", Output: "index.html"},
		{Title: "Leadership", Output: "pages/about/leadership.html"},
		{Title: "Awards", Output: "pages/about/awards.html"},
	}

	spy := newSpy()
	report, err := NewBuilder(cfg, WithRecorder(spy)).Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.Links)
	require.Equal(t, 3, report.Links.Pages)
	require.Empty(t, report.Links.Unstyled)

	// Nested pages reference css at the site root, which is present; calendar is never generated.
	for _, b := range report.Links.Broken {
		require.Equal(t, "pages/events/calendar.html", b.Target)
	}
	require.Len(t, report.Links.Broken, 3)
	require.Equal(t, 3, spy.broken)
}

func TestNavigationOverride(t *testing.T) {
	dir, cfg := newProject(t)
	cfg.Navigation = []config.NavItem{
		{ID: "home", Path: "index.html", Active: true},
		{ID: "leadership", Path: "team.html", Active: true},
	}
	cfg.Pages = []config.PageConfig{{Title: "Team", Output: "team.html", Active: "leadership"}}

	_, err := NewBuilder(cfg).Build(context.Background())
	require.NoError(t, err)
	testutils.NewFileAssertions(t, filepath.Join(dir, "site")).
		AssertFileContains("team.html", `<a href="team.html" class="active">Leadership</a>`).
		AssertFileContains("team.html", `<a href="{{CALENDAR_LINK}}" {{CALENDAR_ACTIVE}}>Calendar</a>`)
}

func TestFind(t *testing.T) {
	_, cfg := newProject(t)
	cfg.Pages = []config.PageConfig{{Title: "A", Output: "pages/a.html"}}
	b := NewBuilder(cfg)

	p, ok := b.Find("./pages/a.html")
	require.True(t, ok)
	require.Equal(t, "A", p.Title)

	_, ok = b.Find("b.html")
	require.False(t, ok)
}

func TestBuildAssignsBuildID(t *testing.T) {
	_, cfg := newProject(t)
	cfg.Pages = []config.PageConfig{{Title: "Home", Output: "index.html"}}

	first, err := NewBuilder(cfg).Build(context.Background())
	require.NoError(t, err)
	second, err := NewBuilder(cfg).Build(context.Background())
	require.NoError(t, err)

	require.Len(t, first.BuildID, 36)
	require.NotEqual(t, first.BuildID, second.BuildID)
}
