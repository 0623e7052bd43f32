package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/testutil/testutils"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("pagebuilder"),
		kong.Vars{"version": "test"},
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }))
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	err = kctx.Run(&Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Stdout: &out}, &cli)
	return out.String(), err
}

func initProject(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	cfgPath = filepath.Join(dir, config.DefaultConfigFile)
	out, err := run(t, "-c", cfgPath, "init")
	require.NoError(t, err)
	require.Contains(t, out, "initialized successfully")
	return dir, cfgPath
}

func TestInitAndBuild(t *testing.T) {
	dir, cfgPath := initProject(t)

	testutils.NewFileAssertions(t, dir).
		AssertFileExists(config.DefaultConfigFile).
		AssertFileExists("templates/base-template.html").
		AssertFileExists("content/leadership.md")

	out, err := run(t, "-c", cfgPath, "build")
	require.NoError(t, err)
	require.Contains(t, out, "Generated 2 page(s)")
	require.Contains(t, out, "Copied 1 static file(s)")

	testutils.NewFileAssertions(t, filepath.Join(dir, "site")).
		AssertFileContains("index.html", "<title>Home</title>").
		AssertFileContains("index.html", `<a href="index.html" class="active">Home</a>`).
		AssertFileContains("index.html", `href="assets/css/style.css"`).
		AssertFileContains("pages/about/leadership.html", `<h1 id="leadership">Leadership</h1>`).
		AssertFileContains("pages/about/leadership.html", `<a href="../../pages/about/leadership.html" class="active">Leadership</a>`).
		AssertFileContains("pages/about/leadership.html", `href="../../assets/css/style.css"`).
		AssertFileNotContains("pages/about/leadership.html", "{{")
}

func TestInitRefusesOverwrite(t *testing.T) {
	_, cfgPath := initProject(t)

	_, err := run(t, "-c", cfgPath, "init")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = run(t, "-c", cfgPath, "init", "--force")
	require.NoError(t, err)
}

func TestInitDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")
	_, err := run(t, "init", "--dir", dir)
	require.NoError(t, err)
	testutils.NewFileAssertions(t, dir).
		AssertFileExists(config.DefaultConfigFile).
		AssertFileExists("templates/navigation.html").
		AssertFileExists("static/assets/css/style.css").
		AssertNoFile("site")
}

func TestBuildOverridesAndMetrics(t *testing.T) {
	dir, cfgPath := initProject(t)
	outDir := filepath.Join(dir, "public")
	textfile := filepath.Join(dir, "metrics", "pagebuilder.prom")

	_, err := run(t, "-c", cfgPath, "build", "-o", outDir, "--metrics-textfile", textfile)
	require.NoError(t, err)

	testutils.NewFileAssertions(t, outDir).AssertFileExists("index.html")
	testutils.NewFileAssertions(t, dir).
		AssertNoFile("site/index.html").
		AssertFileContains("metrics/pagebuilder.prom", `pagebuilder_page_results_total{result="success"} 2`).
		AssertFileContains("metrics/pagebuilder.prom", `pagebuilder_build_outcomes_total{outcome="success"} 1`)
}

func TestBuildWithCheckReportsBrokenLinks(t *testing.T) {
	_, cfgPath := initProject(t)

	// the starter navigation links pages the example config does not generate
	out, err := run(t, "-c", cfgPath, "build", "--check")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.Contains(t, out, "broken: ")
	require.Contains(t, out, "pages/events/calendar.html")
}

func TestBuildMissingConfig(t *testing.T) {
	_, err := run(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "build")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.Equal(t, 7, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestRender(t *testing.T) {
	dir, cfgPath := initProject(t)

	out, err := run(t, "-c", cfgPath, "render", "pages/about/leadership.html")
	require.NoError(t, err)
	require.Contains(t, out, "<title>Leadership</title>")
	require.Contains(t, out, `href="../../index.html"`)

	out, err = run(t, "-c", cfgPath, "render", "pages/about/leadership.html", "--depth", "0", "--active", "home")
	require.NoError(t, err)
	require.Contains(t, out, `<a href="index.html" class="active">Home</a>`)

	// render never writes
	testutils.NewFileAssertions(t, dir).AssertNoFile("site/pages/about/leadership.html")

	_, err = run(t, "-c", cfgPath, "render", "nope.html")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestCheck(t *testing.T) {
	siteDir := t.TempDir()
	testutils.WriteFile(t, siteDir, "style.css", "body{}")
	testutils.WriteFile(t, siteDir, "index.html", `<link rel="stylesheet" href="style.css"><a href="pages/a.html">a</a>`)
	testutils.WriteFile(t, siteDir, "pages/a.html", `<a href="../index.html">home</a>`)

	out, err := run(t, "check", siteDir)
	require.NoError(t, err)
	require.Contains(t, out, "Checked 3 link(s) in 2 page(s)")
	require.Contains(t, out, "unstyled: pages/a.html")

	_, err = run(t, "check", siteDir, "--fail-on-unstyled")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))

	require.NoError(t, os.Remove(filepath.Join(siteDir, "pages", "a.html")))
	out, err = run(t, "check", siteDir)
	require.Error(t, err)
	require.Contains(t, out, "broken: index.html")
}

func TestWatchPaths(t *testing.T) {
	cfg := &config.Config{
		BaseDir:   "/project",
		Templates: config.TemplatesConfig{Directory: "templates"},
		Static:    config.StaticConfig{Directory: "static"},
		Pages: []config.PageConfig{
			{Output: "a.html", ContentFile: "content/a.md"},
			{Output: "b.html", ContentFile: "content/b.md"},
			{Output: "c.html", Content: "<p>c</p>"},
		},
	}
	require.Equal(t, []string{
		"/project/pagebuilder.yaml",
		filepath.Join("/project", "templates"),
		filepath.Join("/project", "static"),
		filepath.Join("/project", "content"),
	}, WatchPaths("/project/pagebuilder.yaml", cfg))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, config.LoggingConfig{Level: "WARNING", Format: "json"}, false)
	logger.Info("hidden")
	logger.Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.True(t, strings.HasPrefix(buf.String(), "{"))
	require.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger = NewLogger(&buf, config.LoggingConfig{Level: "error"}, true)
	logger.Debug("verbose wins")
	require.Contains(t, buf.String(), "level=DEBUG")
}
