package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/metrics"
	"git.home.luguber.info/inful/pagebuilder/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output          string `short:"o" help:"Override output.directory from the configuration" type:"path"`
	Clean           bool   `help:"Remove the output directory before building"`
	Check           bool   `help:"Check links after building; broken links fail the build"`
	MetricsTextfile string `name:"metrics-textfile" help:"Write Prometheus metrics to this file after the build" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	b.apply(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunBuild(ctx, g, cfg)
}

// apply layers command-line overrides onto cfg.
func (b *BuildCmd) apply(cfg *config.Config) {
	if b.Output != "" {
		// flag paths are already absolute; ResolvePath leaves them alone
		cfg.Output.Directory = b.Output
	}
	if b.Clean {
		cfg.Output.Clean = true
	}
	if b.Check {
		cfg.Check.Enabled = true
	}
	if b.MetricsTextfile != "" {
		cfg.Metrics.Textfile = b.MetricsTextfile
	}
}

// RunBuild builds every configured page, prints a summary and writes metrics
// when a textfile is configured.
func RunBuild(ctx context.Context, g *Global, cfg *config.Config) (err error) {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Textfile != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		textfile := cfg.ResolvePath(cfg.Metrics.Textfile)
		defer func() {
			if werr := metrics.WriteTextfile(reg, textfile); werr != nil {
				if err == nil {
					err = werr
				} else {
					g.Logger.Warn("Metrics textfile not written", logfields.Path(textfile), logfields.Error(werr))
				}
			}
		}()
	}

	out := g.stdout()
	report, err := site.NewBuilder(cfg, site.WithRecorder(recorder), site.WithLogger(g.Logger)).Build(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Generated %d page(s) in %s (%s)\n", len(report.Pages), cfg.OutputDir(), report.Duration.Round(time.Millisecond))
	if report.StaticFiles > 0 {
		_, _ = fmt.Fprintf(out, "Copied %d static file(s) from %s\n", report.StaticFiles, cfg.StaticDir())
	}
	if report.Degraded() {
		_, _ = fmt.Fprintf(out, "Warning: missing template fragments: %v\n", report.Templates.MissingFragments())
	}
	if report.Links != nil {
		printLinkResult(out, report.Links)
		if err := report.Links.Err(); err != nil {
			return err
		}
	}
	g.Logger.Debug("Build command finished", slog.Int("pages", len(report.Pages)))
	return nil
}
