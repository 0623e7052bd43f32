package commands

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
	"git.home.luguber.info/inful/pagebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output   string        `short:"o" help:"Override output.directory from the configuration" type:"path"`
	Interval time.Duration `help:"Also rebuild on this fixed interval (e.g. 10m); 0 disables"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if w.Output != "" {
		cfg.Output.Directory = w.Output
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := RunBuild(ctx, g, cfg); err != nil {
		g.Logger.Warn("Initial build failed; waiting for changes", logfields.Error(err))
	}

	rebuild := func(ctx context.Context) error {
		// the config itself may have changed
		next, err := root.loadConfig(g)
		if err != nil {
			return err
		}
		if w.Output != "" {
			next.Output.Directory = w.Output
		}
		return RunBuild(ctx, g, next)
	}
	watcher := watch.New(g.Logger)
	watcher.Interval = w.Interval
	return watcher.Run(ctx, WatchPaths(root.Config, cfg), rebuild)
}

// WatchPaths lists the config file, the templates directory and the
// directories holding content files.
func WatchPaths(configPath string, cfg *config.Config) []string {
	seen := map[string]bool{}
	var paths []string
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	add(configPath)
	add(cfg.TemplatesDir())
	add(cfg.StaticDir())
	for _, page := range cfg.Pages {
		if page.ContentFile != "" {
			add(filepath.Dir(cfg.ResolvePath(page.ContentFile)))
		}
	}
	return paths
}
