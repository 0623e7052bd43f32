package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagebuilder/internal/config"
)

// Global carries state shared by subcommands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer // user-facing output; logs go to stderr
}

func (g *Global) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"pagebuilder.yaml" env:"PAGEBUILDER_CONFIG" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build  BuildCmd  `cmd:"" help:"Generate every page listed in the configuration"`
	Render RenderCmd `cmd:"" help:"Render a single configured page to stdout"`
	Check  CheckCmd  `cmd:"" help:"Check the links of a generated site"`
	Watch  WatchCmd  `cmd:"" help:"Rebuild the site whenever templates, content or configuration change"`
	Init   InitCmd   `cmd:"" help:"Create a starter configuration, templates and content"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(NewLogger(os.Stderr, config.LoggingConfig{}, c.Verbose))
	return nil
}

// loadConfig loads the configuration and reconfigures logging from it.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	logger := NewLogger(os.Stderr, cfg.Logging, c.Verbose)
	slog.SetDefault(logger)
	g.Logger = logger
	return cfg, nil
}

// NewLogger builds the process logger. verbose forces debug level.
func NewLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slogLevel(config.NormalizeLogLevel(string(lc.Level)))
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if config.NormalizeLogFormat(string(lc.Format)) == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
