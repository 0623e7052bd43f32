package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = "pagebuilder.yaml"

// Config represents the site build configuration.
type Config struct {
	Templates  TemplatesConfig `yaml:"templates"`
	Output     OutputConfig    `yaml:"output"`
	Static     StaticConfig    `yaml:"static,omitempty"`
	Logging    LoggingConfig   `yaml:"logging"`
	Metrics    MetricsConfig   `yaml:"metrics,omitempty"`
	Check      CheckConfig     `yaml:"check,omitempty"`
	Navigation []NavItem       `yaml:"navigation,omitempty"`
	Pages      []PageConfig    `yaml:"pages"`

	// BaseDir is the directory relative paths are resolved against
	// (the directory holding the config file).
	BaseDir string `yaml:"-"`
}

// TemplatesConfig locates the fragment templates.
type TemplatesConfig struct {
	Directory string `yaml:"directory"`
	Strict    bool   `yaml:"strict"` // fail when a fragment is missing
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Remove output directory before build
}

// StaticConfig names a directory copied verbatim into the output root before
// pages are generated (stylesheets, images, scripts).
type StaticConfig struct {
	Directory string `yaml:"directory,omitempty"`
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls the Prometheus textfile written after a build.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// CheckConfig enables link checking of the output tree after a build.
type CheckConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NavItem overrides one navigation destination.
type NavItem struct {
	ID     string `yaml:"id"`
	Path   string `yaml:"path"`
	Active bool   `yaml:"active,omitempty"`
}

// PageConfig describes one generated page.
type PageConfig struct {
	Title       string `yaml:"title,omitempty"`
	Output      string `yaml:"output"`
	Depth       *int   `yaml:"depth,omitempty"` // derived from Output when omitted
	Active      string `yaml:"active,omitempty"`
	Content     string `yaml:"content,omitempty"`
	ContentFile string `yaml:"content_file,omitempty"`
	Styles      string `yaml:"styles,omitempty"`
	Head        string `yaml:"head,omitempty"`
	Scripts     string `yaml:"scripts,omitempty"`
}

// Load reads, env-expands, defaults and validates the configuration at configPath.
func Load(configPath string) (*Config, error) {
	baseDir := filepath.Dir(configPath)
	if err := loadEnvFiles(baseDir); err != nil {
		slog.Debug("Environment file not loaded", "error", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}

	// #nosec G304 -- configPath is supplied by the operator.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.ConfigError("failed to read config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.ConfigError("failed to parse config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	cfg.BaseDir = baseDir

	if err := ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse unmarshals YAML and expands $VAR references in path and setting
// fields. Page titles and markup (content, styles, head, scripts) are kept
// verbatim. Defaults are not applied.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.expandEnv()
	return &cfg, nil
}

func (c *Config) expandEnv() {
	for _, field := range []*string{
		&c.Templates.Directory,
		&c.Output.Directory,
		&c.Static.Directory,
		&c.Metrics.Textfile,
		(*string)(&c.Logging.Level),
		(*string)(&c.Logging.Format),
	} {
		*field = os.ExpandEnv(*field)
	}
	for i := range c.Navigation {
		c.Navigation[i].Path = os.ExpandEnv(c.Navigation[i].Path)
	}
	for i := range c.Pages {
		c.Pages[i].Output = os.ExpandEnv(c.Pages[i].Output)
		c.Pages[i].ContentFile = os.ExpandEnv(c.Pages[i].ContentFile)
	}
}

// ResolvePath returns p unchanged when absolute, otherwise joined onto BaseDir.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// TemplatesDir returns the resolved templates directory.
func (c *Config) TemplatesDir() string {
	return c.ResolvePath(c.Templates.Directory)
}

// StaticDir returns the resolved static assets directory, or "" when unset.
func (c *Config) StaticDir() string {
	return c.ResolvePath(c.Static.Directory)
}

// OutputDir returns the resolved output root.
func (c *Config) OutputDir() string {
	return c.ResolvePath(c.Output.Directory)
}

// Init writes an example configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return errors.InternalError("failed to marshal config").WithCause(err).Build()
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.FileSystemError("create config directory").WithCause(err).WithContext("path", dir).Build()
		}
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.FileSystemError("failed to write config file").WithCause(err).WithContext("path", configPath).Build()
	}
	return nil
}

// Example returns the configuration written by Init.
func Example() *Config {
	two := 2
	return &Config{
		Templates: TemplatesConfig{Directory: "templates"},
		Output:    OutputConfig{Directory: "site"},
		Static:    StaticConfig{Directory: "static"},
		Logging:   LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Pages: []PageConfig{
			{
				Title:   "Home",
				Output:  "index.html",
				Active:  "home",
				Content: `<div class="container"><h1>Welcome</h1></div>`,
			},
			{
				Title:       "Leadership",
				Output:      "pages/about/leadership.html",
				Depth:       &two,
				Active:      "leadership",
				ContentFile: "content/leadership.md",
			},
		},
	}
}
