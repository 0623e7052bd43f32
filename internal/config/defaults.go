package config

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// TemplatesDefaultApplier handles Templates configuration defaults.
type TemplatesDefaultApplier struct{}

func (TemplatesDefaultApplier) Domain() string { return "templates" }

func (TemplatesDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Templates.Directory == "" {
		cfg.Templates.Directory = "templates"
	}
	return nil
}

// OutputDefaultApplier handles Output configuration defaults.
type OutputDefaultApplier struct{}

func (OutputDefaultApplier) Domain() string { return "output" }

func (OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "."
	}
	return nil
}

// LoggingDefaultApplier normalizes level and format, falling back to info/text.
type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}

var defaultAppliers = []DefaultApplier{
	TemplatesDefaultApplier{},
	OutputDefaultApplier{},
	LoggingDefaultApplier{},
}

// ApplyDefaults runs every domain applier in order.
func ApplyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
