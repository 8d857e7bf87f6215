package bootstrap

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-bower"
	staticcmd "github.com/goliatone/go-bower/internal/commands/static"
	"github.com/goliatone/go-bower/internal/generator"
	"github.com/goliatone/go-bower/internal/logging"
	"github.com/goliatone/go-bower/internal/logging/console"
	"github.com/goliatone/go-bower/internal/logging/gologger"
	"github.com/goliatone/go-bower/internal/siteconfig"
	"github.com/goliatone/go-bower/pkg/interfaces"
)

// DefaultConfigFile is loaded when present and no config path is given.
const DefaultConfigFile = "site.hcl"

// Options captures command line overrides applied on top of the config file.
type Options struct {
	ConfigPath  string
	OutputDir   string
	LogProvider string
	LogLevel    string
	LogFormat   string
	MetricsFile string
	// LogWriter receives console logger output, stderr when nil.
	LogWriter      io.Writer
	LoggerProvider interfaces.LoggerProvider
}

// Module holds the wired services of one CLI invocation.
type Module struct {
	Config  siteconfig.Config
	Metrics *generator.Metrics
	Build   *staticcmd.BuildSiteHandler
	Clean   *staticcmd.CleanSiteHandler
	Logger  interfaces.Logger
}

// BuildModule loads configuration, picks the logger provider and wires a
// bower module.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider, err = NewLoggerProvider(cfg.Logging, opts.LogWriter)
		if err != nil {
			return nil, err
		}
	}

	module, err := bower.New(cfg, bower.WithLoggerProvider(provider))
	if err != nil {
		return nil, fmt.Errorf("initialise bower module: %w", err)
	}
	logging.ConfigLogger(provider).Debug("config.loaded",
		"config", opts.ConfigPath,
		"content_dir", cfg.Build.ContentDir,
		"output_dir", cfg.Build.OutputDir,
	)

	return &Module{
		Config:  module.Config(),
		Metrics: module.Metrics(),
		Build:   module.BuildHandler(),
		Clean:   module.CleanHandler(),
		Logger:  logging.ModuleLogger(provider, "bower.cli"),
	}, nil
}

// LoadConfig reads the config file, falling back to DefaultConfigFile and
// then to defaults, and applies the overrides in opts.
func LoadConfig(opts Options) (siteconfig.Config, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}

	cfg := siteconfig.DefaultConfig()
	if path != "" {
		loaded, err := siteconfig.Load(path)
		if err != nil {
			return siteconfig.Config{}, err
		}
		cfg = loaded
	}

	setIfPresent(&cfg.Build.OutputDir, opts.OutputDir)
	setIfPresent(&cfg.Build.MetricsFile, opts.MetricsFile)
	setIfPresent(&cfg.Logging.Provider, opts.LogProvider)
	setIfPresent(&cfg.Logging.Level, opts.LogLevel)
	setIfPresent(&cfg.Logging.Format, opts.LogFormat)

	if err := cfg.Validate(); err != nil {
		return siteconfig.Config{}, err
	}
	return cfg, nil
}

// NewLoggerProvider builds the provider selected in cfg.
func NewLoggerProvider(cfg siteconfig.LoggingConfig, w io.Writer) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		if w == nil {
			w = os.Stderr
		}
		opts := console.Options{Writer: w}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", siteconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}

func setIfPresent(target *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*target = trimmed
	}
}
