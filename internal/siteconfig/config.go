// Package siteconfig holds the configuration of a site build and loads it
// from HCL files.
package siteconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-bower/pkg/sexp"
)

var (
	ErrContentDirRequired = errors.New("bower config: content directory is required")
	ErrThemeDirRequired   = errors.New("bower config: theme directory is required")
	ErrOutputDirRequired  = errors.New("bower config: output directory is required")
	ErrOutputIsContentDir = errors.New("bower config: output directory must differ from the content directory")
	ErrWorkersInvalid     = errors.New("bower config: workers must be zero or positive")
	ErrRenderTimeout      = errors.New("bower config: render timeout must be zero or positive")

	ErrLoggingProviderUnknown = errors.New("bower config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("bower config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("bower config: logging format is invalid")
)

// Config aggregates everything a build needs.
type Config struct {
	Site     SiteConfig
	Build    BuildConfig
	Markdown MarkdownConfig
	Logging  LoggingConfig
}

// SiteConfig describes the site itself and is exposed to templates as "site".
type SiteConfig struct {
	Title    string
	BaseURL  string
	Language string
	Author   string
	// Params carries free-form values declared in the config file.
	Params sexp.Map
}

// BuildConfig locates inputs and outputs and tunes the generator.
type BuildConfig struct {
	ContentDir    string
	ThemeDir      string
	OutputDir     string
	Workers       int
	Incremental   bool
	RenderTimeout time.Duration
	MetricsFile   string
}

// MarkdownConfig controls post discovery and body rendering.
type MarkdownConfig struct {
	Pattern    string
	Recursive  bool
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// LoggingConfig selects and tunes the logger provider.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Title:    "Bower",
			Language: "en",
		},
		Build: BuildConfig{
			ContentDir:  "posts",
			ThemeDir:    "theme",
			OutputDir:   "public",
			Incremental: true,
		},
		Markdown: MarkdownConfig{
			Pattern: "*.md",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs consistency checks and returns the first problem found.
func (cfg Config) Validate() error {
	content := strings.TrimSpace(cfg.Build.ContentDir)
	output := strings.TrimSpace(cfg.Build.OutputDir)
	if content == "" {
		return ErrContentDirRequired
	}
	if strings.TrimSpace(cfg.Build.ThemeDir) == "" {
		return ErrThemeDirRequired
	}
	if output == "" {
		return ErrOutputDirRequired
	}
	if content == output {
		return fmt.Errorf("%w: %s", ErrOutputIsContentDir, output)
	}
	if cfg.Build.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrWorkersInvalid, cfg.Build.Workers)
	}
	if cfg.Build.RenderTimeout < 0 {
		return fmt.Errorf("%w: %s", ErrRenderTimeout, cfg.Build.RenderTimeout)
	}

	provider := normalize(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := normalize(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := normalize(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// SiteValue exposes the site settings to templates.
func (cfg Config) SiteValue() sexp.Map {
	return sexp.NewMap(
		sexp.Entry{Key: sexp.Symbol("title"), Value: sexp.String(cfg.Site.Title)},
		sexp.Entry{Key: sexp.Symbol("base_url"), Value: sexp.String(cfg.Site.BaseURL)},
		sexp.Entry{Key: sexp.Symbol("language"), Value: sexp.String(cfg.Site.Language)},
		sexp.Entry{Key: sexp.Symbol("author"), Value: sexp.String(cfg.Site.Author)},
		sexp.Entry{Key: sexp.Symbol("params"), Value: cfg.Site.Params},
	)
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch level {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch format {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
