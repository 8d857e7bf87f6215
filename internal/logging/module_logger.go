package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-bower/pkg/interfaces"
)

const (
	rootModule      = "bower"
	markdownModule  = "bower.markdown"
	generatorModule = "bower.generator"
	templatesModule = "bower.templates"
	configModule    = "bower.config"
)

const (
	fieldPostPath = "post_path"
	fieldPostID   = "post_id"
	fieldTemplate = "template"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// MarkdownLogger returns the logger namespace reserved for post loading.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// GeneratorLogger returns the logger namespace reserved for site builds.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// TemplatesLogger returns the logger namespace reserved for theme evaluation.
func TemplatesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, templatesModule)
}

// ConfigLogger returns the logger namespace reserved for configuration loading.
func ConfigLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, configModule)
}

// WithPostContext enriches the logger with the post path, identifier and
// template name. Empty values are ignored.
func WithPostContext(logger interfaces.Logger, path, id, template string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldPostPath] = trimmed
	}
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		fields[fieldPostID] = trimmed
	}
	if trimmed := strings.TrimSpace(template); trimmed != "" {
		fields[fieldTemplate] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
