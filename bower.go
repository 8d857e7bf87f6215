// Package bower is a small static blog generator. Posts carry an
// s-expression metadata block and a Markdown body, and themes are written as
// expressions that evaluate to value trees rendered as markup.
package bower

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-bower/internal/commands"
	staticcmd "github.com/goliatone/go-bower/internal/commands/static"
	"github.com/goliatone/go-bower/internal/generator"
	"github.com/goliatone/go-bower/internal/logging"
	"github.com/goliatone/go-bower/internal/markdown"
	"github.com/goliatone/go-bower/internal/templates"
	"github.com/goliatone/go-bower/pkg/interfaces"
)

type (
	// GeneratorService exports the static site generator contract.
	GeneratorService = generator.Service
	BuildOptions     = generator.BuildOptions
	BuildResult      = generator.BuildResult
	RenderedPage     = generator.RenderedPage
	Metrics          = generator.Metrics
	// ArtifactWriter stores generated files.
	ArtifactWriter = generator.ArtifactWriter

	BuildSiteCommand = staticcmd.BuildSiteCommand
	CleanSiteCommand = staticcmd.CleanSiteCommand
	ResultEnvelope   = staticcmd.ResultEnvelope
)

// Option overrides a collaborator of the module.
type Option func(*options)

type options struct {
	loggerProvider interfaces.LoggerProvider
	content        fs.FS
	theme          fs.FS
	writer         ArtifactWriter
}

// WithLoggerProvider routes module logs to provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *options) { o.loggerProvider = provider }
}

// WithContentFS reads posts from content instead of Build.ContentDir.
func WithContentFS(content fs.FS) Option {
	return func(o *options) { o.content = content }
}

// WithThemeFS reads templates from theme instead of Build.ThemeDir.
func WithThemeFS(theme fs.FS) Option {
	return func(o *options) { o.theme = theme }
}

// WithArtifactWriter stores output through writer instead of Build.OutputDir.
func WithArtifactWriter(writer ArtifactWriter) Option {
	return func(o *options) { o.writer = writer }
}

// Module is the wired site generator.
type Module struct {
	cfg       Config
	generator generator.Service
	metrics   *generator.Metrics
	build     *staticcmd.BuildSiteHandler
	clean     *staticcmd.CleanSiteHandler
	logger    interfaces.Logger
}

// New validates cfg and wires the post loader, the template evaluator and
// the generator.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	provider := o.loggerProvider

	markdownOpts := []markdown.ServiceOption{markdown.WithLogger(logging.MarkdownLogger(provider))}
	if o.content != nil {
		markdownOpts = append(markdownOpts, markdown.WithFS(o.content))
	}
	posts, err := markdown.NewService(markdown.Config{
		ContentDir: cfg.Build.ContentDir,
		Pattern:    cfg.Markdown.Pattern,
		Recursive:  cfg.Markdown.Recursive,
		Parser: interfaces.ParseOptions{
			Extensions: cfg.Markdown.Extensions,
			HardWraps:  cfg.Markdown.HardWraps,
			SafeMode:   cfg.Markdown.SafeMode,
		},
	}, markdownOpts...)
	if err != nil {
		return nil, err
	}

	theme := o.theme
	if theme == nil {
		info, err := os.Stat(cfg.Build.ThemeDir)
		if err != nil {
			return nil, fmt.Errorf("bower: theme directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("bower: theme directory %s is not a directory", cfg.Build.ThemeDir)
		}
		theme = os.DirFS(cfg.Build.ThemeDir)
	}

	metrics := generator.NewMetrics()
	gen := generator.NewService(generator.Config{
		OutputDir:     cfg.Build.OutputDir,
		Workers:       cfg.Build.Workers,
		Incremental:   cfg.Build.Incremental,
		RenderTimeout: cfg.Build.RenderTimeout,
		Site:          cfg.SiteValue(),
	}, generator.Dependencies{
		Posts:     posts,
		Templates: templates.NewEvaluator(theme, logging.TemplatesLogger(provider)),
		Writer:    o.writer,
		Metrics:   metrics,
		Logger:    logging.GeneratorLogger(provider),
	})

	commandLogger := commands.CommandLogger(provider, "static")
	return &Module{
		cfg:       cfg,
		generator: gen,
		metrics:   metrics,
		build:     staticcmd.NewBuildSiteHandler(gen, commandLogger),
		clean:     staticcmd.NewCleanSiteHandler(gen, commandLogger),
		logger:    logging.ModuleLogger(provider, "bower"),
	}, nil
}

// Config returns the validated configuration.
func (m *Module) Config() Config {
	return m.cfg
}

// Generator exposes the generator service.
func (m *Module) Generator() GeneratorService {
	return m.generator
}

// Metrics exposes the build counters.
func (m *Module) Metrics() *Metrics {
	return m.metrics
}

// Logger returns the module root logger.
func (m *Module) Logger() interfaces.Logger {
	return m.logger
}

// BuildHandler returns the command handler for site builds.
func (m *Module) BuildHandler() *staticcmd.BuildSiteHandler {
	return m.build
}

// CleanHandler returns the command handler that clears the output.
func (m *Module) CleanHandler() *staticcmd.CleanSiteHandler {
	return m.clean
}

// Build runs a build through the command handler and returns its result,
// which is non-nil for partial failures too.
func (m *Module) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	var result *BuildResult
	err := m.build.Execute(ctx, BuildSiteCommand{
		PostIDs: opts.PostIDs,
		Force:   opts.Force,
		DryRun:  opts.DryRun,
		ResultCallback: func(env ResultEnvelope) {
			result = env.Result
		},
	})
	return result, err
}

// Clean removes all generated files.
func (m *Module) Clean(ctx context.Context) error {
	return m.clean.Execute(ctx, CleanSiteCommand{})
}
