package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-bower/internal/logging"
	"github.com/goliatone/go-bower/pkg/interfaces"
)

// Config controls where posts live and how their bodies are rendered.
type Config struct {
	ContentDir string
	Pattern    string
	Recursive  bool
	Parser     interfaces.ParseOptions
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithParser replaces the goldmark parser.
func WithParser(parser interfaces.MarkdownParser) ServiceOption {
	return func(s *Service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// WithFS reads posts from filesystem instead of ContentDir.
func WithFS(filesystem fs.FS) ServiceOption {
	return func(s *Service) {
		s.fs = filesystem
	}
}

// WithLogger sets the logger used for per-post diagnostics.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service implements interfaces.PostService for filesystem-backed posts.
type Service struct {
	cfg    Config
	fs     fs.FS
	parser interfaces.MarkdownParser
	loader *Loader
	logger interfaces.Logger
}

var _ interfaces.PostService = (*Service)(nil)

// ErrContentDirMissing is returned when the configured content directory
// cannot be used.
var ErrContentDirMissing = errors.New("markdown service: content directory missing")

// NewService wires a loader and parser. Without WithFS the content
// directory must exist.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	s := &Service{cfg: cfg, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}

	if s.fs == nil {
		dir := strings.TrimSpace(cfg.ContentDir)
		if dir == "" {
			dir = "."
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrContentDirMissing, dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrContentDirMissing, dir)
		}
		s.fs = os.DirFS(dir)
	}
	if s.parser == nil {
		s.parser = NewGoldmarkParser(cfg.Parser)
	}
	s.loader = NewLoader(s.fs, LoaderConfig{Pattern: cfg.Pattern, Recursive: cfg.Recursive})
	return s, nil
}

// Load reads one post relative to the content directory and renders its body.
func (s *Service) Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Post, error) {
	post, err := s.loader.LoadFile(ctx, s.relative(path))
	if err != nil {
		return nil, err
	}
	if err := s.renderPost(ctx, post, opts.Parser); err != nil {
		return nil, err
	}
	return post, nil
}

// LoadDirectory loads and renders every post under dir. Posts that fail are
// left out and their errors joined into the returned error.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Post, error) {
	posts, loadErr := s.loader.LoadDirectory(ctx, s.relative(dir), opts.Pattern, opts.Recursive)
	if posts == nil && loadErr != nil {
		return nil, loadErr
	}

	errs := []error{loadErr}
	rendered := posts[:0]
	for _, post := range posts {
		if err := s.renderPost(ctx, post, opts.Parser); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			errs = append(errs, err)
			continue
		}
		logging.WithPostContext(s.logger, post.FilePath, post.ID, "").Debug("markdown.post.loaded",
			"kind", post.Kind,
			"fields", len(post.Metadata),
		)
		rendered = append(rendered, post)
	}
	return rendered, errors.Join(errs...)
}

// Render converts markdown to HTML, merging opts over the configured defaults.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.parser.ParseWithOptions(markdown, mergeParseOptions(s.cfg.Parser, opts))
}

func (s *Service) renderPost(ctx context.Context, post *interfaces.Post, overrides interfaces.ParseOptions) error {
	html, err := s.Render(ctx, post.Body, overrides)
	if err != nil {
		return fmt.Errorf("markdown render %s: %w", post.FilePath, err)
	}
	post.BodyHTML = html
	return nil
}

func (s *Service) relative(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) && strings.TrimSpace(s.cfg.ContentDir) != "" {
		if rel, err := filepath.Rel(s.cfg.ContentDir, clean); err == nil {
			clean = rel
		}
	}
	return filepath.ToSlash(clean)
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	result.HardWraps = result.HardWraps || override.HardWraps
	result.SafeMode = result.SafeMode || override.SafeMode
	return result
}
