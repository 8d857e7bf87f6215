package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-bower/internal/logging"
	"github.com/goliatone/go-bower/pkg/interfaces"
	"github.com/goliatone/go-bower/pkg/sexp"
)

var (
	// ErrPostNotFound is reported for requested post IDs that were not loaded.
	ErrPostNotFound      = errors.New("generator: post not found")
	// ErrDuplicatePostID is reported for every post whose ID was already
	// taken by an earlier post in load order. Only the first one is built.
	ErrDuplicatePostID   = errors.New("generator: duplicate post id")
	errPostsRequired     = errors.New("generator: post service is required")
	errTemplatesRequired = errors.New("generator: template evaluator is required")
)

// Template names looked up in the theme.
const (
	TemplatePost  = "post"
	TemplatePage  = "page"
	TemplateIndex = "index"
)

const (
	doctype   = "<!DOCTYPE html>\n"
	indexFile = "index.html"
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour of the generator.
type Config struct {
	// OutputDir is used by the default writer.
	OutputDir     string
	Workers       int
	Incremental   bool
	RenderTimeout time.Duration
	// Site is exposed to every template as "site".
	Site sexp.Map
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// PostIDs limits rendering to these posts. The index always lists every
	// loaded post.
	PostIDs []string
	// Force ignores the incremental manifest.
	Force  bool
	DryRun bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	BuildID      string
	PostsBuilt   int
	PostsSkipped int
	Duration     time.Duration
	Rendered     []RenderedPage
	Diagnostics  []RenderDiagnostic
	Errors       []error
	DryRun       bool
}

// RenderedPage is a page produced by a build.
type RenderedPage struct {
	PostID   string
	Source   string
	Output   string
	HTML     string
	Hash     string
	Checksum string
	Duration time.Duration
}

// RenderDiagnostic records the outcome of rendering a single post.
type RenderDiagnostic struct {
	PostID   string
	Source   string
	Template string
	Duration time.Duration
	Skipped  bool
	Err      error
}

// Dependencies lists the collaborators of the generator.
type Dependencies struct {
	Posts     interfaces.PostService
	Templates interfaces.TemplateEvaluator
	// Writer defaults to a file writer rooted at Config.OutputDir.
	Writer  ArtifactWriter
	Metrics *Metrics
	Logger  interfaces.Logger
}

// NewService wires a generator with the provided configuration.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Writer == nil {
		deps.Writer = NewFileWriter(cfg.OutputDir)
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	return &service{
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}
}

type service struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	stage      string
	skipped    bool
	err        error
}

// buildState is shared by the workers of a single build. previous is read
// only once rendering starts; manifest is written by the collector alone.
type buildState struct {
	id        string
	opts      BuildOptions
	previous  *buildManifest
	manifest  *buildManifest
	inputHash string
	writer    ArtifactWriter
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Posts == nil {
		return nil, errPostsRequired
	}
	if s.deps.Templates == nil {
		return nil, errTemplatesRequired
	}

	start := s.now()
	state := &buildState{
		id:     uuid.NewString(),
		opts:   opts,
		writer: s.deps.Writer,
	}
	if opts.DryRun {
		state.writer = dryRunWriter{ArtifactWriter: s.deps.Writer}
	}
	ctx = logging.ContextWithFields(ctx, map[string]any{"build_id": state.id})
	logger := s.deps.Logger.WithContext(ctx)
	logger.Info("generator.build.start", "dry_run", opts.DryRun, "force", opts.Force, "post_ids", len(opts.PostIDs))

	result := &BuildResult{BuildID: state.id, DryRun: opts.DryRun}
	var errs []error

	posts, loadErr := s.deps.Posts.LoadDirectory(ctx, ".", interfaces.LoadOptions{})
	if loadErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.deps.Metrics.failure(StageLoad, countErrors(loadErr))
		errs = append(errs, loadErr)
	}
	posts, dupes := uniquePosts(posts)
	if len(dupes) > 0 {
		s.deps.Metrics.failure(StageLoad, len(dupes))
		errs = append(errs, dupes...)
	}
	sortPosts(posts)

	selected, missing := selectPosts(posts, opts.PostIDs)
	errs = append(errs, missing...)

	inputHash, err := s.inputHash()
	if err != nil {
		return nil, err
	}
	state.inputHash = inputHash

	state.previous = newBuildManifest()
	if s.cfg.Incremental {
		manifest, err := s.loadManifest(ctx, state.writer)
		if err != nil {
			logger.Warn("generator.manifest.unreadable", "error", err)
		} else {
			state.previous = manifest
		}
	}
	state.manifest = state.previous.clone()

	var (
		mu       sync.Mutex
		rendered = make([]RenderedPage, 0, len(selected))
	)
	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		switch {
		case outcome.err != nil:
			errs = append(errs, outcome.err)
			s.deps.Metrics.failure(outcome.stage, 1)
			logging.WithPostContext(logger, outcome.diagnostic.Source, outcome.diagnostic.PostID, outcome.diagnostic.Template).
				Error("generator.post.failed", "stage", outcome.stage, "error", outcome.err)
		case outcome.skipped:
			result.PostsSkipped++
			if s.deps.Metrics != nil {
				s.deps.Metrics.PostsSkipped.Inc()
			}
		default:
			result.PostsBuilt++
			rendered = append(rendered, outcome.page)
			state.manifest.setPost(manifestPost{
				PostID:     outcome.page.PostID,
				Source:     outcome.page.Source,
				Output:     outcome.page.Output,
				Hash:       outcome.page.Hash,
				Checksum:   outcome.page.Checksum,
				RenderedAt: start,
			})
			if s.deps.Metrics != nil {
				s.deps.Metrics.PostsRendered.Inc()
			}
		}
	}

	if err := s.renderAll(ctx, state, selected, collect); err != nil {
		errs = append(errs, err)
		result.Errors = errs
		return result, errors.Join(errs...)
	}

	sort.Slice(rendered, func(i, j int) bool { return rendered[i].PostID < rendered[j].PostID })

	index, err := s.renderIndex(ctx, state, posts)
	if err != nil {
		errs = append(errs, err)
		s.deps.Metrics.failure(StageIndex, 1)
	} else {
		rendered = append(rendered, index)
	}

	if len(opts.PostIDs) == 0 {
		keep := make(map[string]struct{}, len(posts))
		for _, post := range posts {
			keep[post.ID] = struct{}{}
		}
		state.manifest.prunePosts(keep)
	}
	if s.cfg.Incremental {
		if err := s.persistManifest(ctx, state); err != nil {
			errs = append(errs, err)
			s.deps.Metrics.failure(StageManifest, 1)
		}
	}

	result.Rendered = rendered
	result.Duration = s.now().Sub(start)
	if s.deps.Metrics != nil {
		s.deps.Metrics.BuildDuration.Observe(result.Duration.Seconds())
	}
	logger.Info("generator.build.finished",
		"built", result.PostsBuilt,
		"skipped", result.PostsSkipped,
		"errors", len(errs),
		"duration", result.Duration,
	)

	if len(errs) > 0 {
		result.Errors = errs
		return result, errors.Join(errs...)
	}
	return result, nil
}

func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.deps.Writer.Clean(ctx); err != nil {
		return err
	}
	s.deps.Logger.Info("generator.clean.finished", "output_dir", s.cfg.OutputDir)
	return nil
}

// renderAll renders posts on a bounded worker pool. It only fails when ctx
// is cancelled; per-post failures are reported through collect.
func (s *service) renderAll(ctx context.Context, state *buildState, posts []*interfaces.Post, collect func(renderOutcome)) error {
	workers := s.effectiveWorkerCount(len(posts))
	if workers <= 1 {
		for _, post := range posts {
			if err := ctx.Err(); err != nil {
				return err
			}
			collect(s.renderPost(ctx, state, post))
		}
		return nil
	}

	jobs := make(chan *interfaces.Post)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for post := range jobs {
				collect(s.renderPost(ctx, state, post))
			}
		}()
	}

	for _, post := range posts {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- post:
		}
	}
	close(jobs)
	wg.Wait()
	return ctx.Err()
}

func (s *service) renderPost(ctx context.Context, state *buildState, post *interfaces.Post) renderOutcome {
	output := outputPath(post.ID)
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			PostID:   post.ID,
			Source:   post.FilePath,
			Template: TemplatePost,
		},
	}
	fail := func(stage string, err error) renderOutcome {
		outcome.stage = stage
		outcome.err = err
		outcome.diagnostic.Err = err
		return outcome
	}

	hash := computeHash([]byte(hex.EncodeToString(post.Checksum) + state.inputHash))
	if s.cfg.Incremental && !state.opts.Force && state.previous.shouldSkipPost(post.ID, hash, output) {
		if ok, err := state.writer.Exists(ctx, output); err == nil && ok {
			outcome.skipped = true
			outcome.diagnostic.Skipped = true
			return outcome
		}
	}

	if s.cfg.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RenderTimeout)
		defer cancel()
	}

	start := time.Now()
	env := post.Value().With(sexp.Symbol("site"), s.cfg.Site)
	body, err := s.evaluate(ctx, TemplatePost, env)
	if err != nil {
		return fail(StagePost, fmt.Errorf("generator: render post %s (%s): %w", post.ID, post.FilePath, err))
	}
	html, err := s.renderPage(ctx, post.Title, body)
	if err != nil {
		outcome.diagnostic.Template = TemplatePage
		return fail(StagePage, fmt.Errorf("generator: render page %s (%s): %w", post.ID, post.FilePath, err))
	}
	outcome.diagnostic.Duration = time.Since(start)

	checksum := computeHash([]byte(html))
	if err := state.writer.WriteFile(ctx, WriteFileRequest{
		Path:     output,
		Content:  strings.NewReader(html),
		Size:     int64(len(html)),
		Category: categoryPage,
		Checksum: checksum,
	}); err != nil {
		return fail(StageWrite, err)
	}

	outcome.page = RenderedPage{
		PostID:   post.ID,
		Source:   post.FilePath,
		Output:   output,
		HTML:     html,
		Hash:     hash,
		Checksum: checksum,
		Duration: outcome.diagnostic.Duration,
	}
	return outcome
}

// renderIndex lists every loaded post, newest first.
func (s *service) renderIndex(ctx context.Context, state *buildState, posts []*interfaces.Post) (RenderedPage, error) {
	list := make(sexp.List, 0, len(posts))
	for _, post := range posts {
		list = append(list, post.Value().With(sexp.Symbol("url"), sexp.String(outputPath(post.ID))))
	}
	env := sexp.NewMap(
		sexp.Entry{Key: sexp.Symbol("site"), Value: s.cfg.Site},
		sexp.Entry{Key: sexp.Symbol("posts"), Value: list},
	)

	start := time.Now()
	body, err := s.evaluate(ctx, TemplateIndex, env)
	if err != nil {
		return RenderedPage{}, fmt.Errorf("generator: render index: %w", err)
	}
	title := siteTitle(s.cfg.Site)
	html, err := s.renderPage(ctx, title, body)
	if err != nil {
		return RenderedPage{}, fmt.Errorf("generator: render index page: %w", err)
	}

	checksum := computeHash([]byte(html))
	if err := state.writer.WriteFile(ctx, WriteFileRequest{
		Path:     indexFile,
		Content:  strings.NewReader(html),
		Size:     int64(len(html)),
		Category: categoryIndex,
		Checksum: checksum,
	}); err != nil {
		return RenderedPage{}, err
	}
	return RenderedPage{
		Output:   indexFile,
		HTML:     html,
		Checksum: checksum,
		Duration: time.Since(start),
	}, nil
}

// renderPage wraps rendered body markup in the page template.
func (s *service) renderPage(ctx context.Context, title, body string) (string, error) {
	env := sexp.NewMap(
		sexp.Entry{Key: sexp.Symbol("site"), Value: s.cfg.Site},
		sexp.Entry{Key: sexp.Symbol("title"), Value: sexp.String(title)},
		sexp.Entry{Key: sexp.Symbol("content"), Value: sexp.String(body)},
	)
	page, err := s.evaluate(ctx, TemplatePage, env)
	if err != nil {
		return "", err
	}
	return doctype + page, nil
}

func (s *service) loadManifest(ctx context.Context, writer ArtifactWriter) (*buildManifest, error) {
	data, err := writer.ReadFile(ctx, manifestFileName)
	if errors.Is(err, fs.ErrNotExist) {
		return newBuildManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	return parseManifest(data)
}

func (s *service) persistManifest(ctx context.Context, state *buildState) error {
	state.manifest.BuildID = state.id
	state.manifest.GeneratedAt = s.now().UTC()
	data, err := state.manifest.marshal()
	if err != nil {
		return fmt.Errorf("generator: encode manifest: %w", err)
	}
	return state.writer.WriteFile(ctx, WriteFileRequest{
		Path:     manifestFileName,
		Content:  bytes.NewReader(data),
		Size:     int64(len(data)),
		Category: categoryManifest,
		Checksum: computeHash(data),
	})
}

// inputHash identifies everything besides the post source that affects a
// page: the site settings and both templates a post passes through.
func (s *service) inputHash() (string, error) {
	var b strings.Builder
	b.WriteString(sexp.Format(s.cfg.Site))
	for _, name := range []string{TemplatePost, TemplatePage} {
		sum, err := s.deps.Templates.Checksum(name)
		if err != nil {
			return "", fmt.Errorf("generator: template %s: %w", name, err)
		}
		b.WriteString("|")
		b.WriteString(sum)
	}
	return computeHash([]byte(b.String())), nil
}

func (s *service) effectiveWorkerCount(posts int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if posts > 0 && workers > posts {
		return posts
	}
	return workers
}

// sortPosts orders posts newest first, then by ID. Dates compare as text,
// which matches chronological order for ISO dates.
func sortPosts(posts []*interfaces.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date != posts[j].Date {
			return posts[i].Date > posts[j].Date
		}
		return posts[i].ID < posts[j].ID
	})
}

// uniquePosts keeps the first post for each ID, so outputs never collide.
func uniquePosts(posts []*interfaces.Post) ([]*interfaces.Post, []error) {
	var (
		out   = make([]*interfaces.Post, 0, len(posts))
		errs  []error
		owner = make(map[string]*interfaces.Post, len(posts))
	)
	for _, post := range posts {
		if post == nil {
			continue
		}
		if first, ok := owner[post.ID]; ok {
			errs = append(errs, fmt.Errorf("%w: %s in %s and %s", ErrDuplicatePostID, post.ID, first.FilePath, post.FilePath))
			continue
		}
		owner[post.ID] = post
		out = append(out, post)
	}
	return out, errs
}

func selectPosts(posts []*interfaces.Post, ids []string) ([]*interfaces.Post, []error) {
	if len(ids) == 0 {
		return posts, nil
	}
	byID := make(map[string]*interfaces.Post, len(posts))
	for _, post := range posts {
		byID[post.ID] = post
	}
	var (
		selected []*interfaces.Post
		missing  []error
		seen     = map[string]struct{}{}
	)
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		post, ok := byID[id]
		if !ok {
			missing = append(missing, fmt.Errorf("%w: %s", ErrPostNotFound, id))
			continue
		}
		selected = append(selected, post)
	}
	return selected, missing
}

func siteTitle(site sexp.Map) string {
	if v, ok := site.Lookup("title"); ok {
		if title, ok := v.(sexp.String); ok {
			return string(title)
		}
	}
	return ""
}

func outputPath(id string) string {
	return id + ".html"
}

func countErrors(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
