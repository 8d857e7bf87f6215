package markdown

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-bower/pkg/interfaces"
)

// GoldmarkParser implements interfaces.MarkdownParser on top of goldmark.
// It holds no per-call state and is safe for concurrent use.
type GoldmarkParser struct {
	defaults interfaces.ParseOptions
	engine   goldmark.Markdown
}

// NewGoldmarkParser builds a parser whose default engine is configured once
// from defaults.
func NewGoldmarkParser(defaults interfaces.ParseOptions) *GoldmarkParser {
	return &GoldmarkParser{
		defaults: defaults,
		engine:   newEngine(defaults),
	}
}

// Parse renders markdown with the default options.
func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return convert(p.engine, markdown)
}

// ParseWithOptions renders markdown with opts. A fresh engine is built unless
// opts equal the defaults.
func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	if sameOptions(opts, p.defaults) {
		return convert(p.engine, markdown)
	}
	return convert(newEngine(opts), markdown)
}

func convert(engine goldmark.Markdown, markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	return buf.Bytes(), nil
}

func newEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	// Post bodies are trusted input, raw HTML passes through unless SafeMode.
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}
	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

// DefaultExtensions is used when no extensions are configured.
var DefaultExtensions = []string{"gfm", "footnote", "linkify", "tasklist"}

// collectExtensions resolves names against the registry. Unknown names and
// duplicates are skipped.
func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		names = DefaultExtensions
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := seen[key]; dup {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		seen[key] = struct{}{}
		extenders = append(extenders, ext)
	}
	return extenders
}

func sameOptions(a, b interfaces.ParseOptions) bool {
	return a.HardWraps == b.HardWraps && a.SafeMode == b.SafeMode && slices.Equal(a.Extensions, b.Extensions)
}
