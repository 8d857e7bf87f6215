package interfaces

import (
	"context"
	"time"

	"github.com/goliatone/go-bower/pkg/sexp"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Implementations are expected to be reusable across posts.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration decoding and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// PostService loads posts (metadata block plus Markdown body) from disk and
// renders their bodies into HTML.
type PostService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Post, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Post, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
}

// LoadOptions narrows discovery and overrides parser behaviour per call.
type LoadOptions struct {
	Pattern   string
	Recursive *bool
	Parser    ParseOptions
}

// Post is a parsed source document.
type Post struct {
	// ID names the post in URLs and output files.
	ID string
	// FilePath is relative to the content root, slash separated.
	FilePath string
	// Kind is the tag of the metadata record, e.g. "post".
	Kind     string
	Metadata map[string]string
	Title    string
	Date     string
	Body     []byte
	BodyHTML []byte
	// Checksum is the SHA-256 of the raw source.
	Checksum     []byte
	LastModified time.Time
}

// Value exposes the post to templates. Every metadata field is included as a
// Symbol-keyed String, followed by the derived id, path, kind, title, date and
// content fields, which take precedence over metadata of the same name.
func (p *Post) Value() sexp.Map {
	if p == nil {
		return sexp.Map{}
	}
	entries := make([]sexp.Entry, 0, len(p.Metadata)+6)
	for key, value := range p.Metadata {
		entries = append(entries, sexp.Entry{Key: sexp.Symbol(key), Value: sexp.String(value)})
	}
	entries = append(entries,
		sexp.Entry{Key: sexp.Symbol("id"), Value: sexp.String(p.ID)},
		sexp.Entry{Key: sexp.Symbol("path"), Value: sexp.String(p.FilePath)},
		sexp.Entry{Key: sexp.Symbol("kind"), Value: sexp.String(p.Kind)},
		sexp.Entry{Key: sexp.Symbol("title"), Value: sexp.String(p.Title)},
		sexp.Entry{Key: sexp.Symbol("date"), Value: sexp.String(p.Date)},
		sexp.Entry{Key: sexp.Symbol("content"), Value: sexp.String(string(p.BodyHTML))},
	)
	return sexp.NewMap(entries...)
}
