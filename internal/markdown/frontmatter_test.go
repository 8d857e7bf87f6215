package markdown

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-bower/internal/metadata"
)

func TestSplitDocument(t *testing.T) {
	source := "---\n(post\n  (title \"Hello\")\n  (date \"2025-01-01\"))\n---\n# Hello\n\nBody text.\n"

	record, body, err := SplitDocument("posts/hello.md", []byte(source))
	if err != nil {
		t.Fatalf("SplitDocument: %v", err)
	}
	if record.Tag != "post" {
		t.Fatalf("expected tag post, got %q", record.Tag)
	}
	if record.Fields["title"] != "Hello" || record.Fields["date"] != "2025-01-01" {
		t.Fatalf("unexpected fields %#v", record.Fields)
	}
	if !strings.Contains(string(body), "# Hello") || strings.Contains(string(body), "(post") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestSplitDocumentWithoutBlock(t *testing.T) {
	_, _, err := SplitDocument("posts/plain.md", []byte("# Just markdown\n"))
	if !errors.Is(err, metadata.ErrMissingHeader) {
		t.Fatalf("expected ErrMissingHeader, got %v", err)
	}
}

func TestSplitDocumentPropagatesParseErrors(t *testing.T) {
	cases := map[string]error{
		"---\ntitle: yaml\n---\nbody\n":     metadata.ErrMissingHeader,
		"---\n(post (title \"x\")\n---\nbody\n": metadata.ErrUnterminatedBlock,
	}
	for source, want := range cases {
		_, _, err := SplitDocument("posts/bad.md", []byte(source))
		if !errors.Is(err, want) {
			t.Fatalf("SplitDocument(%q): expected %v, got %v", source, want, err)
		}
		var perr *metadata.ParseError
		if !errors.As(err, &perr) || perr.Source != "posts/bad.md" {
			t.Fatalf("expected parse error carrying the source, got %#v", err)
		}
	}
}

func TestSplitDocumentUnclosedBlock(t *testing.T) {
	_, _, err := SplitDocument("posts/open.md", []byte("---\n(post (title \"x\"))\n# Body\n"))
	var perr *metadata.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected parse error, got %v", err)
	}
	if perr.Kind != metadata.MissingHeader || perr.Source != "posts/open.md" {
		t.Fatalf("unexpected parse error %#v", perr)
	}
	if !strings.Contains(perr.Reason, "closing ---") {
		t.Fatalf("expected reason to name the closing delimiter, got %q", perr.Reason)
	}
}
