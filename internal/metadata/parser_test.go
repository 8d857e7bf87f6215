package metadata

import (
	"errors"
	"strings"
	"testing"
)

func TestParseWellFormedBlock(t *testing.T) {
	fields, err := Parse("posts/hello.md", `(post (title "Hello") (date "2025-01-01"))`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	assertFields(t, fields, map[string]string{
		"title": "Hello",
		"date":  "2025-01-01",
	})
}

func TestParseRecordCapturesTag(t *testing.T) {
	record, err := ParseRecord("a.md", "\n\t  (post\n  (title \"Hi\"))\n")
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if record.Tag != "post" {
		t.Fatalf("expected tag post, got %q", record.Tag)
	}
	assertFields(t, record.Fields, map[string]string{"title": "Hi"})
}

func TestParseFieldPolicies(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "duplicate keys keep the last value",
			input: `(post (k "a") (k "b"))`,
			want:  map[string]string{"k": "b"},
		},
		{
			name:  "values are trimmed",
			input: "(post (title   \"  Spaced out  \"   )\n  (date\t\"2025\"\n))",
			want:  map[string]string{"title": "Spaced out", "date": "2025"},
		},
		{
			name:  "unquoted values are kept as text",
			input: `(post (draft true) (weight 10))`,
			want:  map[string]string{"draft": "true", "weight": "10"},
		},
		{
			name:  "parentheses inside strings are literal",
			input: `(post (title "a (b) c"))`,
			want:  map[string]string{"title": "a (b) c"},
		},
		{
			name:  "deeper content is flattened to raw text",
			input: `(post (tags ("go" "lisp")) (title "x"))`,
			want:  map[string]string{"tags": `("go" "lisp")`, "title": "x"},
		},
		{
			name:  "deeply nested content keeps its shape",
			input: `(post (nav (a (b c)) (d)))`,
			want:  map[string]string{"nav": "(a (b c)) (d)"},
		},
		{
			name:  "multiple strings in one value",
			input: `(post (title "Hello" "World"))`,
			want:  map[string]string{"title": "Hello World"},
		},
		{
			name:  "quote directly after key starts the value",
			input: `(post (title"Tight"))`,
			want:  map[string]string{"title": "Tight"},
		},
		{
			name:  "quoted keys",
			input: `(post ("long key" "v"))`,
			want:  map[string]string{"long key": "v"},
		},
		{
			name:  "pairs without a key are dropped",
			input: `(post () ( ) (title "kept"))`,
			want:  map[string]string{"title": "kept"},
		},
		{
			name:  "key without value",
			input: `(post (draft))`,
			want:  map[string]string{"draft": ""},
		},
		{
			name:  "unknown keys accepted",
			input: `(page (anything "goes") (x-y_z "1"))`,
			want:  map[string]string{"anything": "goes", "x-y_z": "1"},
		},
		{
			name:  "stray depth-one text is ignored",
			input: `(post extra "with (parens)" (title "x"))`,
			want:  map[string]string{"title": "x"},
		},
		{
			name:  "trailing text after the block is ignored",
			input: "(post (title \"x\"))\n# not metadata (",
			want:  map[string]string{"title": "x"},
		},
		{
			name:  "unicode content",
			input: `(post (title "Grüße ✓"))`,
			want:  map[string]string{"title": "Grüße ✓"},
		},
		{
			name:  "empty record",
			input: `(post)`,
			want:  map[string]string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := Parse("case.md", tc.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.input, err)
			}
			assertFields(t, fields, tc.want)
		})
	}
}

func TestParseKeepsBytesVerbatim(t *testing.T) {
	fields, err := Parse("a.md", "(post (t \"\xff\") (name caf\xc3\xa9\xfe) (deep (x \"\xff\")))")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	assertFields(t, fields, map[string]string{
		"t":    "\xff",
		"name": "caf\xc3\xa9\xfe",
		"deep": "(x \"\xff\")",
	})
}

func TestParseMissingHeader(t *testing.T) {
	for _, input := range []string{
		`post (title "x")`,
		"",
		"   \n\t",
		`"(post)"`,
	} {
		fields, err := Parse("posts/bad.md", input)
		if err == nil {
			t.Fatalf("expected error for %q", input)
		}
		if fields != nil {
			t.Fatalf("expected no map on failure, got %#v", fields)
		}
		if !errors.Is(err, ErrMissingHeader) {
			t.Fatalf("expected ErrMissingHeader for %q, got %v", input, err)
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("expected *ParseError, got %T", err)
		}
		if perr.Kind != MissingHeader || perr.Source != "posts/bad.md" || perr.Reason == "" {
			t.Fatalf("unexpected parse error fields: %#v", perr)
		}
	}
}

func TestParseUnterminatedBlock(t *testing.T) {
	cases := map[string]string{
		"missing closing paren": `(post (title "Hi")`,
		"open string":           `(post (title "Hi))`,
		"open pair":             `(post (title "Hi"`,
		"only header":           `(`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			fields, err := Parse("posts/open.md", input)
			if !errors.Is(err, ErrUnterminatedBlock) {
				t.Fatalf("expected ErrUnterminatedBlock, got %v", err)
			}
			if errors.Is(err, ErrMissingHeader) {
				t.Fatal("unterminated error must not match missing header")
			}
			if fields != nil {
				t.Fatalf("expected nil map, got %#v", fields)
			}
			if !strings.Contains(err.Error(), "posts/open.md") {
				t.Fatalf("expected source in error message, got %q", err.Error())
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	err := newParseError(MissingHeader, "", "boom")
	if got := err.Error(); got != "metadata missing_header in <unknown>: boom" {
		t.Fatalf("unexpected message %q", got)
	}
}

func assertFields(t *testing.T, got, want map[string]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d fields, got %d: %#v", len(want), len(got), got)
	}
	for key, value := range want {
		if got[key] != value {
			t.Fatalf("field %q: want %q, got %q (all: %#v)", key, value, got[key], got)
		}
	}
}
