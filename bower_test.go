package bower_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-bower"
)

func TestParseMetadataAndRender(t *testing.T) {
	fields, err := bower.ParseMetadata("a.md", `(post (title "Hi") (date "2025-01-01"))`)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if fields["title"] != "Hi" || fields["date"] != "2025-01-01" {
		t.Fatalf("unexpected fields %v", fields)
	}

	if _, err := bower.ParseMetadata("b.md", "title: yaml"); !errors.Is(err, bower.ErrMissingHeader) {
		t.Fatalf("expected ErrMissingHeader, got %v", err)
	}

	tree := bower.List{
		bower.Symbol("a"),
		bower.List{bower.List{bower.Symbol("href"), bower.String("/")}},
		bower.String("home"),
	}
	if got := bower.Render(tree); got != `<a href="/">home</a>` {
		t.Fatalf("unexpected markup %q", got)
	}
}

func TestModuleBuildAndClean(t *testing.T) {
	out := t.TempDir()
	cfg := bower.DefaultConfig()
	cfg.Site.Title = "Notes"
	cfg.Build.OutputDir = out

	module, err := bower.New(cfg,
		bower.WithContentFS(fstest.MapFS{
			"first.md": {Data: []byte("---\n(post (title \"First\") (date \"2025-01-01\"))\n---\nbody\n")},
		}),
		bower.WithThemeFS(fstest.MapFS{
			"post.expr":  {Data: []byte(`[sym("article"), [], content]`)},
			"page.expr":  {Data: []byte(`[sym("html"), [], [sym("title"), [], title], content]`)},
			"index.expr": {Data: []byte(`[sym("ol"), [], map(posts, [sym("li"), [], #.title])]`)},
		}),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := module.Build(context.Background(), bower.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result == nil || result.PostsBuilt != 1 {
		t.Fatalf("unexpected result %#v", result)
	}

	data, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if want := "<!DOCTYPE html>\n<html><title>Notes</title><ol><li>First</li></ol></html>"; string(data) != want {
		t.Fatalf("unexpected index\nwant: %s\ngot:  %s", want, data)
	}

	if err := module.Clean(context.Background()); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "first.html")); !os.IsNotExist(err) {
		t.Fatalf("expected clean to remove pages, got %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := bower.DefaultConfig()
	cfg.Build.OutputDir = cfg.Build.ContentDir
	if _, err := bower.New(cfg); !errors.Is(err, bower.ErrOutputIsContentDir) {
		t.Fatalf("expected ErrOutputIsContentDir, got %v", err)
	}

	cfg = bower.DefaultConfig()
	cfg.Build.ThemeDir = filepath.Join(t.TempDir(), "missing")
	_, err := bower.New(cfg, bower.WithContentFS(fstest.MapFS{}))
	if err == nil || !strings.Contains(err.Error(), "theme directory") {
		t.Fatalf("expected theme directory error, got %v", err)
	}
}
