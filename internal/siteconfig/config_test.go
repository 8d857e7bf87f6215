package siteconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/goliatone/go-bower/pkg/sexp"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"content dir", func(c *Config) { c.Build.ContentDir = " " }, ErrContentDirRequired},
		{"theme dir", func(c *Config) { c.Build.ThemeDir = "" }, ErrThemeDirRequired},
		{"output dir", func(c *Config) { c.Build.OutputDir = "" }, ErrOutputDirRequired},
		{"output equals content", func(c *Config) { c.Build.OutputDir = c.Build.ContentDir }, ErrOutputIsContentDir},
		{"workers", func(c *Config) { c.Build.Workers = -1 }, ErrWorkersInvalid},
		{"timeout", func(c *Config) { c.Build.RenderTimeout = -time.Second }, ErrRenderTimeout},
		{"provider", func(c *Config) { c.Logging.Provider = "syslog" }, ErrLoggingProviderUnknown},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, ErrLoggingLevelInvalid},
		{"format", func(c *Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, ErrLoggingFormatInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.hcl")
	writeFile(t, path, `
site {
  title    = "Field Notes"
  base_url = "https://example.com"
  params = {
    tagline = "small posts"
    year    = 2025
    ratio   = 1.5
    nav     = ["home", "about"]
  }
}

build {
  content_dir    = "posts"
  output_dir     = "/tmp/bower-out"
  workers        = 3
  incremental    = false
  render_timeout = "2s"
}

markdown {
  recursive  = true
  extensions = ["table"]
}

logging {
  provider = "gologger"
  format   = "pretty"
  focus    = ["bower.generator"]
}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Site.Title != "Field Notes" || cfg.Site.BaseURL != "https://example.com" || cfg.Site.Language != "en" {
		t.Fatalf("unexpected site %#v", cfg.Site)
	}
	if cfg.Build.ContentDir != filepath.Join(dir, "posts") {
		t.Fatalf("expected content dir relative to config, got %s", cfg.Build.ContentDir)
	}
	if cfg.Build.ThemeDir != filepath.Join(dir, "theme") {
		t.Fatalf("expected default theme dir relative to config, got %s", cfg.Build.ThemeDir)
	}
	if cfg.Build.OutputDir != "/tmp/bower-out" {
		t.Fatalf("expected absolute output dir untouched, got %s", cfg.Build.OutputDir)
	}
	if cfg.Build.Workers != 3 || cfg.Build.Incremental || cfg.Build.RenderTimeout != 2*time.Second {
		t.Fatalf("unexpected build %#v", cfg.Build)
	}
	if !cfg.Markdown.Recursive || cfg.Markdown.Pattern != "*.md" || len(cfg.Markdown.Extensions) != 1 {
		t.Fatalf("unexpected markdown %#v", cfg.Markdown)
	}
	if cfg.Logging.Provider != "gologger" || cfg.Logging.Level != "info" || cfg.Logging.Focus[0] != "bower.generator" {
		t.Fatalf("unexpected logging %#v", cfg.Logging)
	}

	params := cfg.Site.Params
	checks := map[string]sexp.Value{
		"tagline": sexp.String("small posts"),
		"year":    sexp.Int(2025),
		"ratio":   sexp.Float(1.5),
		"nav":     sexp.List{sexp.String("home"), sexp.String("about")},
	}
	for key, want := range checks {
		got, ok := params.Lookup(key)
		if !ok || !sexp.Equal(got, want) {
			t.Fatalf("param %s: want %v, got %v", key, want, got)
		}
	}

	site := cfg.SiteValue()
	if v, _ := site.Lookup("title"); !sexp.Equal(v, sexp.String("Field Notes")) {
		t.Fatalf("unexpected site value title %v", v)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"syntax":          "site {",
		"unknown block":   "theme { name = \"x\" }",
		"bad duration":    "build {\n render_timeout = \"soon\"\n}",
		"params not map":  "site {\n params = \"flat\"\n}",
		"fails validation": "build {\n workers = -2\n}",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".hcl")
			writeFile(t, path, body)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.hcl")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromCty(t *testing.T) {
	value, err := FromCty(cty.ObjectVal(map[string]cty.Value{
		"n":    cty.NullVal(cty.String),
		"flag": cty.True,
		"big":  cty.NumberFloatVal(1e30),
		"set":  cty.SetVal([]cty.Value{cty.StringVal("a")}),
	}))
	if err != nil {
		t.Fatalf("FromCty: %v", err)
	}
	m := value.(sexp.Map)
	if v, _ := m.Lookup("n"); !sexp.Equal(v, sexp.Null{}) {
		t.Fatalf("expected null, got %v", v)
	}
	if v, _ := m.Lookup("flag"); !sexp.Equal(v, sexp.Bool(true)) {
		t.Fatalf("expected true, got %v", v)
	}
	if v, _ := m.Lookup("big"); v.Kind() != sexp.KindFloat {
		t.Fatalf("expected out of range integer to become a float, got %v", v)
	}
	if v, _ := m.Lookup("set"); !sexp.Equal(v, sexp.List{sexp.String("a")}) {
		t.Fatalf("unexpected set %v", v)
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
