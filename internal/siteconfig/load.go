package siteconfig

import (
	"fmt"
	"math/big"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/goliatone/go-bower/pkg/sexp"
)

// fileRoot mirrors the top-level blocks of a site file. Every block and
// attribute is optional and absent values keep their defaults. Unknown
// blocks or attributes are decode errors.
type fileRoot struct {
	Site     *siteBlock     `hcl:"site,block"`
	Build    *buildBlock    `hcl:"build,block"`
	Markdown *markdownBlock `hcl:"markdown,block"`
	Logging  *loggingBlock  `hcl:"logging,block"`
}

type siteBlock struct {
	Title    *string   `hcl:"title,optional"`
	BaseURL  *string   `hcl:"base_url,optional"`
	Language *string   `hcl:"language,optional"`
	Author   *string   `hcl:"author,optional"`
	Params   cty.Value `hcl:"params,optional"`
}

type buildBlock struct {
	ContentDir    *string `hcl:"content_dir,optional"`
	ThemeDir      *string `hcl:"theme_dir,optional"`
	OutputDir     *string `hcl:"output_dir,optional"`
	Workers       *int    `hcl:"workers,optional"`
	Incremental   *bool   `hcl:"incremental,optional"`
	RenderTimeout *string `hcl:"render_timeout,optional"`
	MetricsFile   *string `hcl:"metrics_file,optional"`
}

type markdownBlock struct {
	Pattern    *string  `hcl:"pattern,optional"`
	Recursive  *bool    `hcl:"recursive,optional"`
	Extensions []string `hcl:"extensions,optional"`
	HardWraps  *bool    `hcl:"hard_wraps,optional"`
	SafeMode   *bool    `hcl:"safe_mode,optional"`
}

type loggingBlock struct {
	Provider  *string  `hcl:"provider,optional"`
	Level     *string  `hcl:"level,optional"`
	Format    *string  `hcl:"format,optional"`
	AddSource *bool    `hcl:"add_source,optional"`
	Focus     []string `hcl:"focus,optional"`
}

// Load reads an HCL site file over DefaultConfig. Relative directories are
// resolved against the directory holding the file. The result is validated.
func Load(path string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("siteconfig: parse %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return Config{}, fmt.Errorf("siteconfig: decode %s: %w", path, diags)
	}

	cfg := DefaultConfig()
	if err := root.apply(&cfg); err != nil {
		return Config{}, fmt.Errorf("siteconfig: %s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (r fileRoot) apply(cfg *Config) error {
	if s := r.Site; s != nil {
		setString(&cfg.Site.Title, s.Title)
		setString(&cfg.Site.BaseURL, s.BaseURL)
		setString(&cfg.Site.Language, s.Language)
		setString(&cfg.Site.Author, s.Author)
		if !s.Params.IsNull() {
			params, err := FromCty(s.Params)
			if err != nil {
				return fmt.Errorf("site.params: %w", err)
			}
			m, ok := params.(sexp.Map)
			if !ok {
				return fmt.Errorf("site.params: expected an object, got %s", params.Kind())
			}
			cfg.Site.Params = m
		}
	}
	if b := r.Build; b != nil {
		setString(&cfg.Build.ContentDir, b.ContentDir)
		setString(&cfg.Build.ThemeDir, b.ThemeDir)
		setString(&cfg.Build.OutputDir, b.OutputDir)
		setString(&cfg.Build.MetricsFile, b.MetricsFile)
		if b.Workers != nil {
			cfg.Build.Workers = *b.Workers
		}
		if b.Incremental != nil {
			cfg.Build.Incremental = *b.Incremental
		}
		if b.RenderTimeout != nil {
			timeout, err := time.ParseDuration(strings.TrimSpace(*b.RenderTimeout))
			if err != nil {
				return fmt.Errorf("build.render_timeout: %w", err)
			}
			cfg.Build.RenderTimeout = timeout
		}
	}
	if m := r.Markdown; m != nil {
		setString(&cfg.Markdown.Pattern, m.Pattern)
		setBool(&cfg.Markdown.Recursive, m.Recursive)
		setBool(&cfg.Markdown.HardWraps, m.HardWraps)
		setBool(&cfg.Markdown.SafeMode, m.SafeMode)
		if m.Extensions != nil {
			cfg.Markdown.Extensions = append([]string(nil), m.Extensions...)
		}
	}
	if l := r.Logging; l != nil {
		setString(&cfg.Logging.Provider, l.Provider)
		setString(&cfg.Logging.Level, l.Level)
		setString(&cfg.Logging.Format, l.Format)
		setBool(&cfg.Logging.AddSource, l.AddSource)
		if l.Focus != nil {
			cfg.Logging.Focus = append([]string(nil), l.Focus...)
		}
	}
	return nil
}

func (cfg *Config) resolvePaths(base string) {
	for _, dir := range []*string{&cfg.Build.ContentDir, &cfg.Build.ThemeDir, &cfg.Build.OutputDir, &cfg.Build.MetricsFile} {
		if *dir != "" && !filepath.IsAbs(*dir) {
			*dir = filepath.Join(base, *dir)
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// FromCty converts an HCL value into a Value. Whole numbers become Int,
// other numbers Float; objects and maps become Symbol-keyed Maps.
func FromCty(v cty.Value) (sexp.Value, error) {
	if v.IsNull() || !v.IsKnown() {
		return sexp.Null{}, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return sexp.String(v.AsString()), nil

	case ty == cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return nil, err
		}
		return sexp.Bool(b), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return sexp.Int(i), nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("number: %w", err)
		}
		return sexp.Float(f), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		list := make(sexp.List, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			value, err := FromCty(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		return list, nil

	case ty.IsObjectType() || ty.IsMapType():
		var entries []sexp.Entry
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			value, err := FromCty(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute %q: %w", key.AsString(), err)
			}
			entries = append(entries, sexp.Entry{Key: sexp.Symbol(key.AsString()), Value: value})
		}
		return sexp.NewMap(entries...), nil

	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
