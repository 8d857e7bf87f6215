package markdown

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-bower/pkg/interfaces"
)

// LoaderConfig configures post discovery below a filesystem root.
type LoaderConfig struct {
	// Pattern filters file names, "*.md" when empty. Patterns containing a
	// slash match the full relative path.
	Pattern string
	// Recursive descends into sub-directories.
	Recursive bool
}

// Loader turns files of an fs.FS into posts. Bodies are not rendered here.
type Loader struct {
	fs        fs.FS
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader reading from filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	return &Loader{
		fs:        filesystem,
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
}

// LoadFile reads and splits a single post. name is slash separated and
// relative to the loader root.
func (l *Loader) LoadFile(ctx context.Context, name string) (*interfaces.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = path.Clean(strings.TrimPrefix(name, "/"))
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}
	info, err := fs.Stat(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", name, err)
	}

	record, body, err := SplitDocument(name, data)
	if err != nil {
		return nil, err
	}

	id, err := postID(name, record.Fields["slug"])
	if err != nil {
		return nil, err
	}

	title := record.Fields["title"]
	if title == "" {
		title = id
	}
	sum := sha256.Sum256(data)

	return &interfaces.Post{
		ID:           id,
		FilePath:     name,
		Kind:         record.Tag,
		Metadata:     record.Fields,
		Title:        title,
		Date:         record.Fields["date"],
		Body:         body,
		Checksum:     sum[:],
		LastModified: info.ModTime(),
	}, nil
}

// LoadDirectory loads every matching file below dir in path order. Files
// that fail to load are skipped and reported through the joined error, so
// callers receive both the good posts and the failures.
func (l *Loader) LoadDirectory(ctx context.Context, dir string, pattern string, recursive *bool) ([]*interfaces.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := path.Clean(strings.TrimPrefix(dir, "/"))
	if root == "" {
		root = "."
	}
	recurse := l.recursive
	if recursive != nil {
		recurse = *recursive
	}
	if strings.TrimSpace(pattern) == "" {
		pattern = l.pattern
	}

	var names []string
	walkErr := fs.WalkDir(l.fs, root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name != root && !recurse {
				return fs.SkipDir
			}
			return nil
		}
		if matchesPattern(pattern, root, name) {
			names = append(names, name)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("markdown loader walk %s: %w", root, walkErr)
	}
	sort.Strings(names)

	posts := make([]*interfaces.Post, 0, len(names))
	var errs []error
	for _, name := range names {
		post, err := l.LoadFile(ctx, name)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			errs = append(errs, err)
			continue
		}
		posts = append(posts, post)
	}
	return posts, errors.Join(errs...)
}

func matchesPattern(pattern, root, name string) bool {
	target := path.Base(name)
	if strings.Contains(pattern, "/") {
		target = strings.TrimPrefix(name, root+"/")
	}
	ok, err := path.Match(pattern, target)
	return err == nil && ok
}

// postID prefers the slug metadata field and falls back to the file name
// without extension. Both are normalised; a stem with nothing left after
// normalisation is used as is.
func postID(name, slugField string) (string, error) {
	if raw := strings.TrimSpace(slugField); raw != "" {
		normalized, err := slug.Normalize(raw)
		if err != nil {
			return "", fmt.Errorf("markdown loader slug %q in %s: %w", raw, name, err)
		}
		if normalized != "" {
			return normalized, nil
		}
	}
	base := path.Base(name)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if normalized, err := slug.Normalize(stem); err == nil && normalized != "" {
		return normalized, nil
	}
	return stem, nil
}
