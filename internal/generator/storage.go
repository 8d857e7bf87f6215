package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

type writeCategory string

const (
	categoryPage     writeCategory = "page"
	categoryIndex    writeCategory = "index"
	categoryManifest writeCategory = "manifest"
)

// WriteFileRequest describes one artifact written below the output directory.
type WriteFileRequest struct {
	// Path is relative to the output directory, slash separated.
	Path     string
	Content  io.Reader
	Size     int64
	Category writeCategory
	Checksum string
}

// ArtifactWriter abstracts where build outputs go. Paths are relative to
// the writer's root.
type ArtifactWriter interface {
	WriteFile(ctx context.Context, req WriteFileRequest) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Exists(ctx context.Context, path string) (bool, error)
	Clean(ctx context.Context) error
}

// NewFileWriter writes artifacts below root. Files are replaced atomically
// so readers never observe a half-written page.
func NewFileWriter(root string) ArtifactWriter {
	return &fileWriter{root: root}
}

type fileWriter struct {
	root string
}

func (w *fileWriter) resolve(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

func (w *fileWriter) WriteFile(ctx context.Context, req WriteFileRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := w.resolve(req.Path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("generator: ensure dir for %s: %w", req.Path, err)
	}
	if err := atomic.WriteFile(target, req.Content); err != nil {
		return fmt.Errorf("generator: write %s %s: %w", req.Category, req.Path, err)
	}
	return nil
}

func (w *fileWriter) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(w.resolve(path))
}

func (w *fileWriter) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(w.resolve(path))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Clean removes everything inside root but keeps root itself.
func (w *fileWriter) Clean(ctx context.Context) error {
	entries, err := os.ReadDir(w.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("generator: read output dir: %w", err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.RemoveAll(filepath.Join(w.root, entry.Name())); err != nil {
			return fmt.Errorf("generator: remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// dryRunWriter reads through to the real output but discards writes.
type dryRunWriter struct {
	ArtifactWriter
}

func (dryRunWriter) WriteFile(context.Context, WriteFileRequest) error { return nil }
func (dryRunWriter) Clean(context.Context) error                       { return nil }
