package interfaces

import (
	"context"

	"github.com/goliatone/go-bower/pkg/sexp"
)

// TemplateEvaluator evaluates a named theme template against an environment
// and returns the resulting value tree.
type TemplateEvaluator interface {
	Evaluate(ctx context.Context, name string, env sexp.Map) (sexp.Value, error)
	// Checksum identifies the current source of a template so incremental
	// builds can detect theme edits.
	Checksum(name string) (string, error)
}
