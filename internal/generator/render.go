package generator

import (
	"context"

	"github.com/goliatone/go-bower/internal/markup"
	"github.com/goliatone/go-bower/pkg/sexp"
)

// evaluate runs a theme template and renders the resulting tree.
func (s *service) evaluate(ctx context.Context, name string, env sexp.Map) (string, error) {
	tree, err := s.deps.Templates.Evaluate(ctx, name, env)
	if err != nil {
		return "", err
	}
	return markup.Render(tree), nil
}
