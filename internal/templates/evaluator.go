// Package templates evaluates theme templates written in the expr language.
//
// A theme is a directory of "<name>.expr" files. Each program evaluates to a
// tag tree built from expr arrays, for example
//
//	[sym("p"), [attr("class", "lead")], title]
//
// Arrays become Lists, so a leading sym() marks an element. The builtins are
// sym, vec, attr and str.
package templates

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/goliatone/go-bower/internal/logging"
	"github.com/goliatone/go-bower/internal/markup"
	"github.com/goliatone/go-bower/pkg/interfaces"
	"github.com/goliatone/go-bower/pkg/sexp"
)

// Extension is appended to template names to locate their source.
const Extension = ".expr"

var (
	// ErrTemplateNotFound is returned when the theme has no source for a name.
	ErrTemplateNotFound = errors.New("templates: template not found")
	// ErrUnsupportedResult is returned when a program yields a value that has
	// no tree representation, such as a function.
	ErrUnsupportedResult = errors.New("templates: unsupported result type")
)

type compiled struct {
	program  *vm.Program
	checksum string
}

// Evaluator compiles theme programs on first use and caches them for the
// lifetime of the evaluator. It is safe for concurrent use.
type Evaluator struct {
	theme  fs.FS
	logger interfaces.Logger

	mu       sync.Mutex
	programs map[string]*compiled
}

var _ interfaces.TemplateEvaluator = (*Evaluator)(nil)

// NewEvaluator reads templates from theme.
func NewEvaluator(theme fs.FS, logger interfaces.Logger) *Evaluator {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Evaluator{
		theme:    theme,
		logger:   logger,
		programs: map[string]*compiled{},
	}
}

// Evaluate runs the named template against env.
func (e *Evaluator) Evaluate(ctx context.Context, name string, env sexp.Map) (sexp.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tmpl, err := e.load(name)
	if err != nil {
		return nil, err
	}

	out, err := expr.Run(tmpl.program, ToNative(env))
	if err != nil {
		return nil, fmt.Errorf("templates: run %s: %w", name, err)
	}
	value, err := FromNative(out)
	if err != nil {
		return nil, fmt.Errorf("templates: result of %s: %w", name, err)
	}
	return value, nil
}

// Checksum returns the hex SHA-256 of the template source.
func (e *Evaluator) Checksum(name string) (string, error) {
	tmpl, err := e.load(name)
	if err != nil {
		return "", err
	}
	return tmpl.checksum, nil
}

func (e *Evaluator) load(name string) (*compiled, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.programs[name]; ok {
		return tmpl, nil
	}

	file := strings.TrimSuffix(name, Extension) + Extension
	source, err := fs.ReadFile(e.theme, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, file)
		}
		return nil, fmt.Errorf("templates: read %s: %w", file, err)
	}

	program, err := Compile(string(source))
	if err != nil {
		return nil, fmt.Errorf("templates: compile %s: %w", file, err)
	}

	sum := sha256.Sum256(source)
	tmpl := &compiled{program: program, checksum: hex.EncodeToString(sum[:])}
	e.programs[name] = tmpl

	logging.WithFields(e.logger, map[string]any{"template": file}).Debug("templates.compiled")
	return tmpl, nil
}

// Compile compiles a template source with the builtins enabled. Variables
// missing from the environment evaluate to nil.
func Compile(source string) (*vm.Program, error) {
	return expr.Compile(source, options()...)
}

func options() []expr.Option {
	return []expr.Option{
		expr.AllowUndefinedVariables(),
		expr.Function("sym", symFunc, new(func(string) sexp.Symbol)),
		expr.Function("vec", vecFunc),
		expr.Function("attr", attrFunc, new(func(any, any) sexp.List)),
		expr.Function("str", strFunc, new(func(any) string)),
	}
}

func symFunc(params ...any) (any, error) {
	name, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("sym: expected string, got %T", params[0])
	}
	return sexp.Symbol(name), nil
}

func vecFunc(params ...any) (any, error) {
	items, err := fromSlice(params)
	if err != nil {
		return nil, fmt.Errorf("vec: %w", err)
	}
	return sexp.Vector(items), nil
}

func attrFunc(params ...any) (any, error) {
	var key sexp.Value
	switch k := params[0].(type) {
	case string:
		key = sexp.Symbol(k)
	case sexp.Symbol:
		key = k
	default:
		return nil, fmt.Errorf("attr: key must be a string, got %T", params[0])
	}
	value, err := FromNative(params[1])
	if err != nil {
		return nil, fmt.Errorf("attr: %w", err)
	}
	return sexp.List{key, value}, nil
}

func strFunc(params ...any) (any, error) {
	value, err := FromNative(params[0])
	if err != nil {
		return nil, fmt.Errorf("str: %w", err)
	}
	return markup.Render(value), nil
}
