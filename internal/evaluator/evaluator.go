// Package evaluator lowers operation trees into a target representation.
//
// An Evaluator is parameterised by the representation T it produces (an
// in-memory predicate, a SQL clause, ...). It owns two strategy tables keyed
// by operation kind and walks the tree bottom-up, handing each node's lowered
// children to the strategy registered for the node's kind. Field comparisons
// go through the same binary table: the field access and the constant are
// built by the Target and combined by the comparison strategy.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/nlstn/go-filters/internal/ast"
	"github.com/nlstn/go-filters/internal/filtererrors"
	"github.com/nlstn/go-filters/internal/observability"
)

// Target builds the leaves of a lowered tree.
type Target[T any] interface {
	// Field returns the representation of reading the named field.
	Field(name string) (T, error)
	// Constant returns the representation of a literal value. value may be nil.
	Constant(value any) (T, error)
}

// BinaryFunc combines two lowered operands. Logical kinds receive two lowered
// sub-trees; comparison kinds receive a field access and a constant.
type BinaryFunc[T any] func(left, right T) (T, error)

// UnaryFunc wraps one lowered operand.
type UnaryFunc[T any] func(operand T) (T, error)

// FieldOverride lowers every comparison on one field in place of the default
// field/constant/strategy combination.
type FieldOverride[T any] func(e *Evaluator[T], c *ast.FieldComparison) (T, error)

// Option configures an Evaluator.
type Option func(*settings)

type settings struct {
	obs    *observability.Config
	logger *slog.Logger
}

// WithObservability records a span and error metrics for every LowerContext call.
func WithObservability(cfg *observability.Config) Option {
	return func(s *settings) {
		s.obs = cfg
	}
}

// WithLogger sets the logger used for lowering failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// Evaluator lowers trees into T. Registration is not synchronised: register
// everything before sharing the evaluator between goroutines.
type Evaluator[T any] struct {
	name      string
	target    Target[T]
	binary    map[ast.Kind]BinaryFunc[T]
	unary     map[ast.Kind]UnaryFunc[T]
	overrides map[string]FieldOverride[T]
	settings
}

// New creates an evaluator with empty strategy tables. name identifies the
// target in spans, metrics and logs.
func New[T any](name string, target Target[T], opts ...Option) *Evaluator[T] {
	e := &Evaluator[T]{
		name:      name,
		target:    target,
		binary:    make(map[ast.Kind]BinaryFunc[T]),
		unary:     make(map[ast.Kind]UnaryFunc[T]),
		overrides: make(map[string]FieldOverride[T]),
	}
	for _, opt := range opts {
		opt(&e.settings)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.obs == nil {
		e.obs = observability.NewConfig()
	}
	return e
}

// Name returns the target name given to New.
func (e *Evaluator[T]) Name() string { return e.name }

// Target returns the leaf builder.
func (e *Evaluator[T]) Target() Target[T] { return e.target }

// RegisterBinary sets the strategy for a binary or comparison kind. A later
// registration replaces an earlier one; a nil fn removes the kind.
func (e *Evaluator[T]) RegisterBinary(kind ast.Kind, fn BinaryFunc[T]) {
	kind = normalizeKind(kind)
	if fn == nil {
		delete(e.binary, kind)
		return
	}
	e.binary[kind] = fn
}

// RegisterUnary sets the strategy for a unary kind. A nil fn removes the kind.
func (e *Evaluator[T]) RegisterUnary(kind ast.Kind, fn UnaryFunc[T]) {
	kind = normalizeKind(kind)
	if fn == nil {
		delete(e.unary, kind)
		return
	}
	e.unary[kind] = fn
}

// RegisterFieldOverride routes every comparison on field (matched
// case-insensitively) to fn. A nil fn removes the override.
func (e *Evaluator[T]) RegisterFieldOverride(field string, fn FieldOverride[T]) {
	key := strings.ToLower(field)
	if fn == nil {
		delete(e.overrides, key)
		return
	}
	e.overrides[key] = fn
}

// Supports reports whether a binary or unary strategy exists for kind.
func (e *Evaluator[T]) Supports(kind ast.Kind) bool {
	kind = normalizeKind(kind)
	_, b := e.binary[kind]
	_, u := e.unary[kind]
	return b || u
}

// Kinds returns every kind with a registered strategy, sorted.
func (e *Evaluator[T]) Kinds() []ast.Kind {
	kinds := slices.Collect(maps.Keys(e.binary))
	for k := range e.unary {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return slices.Compact(kinds)
}

// Clone returns an evaluator with copies of the strategy tables, so that
// registrations on the clone leave e untouched.
func (e *Evaluator[T]) Clone() *Evaluator[T] {
	return &Evaluator[T]{
		name:      e.name,
		target:    e.target,
		binary:    maps.Clone(e.binary),
		unary:     maps.Clone(e.unary),
		overrides: maps.Clone(e.overrides),
		settings:  e.settings,
	}
}

// Lower lowers a parsed filter.
func (e *Evaluator[T]) Lower(f *ast.Filter) (T, error) {
	return e.LowerContext(context.Background(), f)
}

// LowerContext is Lower with a context carrying the caller's trace.
func (e *Evaluator[T]) LowerContext(ctx context.Context, f *ast.Filter) (T, error) {
	ctx, span := e.obs.Tracer().StartLower(ctx, e.name)
	defer span.End()

	var result T
	var err error
	if f == nil {
		err = filtererrors.Evaluation(filtererrors.ErrUnsupportedOperation, "nil filter")
	} else {
		result, err = e.LowerOperation(f.Root)
	}

	if err != nil {
		e.obs.Tracer().RecordError(span, err)
		e.obs.Metrics().RecordLowerError(ctx, e.name, err)
		observability.LoggerWithTrace(ctx, e.logger).Debug("Failed to lower filter",
			observability.LogFieldTarget, e.name,
			observability.LogFieldQuery, f.String(),
			observability.LogFieldError, err)
		var zero T
		return zero, err
	}
	return result, nil
}

// LowerOperation lowers a sub-tree. Field overrides call it to lower the
// trees they build.
func (e *Evaluator[T]) LowerOperation(op ast.Operation) (T, error) {
	var zero T

	switch n := op.(type) {
	case *ast.Binary:
		left, err := e.LowerOperation(n.Left)
		if err != nil {
			return zero, err
		}
		right, err := e.LowerOperation(n.Right)
		if err != nil {
			return zero, err
		}
		return e.Binary(n.Kind, left, right)

	case *ast.Unary:
		operand, err := e.LowerOperation(n.Operand)
		if err != nil {
			return zero, err
		}
		return e.Unary(n.Kind, operand)

	case *ast.FieldComparison:
		if override, ok := e.overrides[strings.ToLower(n.Field)]; ok {
			return override(e, n)
		}
		return e.Compare(n.Kind, n.Field, n.Value)

	case nil:
		return zero, filtererrors.Evaluation(filtererrors.ErrUnsupportedOperation, "nil operation")

	default:
		return zero, filtererrors.Evaluation(filtererrors.ErrUnsupportedOperation, fmt.Sprintf("%T", op))
	}
}

// Binary applies the strategy registered for kind.
func (e *Evaluator[T]) Binary(kind ast.Kind, left, right T) (T, error) {
	fn, ok := e.binary[normalizeKind(kind)]
	if !ok {
		var zero T
		return zero, filtererrors.Evaluation(filtererrors.ErrNoEvaluator, string(kind))
	}
	return fn(left, right)
}

// Unary applies the strategy registered for kind.
func (e *Evaluator[T]) Unary(kind ast.Kind, operand T) (T, error) {
	fn, ok := e.unary[normalizeKind(kind)]
	if !ok {
		var zero T
		return zero, filtererrors.Evaluation(filtererrors.ErrNoEvaluator, string(kind))
	}
	return fn(operand)
}

// Compare lowers "field kind value" with the default combination, ignoring
// field overrides. Overrides use it to compare the fields they expand to.
func (e *Evaluator[T]) Compare(kind ast.Kind, field string, value any) (T, error) {
	var zero T

	if _, ok := e.binary[normalizeKind(kind)]; !ok {
		return zero, filtererrors.Evaluation(filtererrors.ErrNoEvaluator, string(kind))
	}
	access, err := e.target.Field(field)
	if err != nil {
		return zero, err
	}
	constant, err := e.target.Constant(value)
	if err != nil {
		return zero, err
	}
	return e.Binary(kind, access, constant)
}

func normalizeKind(kind ast.Kind) ast.Kind {
	return ast.Kind(strings.ToUpper(string(kind)))
}
