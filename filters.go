// Package filters parses filter queries written in prefix (Polish) notation
// and turns them into in-memory predicates or GORM WHERE clauses.
//
// A query such as
//
//	and or eq Name Bob gt BirthDate 2022-11-12 lt Price 20
//
// is parsed against a registry of declared fields (Options) into an
// operation tree (Filter), which an Evaluator lowers into the target
// representation:
//
//	opts, _ := filters.NewOptions(
//		filters.NewField[string]("Name"),
//		filters.NewField[decimal.Decimal]("Price"),
//	)
//	parser, _ := filters.NewParser(opts)
//	f, err := parser.Parse("gt Price 20")
//	matches, err := filters.ApplyToSlice(filters.NewPredicateEvaluator(), f, products)
package filters

import (
	"github.com/nlstn/go-filters/internal/ast"
	"github.com/nlstn/go-filters/internal/query"
	"github.com/nlstn/go-filters/internal/schema"
)

// Re-export types from internal/schema for public API
type (
	Field     = schema.Field
	Options   = schema.Options
	Converter = schema.Converter
	Date      = schema.Date
	TimeOfDay = schema.TimeOfDay
	Char      = schema.Char
)

// Re-export types from internal/ast for public API
type (
	Kind                  = ast.Kind
	Operation             = ast.Operation
	Filter                = ast.Filter
	BinaryOperation       = ast.Binary
	UnaryOperation        = ast.Unary
	FieldComparison       = ast.FieldComparison
	BinaryConstructor     = ast.BinaryConstructor
	UnaryConstructor      = ast.UnaryConstructor
	ComparisonConstructor = ast.ComparisonConstructor
	ValueRule             = ast.ValueRule
)

// Built-in operation kinds.
const (
	KindAnd                = ast.KindAnd
	KindOr                 = ast.KindOr
	KindNot                = ast.KindNot
	KindEqual              = ast.KindEqual
	KindGreaterThan        = ast.KindGreaterThan
	KindGreaterThanOrEqual = ast.KindGreaterThanOrEqual
	KindLessThan           = ast.KindLessThan
	KindLessThanOrEqual    = ast.KindLessThanOrEqual
	KindContains           = ast.KindContains
	KindStartsWith         = ast.KindStartsWith
	KindEndsWith           = ast.KindEndsWith
)

// Constructors for the built-in operations, for building trees by hand or
// registering a built-in under another keyword.
var (
	And                = ast.And
	Or                 = ast.Or
	Not                = ast.Not
	Equals             = ast.Equals
	GreaterThan        = ast.GreaterThan
	GreaterThanOrEqual = ast.GreaterThanOrEqual
	LessThan           = ast.LessThan
	LessThanOrEqual    = ast.LessThanOrEqual
	Contains           = ast.Contains
	StartsWith         = ast.StartsWith
	EndsWith           = ast.EndsWith
)

// Constructor factories and value rules for custom operations.
var (
	NewBinary     = ast.NewBinary
	NewUnary      = ast.NewUnary
	NewComparison = ast.NewComparison
	AnyValue      = ast.AnyValue
	RejectString  = ast.RejectString
	RequireString = ast.RequireString
)

// Format renders an operation back to prefix notation.
func Format(op Operation) string {
	return ast.Format(op)
}

// Fields returns the canonical names of the fields op compares, in order of
// first appearance.
func Fields(op Operation) []string {
	return ast.Fields(op)
}

// NewOptions creates a registry with the default operators and converters and
// the given fields. At least one field is required.
func NewOptions(fields ...Field) (*Options, error) {
	return schema.New(fields...)
}

// NewField declares a field whose values convert to T.
func NewField[T any](name string, aliases ...string) Field {
	return schema.NewField[T](name, aliases...)
}

// AddConverter registers the converter for T on o, replacing any existing one.
func AddConverter[T any](o *Options, fn func(raw string) (T, error)) error {
	return schema.AddConverter(o, fn)
}

// Re-export parser types from internal/query for public API
type (
	Parser         = query.Parser
	ParserOption   = query.Option
	Tokenizer      = query.Tokenizer
	TrailingPolicy = query.TrailingPolicy

	QuotedTokenizer    = query.QuotedTokenizer
	SeparatorTokenizer = query.SeparatorTokenizer
)

// Trailing token policies.
const (
	TrailingIgnore = query.TrailingIgnore
	TrailingReject = query.TrailingReject
)

// Parser options.
var (
	WithReverse        = query.WithReverse
	WithTrailingTokens = query.WithTrailingTokens
	WithCache          = query.WithCache
	WithTokenizer      = query.WithTokenizer
	WithLogger         = query.WithLogger
	WithObservability  = query.WithObservability
)

// NewParser creates a parser over opts.
func NewParser(opts *Options, parserOpts ...ParserOption) (*Parser, error) {
	return query.NewParser(opts, parserOpts...)
}

// Parse parses input with a one-off parser over opts.
func Parse(opts *Options, input string) (*Filter, error) {
	p, err := query.NewParser(opts)
	if err != nil {
		return nil, err
	}
	return p.Parse(input)
}

// TryParse is Parse reporting failure as false.
func TryParse(opts *Options, input string) (*Filter, bool) {
	p, err := query.NewParser(opts)
	if err != nil {
		return nil, false
	}
	return p.TryParse(input)
}
