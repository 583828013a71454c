package schema

import (
	"strings"
	"unicode"

	"github.com/nlstn/go-filters/internal/ast"
	"github.com/nlstn/go-filters/internal/filtererrors"
)

// KeywordContainsShort is registered by default as a short form of CONTAINS.
const KeywordContainsShort = "CT"

func registerDefaultOperations(o *Options) error {
	binaries := map[ast.Kind]ast.BinaryConstructor{
		ast.KindAnd: ast.And,
		ast.KindOr:  ast.Or,
	}
	for kind, ctor := range binaries {
		if err := o.AddBinary(string(kind), ctor); err != nil {
			return err
		}
	}

	if err := o.AddUnary(string(ast.KindNot), ast.Not); err != nil {
		return err
	}

	comparisons := map[string]ast.ComparisonConstructor{
		string(ast.KindEqual):              ast.Equals,
		string(ast.KindGreaterThan):        ast.GreaterThan,
		string(ast.KindGreaterThanOrEqual): ast.GreaterThanOrEqual,
		string(ast.KindLessThan):           ast.LessThan,
		string(ast.KindLessThanOrEqual):    ast.LessThanOrEqual,
		string(ast.KindContains):           ast.Contains,
		KeywordContainsShort:               ast.Contains,
		string(ast.KindStartsWith):         ast.StartsWith,
		string(ast.KindEndsWith):           ast.EndsWith,
	}
	for keyword, ctor := range comparisons {
		if err := o.AddComparison(keyword, ctor); err != nil {
			return err
		}
	}
	return nil
}

func normalizeKeyword(keyword string) (string, error) {
	k := strings.ToUpper(strings.TrimSpace(keyword))
	if k == "" {
		return "", filtererrors.Schema(filtererrors.ErrInvalidKeyword, "keyword is empty")
	}
	if strings.ContainsFunc(k, unicode.IsSpace) {
		return "", filtererrors.Schema(filtererrors.ErrInvalidKeyword, keyword)
	}
	return k, nil
}

// forget removes keyword from every operator table; the last registration of
// a keyword wins regardless of its table.
func (o *Options) forget(keyword string) {
	delete(o.binary, keyword)
	delete(o.unary, keyword)
	delete(o.comparison, keyword)
}

// AddBinary registers a binary logical operator under keyword.
func (o *Options) AddBinary(keyword string, ctor ast.BinaryConstructor) error {
	k, err := normalizeKeyword(keyword)
	if err != nil {
		return err
	}
	if ctor == nil {
		return filtererrors.Schema(filtererrors.ErrNilConstructor, k)
	}
	o.forget(k)
	o.binary[k] = ctor
	return nil
}

// AddUnary registers a unary logical operator under keyword.
func (o *Options) AddUnary(keyword string, ctor ast.UnaryConstructor) error {
	k, err := normalizeKeyword(keyword)
	if err != nil {
		return err
	}
	if ctor == nil {
		return filtererrors.Schema(filtererrors.ErrNilConstructor, k)
	}
	o.forget(k)
	o.unary[k] = ctor
	return nil
}

// AddComparison registers a field comparison operator under keyword.
func (o *Options) AddComparison(keyword string, ctor ast.ComparisonConstructor) error {
	k, err := normalizeKeyword(keyword)
	if err != nil {
		return err
	}
	if ctor == nil {
		return filtererrors.Schema(filtererrors.ErrNilConstructor, k)
	}
	o.forget(k)
	o.comparison[k] = ctor
	return nil
}

// ClearOperations removes every operator keyword. Fields, converters and
// sentinels are kept.
func (o *Options) ClearOperations() {
	clear(o.binary)
	clear(o.unary)
	clear(o.comparison)
}

// Binary looks up a binary operator. Keywords are matched upper-cased.
func (o *Options) Binary(keyword string) (ast.BinaryConstructor, bool) {
	ctor, ok := o.binary[strings.ToUpper(keyword)]
	return ctor, ok
}

// Unary looks up a unary operator.
func (o *Options) Unary(keyword string) (ast.UnaryConstructor, bool) {
	ctor, ok := o.unary[strings.ToUpper(keyword)]
	return ctor, ok
}

// Comparison looks up a field comparison operator.
func (o *Options) Comparison(keyword string) (ast.ComparisonConstructor, bool) {
	ctor, ok := o.comparison[strings.ToUpper(keyword)]
	return ctor, ok
}

// HasKeyword reports whether keyword is registered in any table.
func (o *Options) HasKeyword(keyword string) bool {
	k := strings.ToUpper(keyword)
	_, b := o.binary[k]
	_, u := o.unary[k]
	_, c := o.comparison[k]
	return b || u || c
}

func (o *Options) BinaryKeywords() []string     { return sortedKeys(o.binary) }
func (o *Options) UnaryKeywords() []string      { return sortedKeys(o.unary) }
func (o *Options) ComparisonKeywords() []string { return sortedKeys(o.comparison) }
