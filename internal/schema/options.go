// Package schema declares what a filter query may reference: the filterable
// fields and their types, the operator keywords and the converters that turn
// raw tokens into typed values.
//
// An Options value is built once and then shared read-only between parsers.
// Its mutating methods must not run concurrently with parsing.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/nlstn/go-filters/internal/ast"
	"github.com/nlstn/go-filters/internal/filtererrors"
)

// Options is the schema registry consulted by the parser.
type Options struct {
	fields []Field
	// index maps lower-cased names and aliases to positions in fields
	index map[string]int

	binary     map[string]ast.BinaryConstructor
	unary      map[string]ast.UnaryConstructor
	comparison map[string]ast.ComparisonConstructor

	converters map[reflect.Type]Converter

	nullValue  string
	emptyValue string
	location   *time.Location
}

// New builds a registry over fields with the default operators and
// converters. At least one field is required.
func New(fields ...Field) (*Options, error) {
	if len(fields) == 0 {
		return nil, filtererrors.Schema(filtererrors.ErrNoFields, "")
	}

	o := &Options{
		index:      make(map[string]int, len(fields)),
		binary:     make(map[string]ast.BinaryConstructor),
		unary:      make(map[string]ast.UnaryConstructor),
		comparison: make(map[string]ast.ComparisonConstructor),
		location:   time.UTC,
	}
	o.converters = defaultConverters(o)

	for _, f := range fields {
		if err := o.AddField(f); err != nil {
			return nil, err
		}
	}
	if err := registerDefaultOperations(o); err != nil {
		return nil, err
	}
	return o, nil
}

// AddField registers one more field. Names and aliases must be unique,
// ignoring case.
func (o *Options) AddField(f Field) error {
	if strings.TrimSpace(f.Name) == "" {
		return filtererrors.Schema(filtererrors.ErrInvalidField, "field name is empty")
	}
	if f.Type == nil {
		return filtererrors.Schema(filtererrors.ErrInvalidField, fmt.Sprintf("field %s has no type", f.Name))
	}

	seen := make(map[string]bool)
	for _, name := range f.names() {
		key := strings.ToLower(name)
		if strings.TrimSpace(name) == "" {
			return filtererrors.Schema(filtererrors.ErrInvalidField, fmt.Sprintf("field %s has an empty alias", f.Name))
		}
		if _, exists := o.index[key]; exists || seen[key] {
			return filtererrors.Schema(filtererrors.ErrDuplicateField, name)
		}
		seen[key] = true
	}

	pos := len(o.fields)
	o.fields = append(o.fields, f.clone())
	for key := range seen {
		o.index[key] = pos
	}
	return nil
}

// Field resolves a field by name or alias, ignoring case.
func (o *Options) Field(name string) (Field, bool) {
	pos, ok := o.index[strings.ToLower(name)]
	if !ok {
		return Field{}, false
	}
	return o.fields[pos], true
}

// Fields returns a copy of the declared fields in registration order.
func (o *Options) Fields() []Field {
	out := make([]Field, len(o.fields))
	for i, f := range o.fields {
		out[i] = f.clone()
	}
	return out
}

// WithNullValue declares the token that stands for a null value.
func (o *Options) WithNullValue(sentinel string) error {
	if sentinel == "" {
		return filtererrors.Schema(filtererrors.ErrInvalidSentinel, "null value")
	}
	o.nullValue = sentinel
	return nil
}

// WithEmptyValue declares the token that stands for the empty string.
func (o *Options) WithEmptyValue(sentinel string) error {
	if sentinel == "" {
		return filtererrors.Schema(filtererrors.ErrInvalidSentinel, "empty value")
	}
	o.emptyValue = sentinel
	return nil
}

// NullValue returns the null sentinel, if one is declared.
func (o *Options) NullValue() (string, bool) {
	return o.nullValue, o.nullValue != ""
}

// EmptyValue returns the empty-string sentinel, if one is declared.
func (o *Options) EmptyValue() (string, bool) {
	return o.emptyValue, o.emptyValue != ""
}

// WithLocation sets the location used by the date/time converters for
// values without an explicit offset. A nil location means UTC.
func (o *Options) WithLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	o.location = loc
}

// Location returns the location used by the date/time converters.
func (o *Options) Location() *time.Location {
	return o.location
}

// RegisterConverter registers c for values of exactly type t.
func (o *Options) RegisterConverter(t reflect.Type, c Converter) error {
	if t == nil {
		return filtererrors.Schema(filtererrors.ErrNilConverter, "type is nil")
	}
	if c == nil {
		return filtererrors.Schema(filtererrors.ErrNilConverter, t.String())
	}
	o.converters[t] = c
	return nil
}

// Convert turns raw into a value of type t. The null sentinel is checked
// first and yields nil. Pointer types use the converter of their element.
func (o *Options) Convert(raw string, t reflect.Type) (any, error) {
	if o.nullValue != "" && raw == o.nullValue {
		return nil, nil
	}

	c, ok := o.converters[t]
	if !ok && t != nil && t.Kind() == reflect.Pointer {
		c, ok = o.converters[t.Elem()]
	}
	if !ok {
		return nil, filtererrors.Format(filtererrors.ErrNoConverter, fmt.Sprint(t))
	}

	v, err := c(raw)
	if err != nil {
		var formatErr *filtererrors.FormatError
		if errors.As(err, &formatErr) {
			return nil, err
		}
		return nil, filtererrors.FormatCause(filtererrors.ErrInvalidValue,
			fmt.Sprintf("%q as %v", raw, t), err)
	}
	return v, nil
}

// HasConverter reports whether a converter is registered for t.
func (o *Options) HasConverter(t reflect.Type) bool {
	_, ok := o.converters[t]
	return ok
}

// sortedKeys returns the keys of m in ascending order
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
