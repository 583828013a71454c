// Package filtererrors holds the error taxonomy shared by the tokenizer,
// schema registry, parser and evaluators.
//
// Every error is one of three struct types. Each carries a sentinel in Err so
// callers can match either the category (errors.As) or the precise failure
// (errors.Is).
package filtererrors

import (
	"errors"
	"fmt"
)

// Sentinels describing malformed queries.
var (
	ErrUnclosedQuote        = errors.New("unclosed quote")
	ErrUnexpectedEnd        = errors.New("unexpected end of query")
	ErrMissingTokens        = errors.New("expected at least two more tokens")
	ErrPropertyNotFound     = errors.New("property not found")
	ErrInvalidOperation     = errors.New("invalid operation type")
	ErrTrailingTokens       = errors.New("unexpected trailing tokens")
	ErrInvalidValue         = errors.New("invalid value")
	ErrNoConverter          = errors.New("no converter registered for type")
	ErrIncompatibleOperator = errors.New("operator not applicable to value")
)

// Sentinels describing invalid registry construction.
var (
	ErrNoFields         = errors.New("at least one filter property is required")
	ErrDuplicateField   = errors.New("duplicate filter property")
	ErrInvalidField     = errors.New("invalid filter property")
	ErrInvalidKeyword   = errors.New("invalid operation keyword")
	ErrNilConstructor   = errors.New("operation constructor is nil")
	ErrNilConverter     = errors.New("converter is nil")
	ErrInvalidSentinel  = errors.New("sentinel value must not be empty")
	ErrInvalidTokenizer = errors.New("invalid tokenizer")
)

// Sentinels describing lowering failures.
var (
	ErrNoEvaluator          = errors.New("no evaluator for operation")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrUnknownField         = errors.New("field not readable on record")
	ErrNotComparable        = errors.New("values are not comparable")
)

// FormatError reports a malformed query: missing tokens, unknown operator or
// field, unclosed quote, or a value that does not fit its field or operator.
type FormatError struct {
	// Err is the sentinel describing the failure.
	Err error
	// Detail names the offending token, field or value.
	Detail string
	// Cause is an optional underlying error, e.g. from strconv.
	Cause error
}

func (e *FormatError) Error() string {
	return render("invalid filter", e.Err, e.Detail, e.Cause)
}

// Unwrap exposes both the sentinel and the cause.
func (e *FormatError) Unwrap() []error {
	return unwrap(e.Err, e.Cause)
}

// SchemaError reports an invalid registry construction or registration.
type SchemaError struct {
	Err    error
	Detail string
}

func (e *SchemaError) Error() string {
	return render("invalid filter schema", e.Err, e.Detail, nil)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// EvaluationError reports that a tree could not be lowered, typically because
// no strategy is registered for an operation kind.
type EvaluationError struct {
	Err error
	// Operation is the kind of the node being lowered.
	Operation string
	Cause     error
}

func (e *EvaluationError) Error() string {
	return render("filter evaluation failed", e.Err, e.Operation, e.Cause)
}

func (e *EvaluationError) Unwrap() []error {
	return unwrap(e.Err, e.Cause)
}

// Format builds a FormatError.
func Format(sentinel error, detail string) error {
	return &FormatError{Err: sentinel, Detail: detail}
}

// FormatCause builds a FormatError wrapping an underlying error.
func FormatCause(sentinel error, detail string, cause error) error {
	return &FormatError{Err: sentinel, Detail: detail, Cause: cause}
}

// Schema builds a SchemaError.
func Schema(sentinel error, detail string) error {
	return &SchemaError{Err: sentinel, Detail: detail}
}

// Evaluation builds an EvaluationError.
func Evaluation(sentinel error, operation string) error {
	return &EvaluationError{Err: sentinel, Operation: operation}
}

// EvaluationCause builds an EvaluationError wrapping an underlying error.
func EvaluationCause(sentinel error, operation string, cause error) error {
	return &EvaluationError{Err: sentinel, Operation: operation, Cause: cause}
}

// IsFormat reports whether err is, or wraps, a FormatError.
func IsFormat(err error) bool {
	var target *FormatError
	return errors.As(err, &target)
}

// IsSchema reports whether err is, or wraps, a SchemaError.
func IsSchema(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}

// IsEvaluation reports whether err is, or wraps, an EvaluationError.
func IsEvaluation(err error) bool {
	var target *EvaluationError
	return errors.As(err, &target)
}

func render(prefix string, sentinel error, detail string, cause error) string {
	msg := prefix
	if sentinel != nil {
		msg = fmt.Sprintf("%s: %v", msg, sentinel)
	}
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return msg
}

func unwrap(errs ...error) []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
