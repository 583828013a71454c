package filters

import "github.com/nlstn/go-filters/internal/filtererrors"

// Error types. Every error returned by this package is one of them; match the
// category with errors.As and the precise failure with errors.Is against the
// sentinels below.
type (
	// FormatError reports a malformed query.
	FormatError = filtererrors.FormatError
	// SchemaError reports an invalid registry or parser configuration.
	SchemaError = filtererrors.SchemaError
	// EvaluationError reports a tree that cannot be lowered onto a target.
	EvaluationError = filtererrors.EvaluationError
)

// Malformed query sentinels.
var (
	ErrUnclosedQuote        = filtererrors.ErrUnclosedQuote
	ErrUnexpectedEnd        = filtererrors.ErrUnexpectedEnd
	ErrMissingTokens        = filtererrors.ErrMissingTokens
	ErrPropertyNotFound     = filtererrors.ErrPropertyNotFound
	ErrInvalidOperation     = filtererrors.ErrInvalidOperation
	ErrTrailingTokens       = filtererrors.ErrTrailingTokens
	ErrInvalidValue         = filtererrors.ErrInvalidValue
	ErrNoConverter          = filtererrors.ErrNoConverter
	ErrIncompatibleOperator = filtererrors.ErrIncompatibleOperator
)

// Registry sentinels.
var (
	ErrNoFields         = filtererrors.ErrNoFields
	ErrDuplicateField   = filtererrors.ErrDuplicateField
	ErrInvalidField     = filtererrors.ErrInvalidField
	ErrInvalidKeyword   = filtererrors.ErrInvalidKeyword
	ErrNilConstructor   = filtererrors.ErrNilConstructor
	ErrNilConverter     = filtererrors.ErrNilConverter
	ErrInvalidSentinel  = filtererrors.ErrInvalidSentinel
	ErrInvalidTokenizer = filtererrors.ErrInvalidTokenizer
)

// Lowering sentinels.
var (
	ErrNoEvaluator          = filtererrors.ErrNoEvaluator
	ErrUnsupportedOperation = filtererrors.ErrUnsupportedOperation
	ErrUnknownField         = filtererrors.ErrUnknownField
	ErrNotComparable        = filtererrors.ErrNotComparable
)

// IsFormatError reports whether err is or wraps a FormatError.
func IsFormatError(err error) bool {
	return filtererrors.IsFormat(err)
}

// IsSchemaError reports whether err is or wraps a SchemaError.
func IsSchemaError(err error) bool {
	return filtererrors.IsSchema(err)
}

// IsEvaluationError reports whether err is or wraps an EvaluationError.
func IsEvaluationError(err error) bool {
	return filtererrors.IsEvaluation(err)
}
