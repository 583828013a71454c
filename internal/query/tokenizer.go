package query

import (
	"strings"
	"unicode"

	"github.com/nlstn/go-filters/internal/filtererrors"
)

// quote delimits literal spans; a doubled quote inside a span is one literal
// quote character.
const quote = '\''

// Tokenizer splits a raw query into tokens in source order.
type Tokenizer interface {
	Tokenize(input string) ([]string, error)
}

// QuotedTokenizer splits on whitespace and understands single-quoted
// literals. It is the default tokenizer.
type QuotedTokenizer struct{}

// Tokenize splits input with the default QuotedTokenizer.
func Tokenize(input string) ([]string, error) {
	return QuotedTokenizer{}.Tokenize(input)
}

// Tokenize implements Tokenizer.
//
// Whitespace outside a quoted span ends the current token. A quote outside a
// span opens one and the current token continues inside it. Inside a span,
// a doubled quote appends a literal quote and a lone quote closes the span
// and emits the token, even when it is empty.
func (QuotedTokenizer) Tokenize(input string) ([]string, error) {
	var (
		tokens        []string
		current       strings.Builder
		insideQuote   bool
		betweenTokens = true
	)

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		switch {
		case ch == quote && insideQuote:
			if i+1 < len(runes) && runes[i+1] == quote {
				current.WriteRune(quote)
				i++
				continue
			}
			tokens = append(tokens, current.String())
			current.Reset()
			insideQuote = false
			betweenTokens = true

		case ch == quote:
			insideQuote = true
			betweenTokens = false

		case unicode.IsSpace(ch) && !insideQuote:
			if betweenTokens {
				continue
			}
			tokens = append(tokens, current.String())
			current.Reset()
			betweenTokens = true

		default:
			betweenTokens = false
			current.WriteRune(ch)
		}
	}

	if insideQuote {
		return nil, filtererrors.Format(filtererrors.ErrUnclosedQuote, current.String())
	}
	if !betweenTokens {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

// SeparatorTokenizer splits on a single separator rune without any quoting.
// The zero value splits on a space.
type SeparatorTokenizer struct {
	Separator rune
}

// Tokenize implements Tokenizer. Empty input yields no tokens; empty tokens
// between adjacent separators are kept.
func (t SeparatorTokenizer) Tokenize(input string) ([]string, error) {
	if input == "" {
		return nil, nil
	}
	sep := t.Separator
	if sep == 0 {
		sep = ' '
	}
	return strings.Split(input, string(sep)), nil
}
