package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-filters/internal/filtererrors"
)

func TestQuotedTokenizer(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"eq Name John", []string{"eq", "Name", "John"}},
		{"eq Name 'John'", []string{"eq", "Name", "John"}},
		{"eq Name 'John Doe'", []string{"eq", "Name", "John Doe"}},
		{"eq Name 'John''Doe'", []string{"eq", "Name", "John'Doe"}},
		{"eq Name 'John ''Doe'", []string{"eq", "Name", "John 'Doe"}},
		{"eq Name 'John '' Doe'", []string{"eq", "Name", "John ' Doe"}},
		{"eq Name 'John'' Doe'", []string{"eq", "Name", "John' Doe"}},
		{"first 'John' and '' or  'Doe'", []string{"first", "John", "and", "", "or", "Doe"}},
		{"     ", nil},
		{"", nil},
		{"  Hello   ", []string{"Hello"}},
		{"  'Hello'   ", []string{"Hello"}},
		{"'Hello'", []string{"Hello"}},
		{"eq\tName\n'Zoë'", []string{"eq", "Name", "Zoë"}},
		{"ab'c d'", []string{"abc d"}},
		{"'a'b", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestQuotedTokenizer_UnclosedQuote(t *testing.T) {
	for _, input := range []string{"eq Name 'John", "'", "eq Name 'John''", "eq Name '"} {
		t.Run(input, func(t *testing.T) {
			tokens, err := Tokenize(input)
			require.Error(t, err)
			assert.Nil(t, tokens)
			assert.True(t, filtererrors.IsFormat(err))
			assert.True(t, errors.Is(err, filtererrors.ErrUnclosedQuote))
		})
	}
}

func TestSeparatorTokenizer(t *testing.T) {
	tests := []struct {
		name      string
		tokenizer SeparatorTokenizer
		input     string
		expected  []string
	}{
		{"comma", SeparatorTokenizer{Separator: ','}, "eq,Name,John", []string{"eq", "Name", "John"}},
		{"quotes are literal", SeparatorTokenizer{Separator: ','}, "eq,Name,'John Doe'", []string{"eq", "Name", "'John Doe'"}},
		{"empty tokens kept", SeparatorTokenizer{Separator: ','}, "eq,,x", []string{"eq", "", "x"}},
		{"empty input", SeparatorTokenizer{Separator: ','}, "", nil},
		{"zero value splits on space", SeparatorTokenizer{}, "eq Name John", []string{"eq", "Name", "John"}},
		{"multibyte separator", SeparatorTokenizer{Separator: '§'}, "eq§Name§John", []string{"eq", "Name", "John"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := tt.tokenizer.Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokens)
		})
	}
}
