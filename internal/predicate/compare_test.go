package predicate

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-filters/internal/filtererrors"
	"github.com/nlstn/go-filters/internal/schema"
)

type label string

func TestCompare(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		paris = time.FixedZone("CET", 3600)
	}
	noon := time.Date(2023, 12, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		a, b     any
		expected int
	}{
		{"int", 3, 10, -1},
		{"int widths", int8(10), int64(10), 0},
		{"signed unsigned", -1, uint(0), -1},
		{"unsigned signed", uint64(5), 4, 1},
		{"int float", 2, 1.5, 1},
		{"float32", float32(1.5), 1.5, 0},
		{"decimal", decimal.RequireFromString("149.99"), decimal.RequireFromString("149.990"), 0},
		{"decimal int", decimal.RequireFromString("199.99"), 200, -1},
		{"int decimal", 200, decimal.RequireFromString("199.99"), 1},
		{"float decimal", 149.99, decimal.RequireFromString("149.99"), 0},
		{"uint decimal", uint64(1), decimal.NewFromInt(1), 0},
		{"string", "Apple", "Banana", -1},
		{"string ordinal", "a", "B", 1},
		{"named string", label("b"), label("a"), 1},
		{"named string plain", label("b"), "a", 1},
		{"plain named string", "a", label("a"), 0},
		{"bool", false, true, -1},
		{"time", noon, noon.In(paris), 0},
		{"time date", noon, schema.Date{Year: 2023, Month: time.December, Day: 30}, 1},
		{"date time", schema.Date{Year: 2023, Month: time.December, Day: 30}, noon, -1},
		{"date", schema.Date{Year: 2022, Month: time.November, Day: 12}, schema.Date{Year: 2022, Month: time.November, Day: 13}, -1},
		{"time of day", schema.TimeOfDay{Hour: 10}, schema.TimeOfDay{Hour: 9, Minute: 59}, 1},
		{"duration", 90 * time.Second, time.Minute, 1},
		{"uuid", uuid.MustParse("00000000-0000-0000-0000-000000000001"), uuid.MustParse("00000000-0000-0000-0000-000000000002"), -1},
		{"char", schema.Char('a'), schema.Char('b'), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCompare_NotComparable(t *testing.T) {
	tests := []struct {
		name string
		a, b any
	}{
		{"string int", "1", 1},
		{"duration int", time.Second, int64(time.Second)},
		{"bool int", true, 1},
		{"time of day date", schema.TimeOfDay{}, schema.Date{}},
		{"named string int", label("1"), 1},
		{"slices", []int{1}, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compare(tt.a, tt.b)
			require.Error(t, err)
			assert.True(t, errors.Is(err, filtererrors.ErrNotComparable))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, ""))
	assert.False(t, Equal(0, nil))
	assert.True(t, Equal(int64(10), 10))
	assert.True(t, Equal(decimal.RequireFromString("1.50"), decimal.RequireFromString("1.5")))
	assert.True(t, Equal([]int{1}, []int{1}))
	assert.False(t, Equal("1", 1))
	assert.True(t, Equal(label("x"), "x"))
	assert.False(t, Equal(label("x"), "y"))
}
