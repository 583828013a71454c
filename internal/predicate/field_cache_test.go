package predicate

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlstn/go-filters/internal/filtererrors"
)

type Audit struct {
	CreatedBy string
}

type item struct {
	*Audit
	Name     string
	Quantity *int
	Tags     map[string]string
	secret   string
}

func TestReadField_Struct(t *testing.T) {
	qty := 4
	rec := item{Audit: &Audit{CreatedBy: "bob"}, Name: "Widget", Quantity: &qty, secret: "x"}

	tests := []struct {
		field    string
		expected any
	}{
		{"Name", "Widget"},
		{"name", "Widget"},
		{"QUANTITY", 4},
		{"CreatedBy", "bob"},
		{"createdby", "bob"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := ReadField(rec, tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)

			got, err = ReadField(&rec, tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReadField_Nil(t *testing.T) {
	got, err := ReadField(item{}, "Quantity")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ReadField(item{}, "CreatedBy")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ReadField((*item)(nil), "Name")
	assert.True(t, errors.Is(err, filtererrors.ErrUnknownField))
}

func TestReadField_Unknown(t *testing.T) {
	for _, name := range []string{"secret", "Missing", "Audit"} {
		_, err := ReadField(item{}, name)
		assert.True(t, errors.Is(err, filtererrors.ErrUnknownField), name)
	}

	_, err := ReadField(42, "Name")
	assert.True(t, errors.Is(err, filtererrors.ErrUnknownField))
}

func TestReadField_Maps(t *testing.T) {
	n := 3
	record := map[string]any{"Name": "a", "count": &n, "nothing": nil}

	got, err := ReadField(record, "name")
	require.NoError(t, err)
	assert.Equal(t, "a", got)

	got, err = ReadField(record, "Count")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = ReadField(record, "nothing")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ReadField(map[string]string{"City": "Paris"}, "city")
	require.NoError(t, err)
	assert.Equal(t, "Paris", got)

	_, err = ReadField(map[int]string{1: "a"}, "1")
	assert.True(t, errors.Is(err, filtererrors.ErrUnknownField))
}

func TestReadField_MapCaseFolding(t *testing.T) {
	record := map[string]any{"NAME": 1, "Name": 2, "name": 3}

	for range 20 {
		got, err := ReadField(record, "nAmE")
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	}

	got, err := ReadField(record, "name")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	named := map[label]int{"city": 1, "City": 2, "CITY": 3}
	for range 20 {
		got, err := ReadField(named, "cItY")
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	}
}

func TestReadField_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := ReadField(item{Name: "x"}, "name"); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()
}
