package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filters "github.com/nlstn/go-filters"
)

func newTestServer(t *testing.T) (http.Handler, *sqlLogger) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sqlLog := newSQLLogger(logger, time.Second)

	db, err := openDatabase("sqlite", ":memory:", sqlLog)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, seedDatabase(db))

	obs := filters.NewObservability(filters.WithServerTiming())
	require.NoError(t, filters.InstrumentDB(db, obs))

	cfg := filters.DefaultConfig()
	cfg.NullValue = "null"
	srv, err := newServer(db, cfg, obs, logger)
	require.NoError(t, err)
	return srv.Handler(), sqlLog
}

type listResponse struct {
	Count int `json:"count"`
	Value []struct {
		Id int `json:"Id"`
	} `json:"value"`
}

func get(t *testing.T, h http.Handler, path, filter string) *httptest.ResponseRecorder {
	t.Helper()
	target := path
	if filter != "" {
		target += "?filter=" + url.QueryEscape(filter)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func ids(t *testing.T, rec *httptest.ResponseRecorder) []int {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	out := make([]int, 0, len(body.Value))
	for _, p := range body.Value {
		out = append(out, p.Id)
	}
	assert.Equal(t, body.Count, len(out))
	return out
}

func TestProducts_BothTargetsAgree(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		filter string
		ids    []int
	}{
		{"end Name Camera", []int{9, 18, 24}},
		{"eq City Brussels", []int{1, 2, 3}},
		{"and eq City Brussels eq OutOfStock true", []int{2}},
		{"start City Am", []int{3}},
		{"eq Name null", []int{10, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			assert.Equal(t, tt.ids, ids(t, get(t, h, "/products", tt.filter)))
			assert.Equal(t, tt.ids, ids(t, get(t, h, "/products/memory", tt.filter)))
		})
	}
}

func TestProducts_NoFilter(t *testing.T) {
	h, _ := newTestServer(t)
	assert.Len(t, ids(t, get(t, h, "/products", "")), 26)
	assert.Len(t, ids(t, get(t, h, "/products/memory", "")), 26)
}

func TestProducts_MalformedFilter(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, "/products", "eq Colour red")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Colour", body["detail"])
	assert.Contains(t, body["error"], "property not found")
}

func TestProducts_ServerTiming(t *testing.T) {
	h, _ := newTestServer(t)
	rec := get(t, h, "/products", "gt Price 100")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Server-Timing"), "filter.parse")
	assert.Contains(t, rec.Header().Get("Server-Timing"), "db")
}

func TestKeywords(t *testing.T) {
	h, _ := newTestServer(t)
	rec := get(t, h, "/keywords", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Binary     []string `json:"binary"`
		Unary      []string `json:"unary"`
		Comparison []string `json:"comparison"`
		Fields     []struct {
			Name string `json:"name"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"AND", "OR"}, body.Binary)
	assert.Equal(t, []string{"NOT"}, body.Unary)
	assert.Contains(t, body.Comparison, "CT")
	assert.Len(t, body.Fields, 6)
}

func TestReseed(t *testing.T) {
	h, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reseed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, ids(t, get(t, h, "/products", "")), 26)
}

func TestSQLLogger_Patterns(t *testing.T) {
	h, sqlLog := newTestServer(t)
	get(t, h, "/products", "gt Id 3")
	get(t, h, "/products", "gt Id 7")

	var found bool
	for _, s := range sqlLog.Stats() {
		if strings.Contains(s.Pattern, "`products`.`id` > ?") {
			found = true
			assert.Equal(t, 2, s.Count)
			assert.Contains(t, s.Example, "`products`.`id` > 3")
		}
	}
	assert.True(t, found, "expected both queries to share one pattern")
}

func TestNormalizeSQL(t *testing.T) {
	assert.Equal(t,
		`SELECT * FROM "products" WHERE "products"."id" > ? AND "products"."name" LIKE ?`,
		normalizeSQL("SELECT *  FROM \"products\"\nWHERE \"products\".\"id\" > 3 AND \"products\".\"name\" LIKE '%a%'"))
}

func TestProductOptions(t *testing.T) {
	options, err := productOptions()
	require.NoError(t, err)
	assert.Len(t, options.Fields(), 6)

	for _, name := range []string{"id", "ID", "OutOfStock", "created"} {
		_, ok := options.Field(name)
		assert.True(t, ok, name)
	}
}
