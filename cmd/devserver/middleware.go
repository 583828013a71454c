package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"

	filters "github.com/nlstn/go-filters"
)

// requestLogger logs one line per request with the filter that was sent,
// the status code and the duration.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m := httpsnoop.CaptureMetrics(next, w, r)

		level := slog.LevelInfo
		if m.Code >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"filter", r.URL.Query().Get(filters.DefaultQueryParameter),
			"status", m.Code,
			"bytes", m.Written,
			"duration_ms", float64(time.Since(start).Microseconds())/1000,
		)
	})
}
