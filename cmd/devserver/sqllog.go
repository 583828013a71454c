package main

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	stringLiteral     = regexp.MustCompile(`'[^']*'`)
	numberLiteral     = regexp.MustCompile(`\b\d+(\.\d+)?\b`)
)

// sqlLogger is a GORM logger that writes statements through slog and keeps
// per-pattern statistics, so the SQL generated for each filter shape can be
// compared after a session.
type sqlLogger struct {
	logger        *slog.Logger
	level         logger.LogLevel
	slowThreshold time.Duration

	mu       *sync.Mutex
	patterns map[string]*patternStats
}

// patternStats aggregates the statements sharing one normalised pattern.
type patternStats struct {
	Pattern string
	Count   int
	Total   time.Duration
	Max     time.Duration
	Example string
}

func newSQLLogger(l *slog.Logger, slowThreshold time.Duration) *sqlLogger {
	return &sqlLogger{
		logger:        l,
		level:         logger.Info,
		slowThreshold: slowThreshold,
		mu:            &sync.Mutex{},
		patterns:      make(map[string]*patternStats),
	}
}

// LogMode implements logger.Interface. The copy shares the statistics.
func (l *sqlLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *sqlLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		l.logger.InfoContext(ctx, msg, "data", data)
	}
}

func (l *sqlLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		l.logger.WarnContext(ctx, msg, "data", data)
	}
}

func (l *sqlLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		l.logger.ErrorContext(ctx, msg, "data", data)
	}
}

// Trace implements logger.Interface.
func (l *sqlLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	l.record(sql, elapsed)

	attrs := []any{"sql", sql, "rows", rows, "duration_ms", float64(elapsed.Microseconds()) / 1000}
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		l.logger.ErrorContext(ctx, "SQL statement failed", append(attrs, "error", err)...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		l.logger.WarnContext(ctx, "Slow SQL statement", attrs...)
	case l.level >= logger.Info:
		l.logger.DebugContext(ctx, "SQL statement", attrs...)
	}
}

func (l *sqlLogger) record(sql string, elapsed time.Duration) {
	pattern := normalizeSQL(sql)

	l.mu.Lock()
	defer l.mu.Unlock()
	stats, ok := l.patterns[pattern]
	if !ok {
		stats = &patternStats{Pattern: pattern, Example: sql}
		l.patterns[pattern] = stats
	}
	stats.Count++
	stats.Total += elapsed
	if elapsed > stats.Max {
		stats.Max = elapsed
	}
}

// Stats returns the collected patterns, most frequent first.
func (l *sqlLogger) Stats() []patternStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]patternStats, 0, len(l.patterns))
	for _, s := range l.patterns {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}

// LogSummary logs one line per pattern.
func (l *sqlLogger) LogSummary() {
	for _, s := range l.Stats() {
		l.logger.Info("SQL pattern",
			"pattern", s.Pattern,
			"count", s.Count,
			"avg_ms", float64(s.Total.Microseconds())/1000/float64(s.Count),
			"max_ms", float64(s.Max.Microseconds())/1000,
		)
	}
}

// normalizeSQL replaces literals with placeholders.
func normalizeSQL(sql string) string {
	pattern := whitespacePattern.ReplaceAllString(strings.TrimSpace(sql), " ")
	pattern = stringLiteral.ReplaceAllString(pattern, "?")
	return numberLiteral.ReplaceAllString(pattern, "?")
}
