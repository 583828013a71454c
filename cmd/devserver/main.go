// Command devserver serves the sample product catalogue over HTTP so filter
// queries can be tried against both targets:
//
//	GET  /products?filter=...          filtered in the database
//	GET  /products/memory?filter=...   filtered in memory
//	GET  /keywords                     registered operators and fields
//	POST /reseed                       restores the catalogue
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	filters "github.com/nlstn/go-filters"
)

func main() {
	fs := pflag.NewFlagSet("devserver", pflag.ExitOnError)
	filters.BindConfigFlags(fs)
	addr := fs.String("addr", ":8080", "HTTP listen address")
	driver := fs.String("driver", "sqlite", "Database driver (sqlite or postgres)")
	dsn := fs.String("dsn", ":memory:", "Database connection string")
	debug := fs.Bool("debug", false, "Log every parsed filter and SQL statement")
	slowQuery := fs.Duration("slow-query", 100*time.Millisecond, "Threshold above which SQL statements are logged as slow")

	cfg, err := filters.ConfigFromFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	sqlLog := newSQLLogger(logger, *slowQuery)
	db, err := openDatabase(*driver, *dsn, sqlLog)
	if err != nil {
		logger.Error("Failed to connect to database", "driver", *driver, "error", err)
		os.Exit(1)
	}
	if err := seedDatabase(db); err != nil {
		logger.Error("Failed to seed database", "error", err)
		os.Exit(1)
	}

	obs := filters.NewObservability(filters.WithServiceName("filters-devserver"), filters.WithServerTiming())
	if err := filters.InstrumentDB(db, obs); err != nil {
		logger.Error("Failed to instrument database", "error", err)
		os.Exit(1)
	}

	srv, err := newServer(db, cfg, obs, logger)
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Development server starting", "addr", *addr, "driver", *driver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	sqlLog.LogSummary()
}

func openDatabase(driver, dsn string, sqlLog *sqlLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: sqlLog})
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// every connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
		// match the case-sensitive substring tests of the in-memory target
		if err := db.Exec("PRAGMA case_sensitive_like = ON").Error; err != nil {
			return nil, err
		}
	}
	return db, nil
}
