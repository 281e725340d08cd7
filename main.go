package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hasangumus0707/spendsmart/internal/config"
	"github.com/hasangumus0707/spendsmart/internal/domain"
	"github.com/hasangumus0707/spendsmart/internal/handler"
	"github.com/hasangumus0707/spendsmart/internal/logger"
	"github.com/hasangumus0707/spendsmart/internal/repository/memory"
	"github.com/hasangumus0707/spendsmart/internal/repository/postgres"
	"github.com/hasangumus0707/spendsmart/internal/repository/sqlite"
	"github.com/hasangumus0707/spendsmart/internal/service"
)

func main() {
	configPath := flag.String("config", "", "optional config file (yaml, json or toml)")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log, err = logger.WithLevel(log, cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid LOG_LEVEL")
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(logger.WithContext(ctx, log), cfg)
	stop()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("server failed")
	}
}

// run opens the configured backend and serves HTTP until ctx is cancelled.
// The database is closed on every return path.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.FromContext(ctx)

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info().Str("driver", cfg.StorageDriver).Msg("database migrations applied")

	expenseService := service.NewExpenseService(db.Expenses())

	var limiter *service.TokenBucket
	if cfg.RateLimitEnabled() {
		limiter = service.NewTokenBucket(ctx, cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, expenseService, limiter)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: handler.Chain(mux,
			handler.RequestLogger(log),
			handler.Recovery,
			handler.SecurityHeaders,
			handler.Timeout(cfg.RequestTimeout),
		),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (domain.Database, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverMemory:
		log := logger.FromContext(ctx)
		log.Warn().Msg("using in-memory storage; data is lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
