package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "nexora/internal/adapter/http"
	"nexora/internal/adapter/postgres"
	"nexora/internal/adapter/usecase"
	"nexora/internal/config"
	"nexora/internal/db"
)

// main is the entry point of the nexora automation service. It loads
// configuration, optionally runs database migrations and the demo seed,
// initializes the database pool and repositories, wires the optimization
// engine and starts the HTTP server plus the optional sweep ticker. On
// receiving a termination signal it gracefully shuts down the server.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		// Initialise structured logger based on configuration.
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}

	// Optionally run migrations if configured.
	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			logger.Error("migration error", slog.Any("error", err))
		} else {
			logger.Info("migrations applied successfully")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		logger.Error("database connection error", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Psql.SeedDemo {
		if err = db.Seed(ctx, pool); err != nil {
			logger.Error("seed error", slog.Any("error", err))
		} else {
			logger.Info("demo data seeded")
		}
	}

	// Wire the engine: repository, gate, scorer, services. All business
	// constants come from configuration, not code.
	repo := postgres.NewRepository(pool)
	gate := usecase.NewGate(usecase.LimitsFromConfig(cfg.Automation))
	scorer := usecase.NewScorer(usecase.ThresholdsFromConfig(cfg.Automation))
	authSvc := usecase.NewAuthorizationService(repo, gate, logger)
	optimizer := usecase.NewOptimizer(repo, scorer, authSvc, usecase.SettingsFromConfig(cfg.Automation), logger)
	campaigns := usecase.NewCampaignService(repo, authSvc, logger)

	handler := httpadapter.NewHandler(campaigns, optimizer, authSvc, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	// Periodic sweep over all active campaigns. Overlap is impossible:
	// the optimizer serializes sweeps internally.
	if cfg.Automation.SweepInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Automation.SweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					items, err := optimizer.OptimizeAllActive(ctx)
					if err != nil {
						logger.Error("sweep error", slog.Any("error", err))
						continue
					}
					logger.Info("scheduled sweep finished", slog.Int("campaigns", len(items)))
				}
			}
		}()
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	value := <-quit
	exitCode = 128 + int(value.(syscall.Signal))

	ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}
