// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the ePaper HTTP API server.
//
// # Startup Sequence
//
//  1. Load .env (if present) and configuration from environment variables.
//  2. Initialize structured logger.
//  3. Open PostgreSQL, Redis and S3; run database migrations.
//  4. Wire domain services and HTTP handlers.
//  5. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taibuivan/epaper/internal/api"
	"github.com/taibuivan/epaper/internal/bootstrap"
	"github.com/taibuivan/epaper/internal/news"
	"github.com/taibuivan/epaper/internal/platform/config"
	"github.com/taibuivan/epaper/internal/platform/constants"
	"github.com/taibuivan/epaper/internal/platform/middleware"
	pgstore "github.com/taibuivan/epaper/internal/platform/postgres"
	redisstore "github.com/taibuivan/epaper/internal/platform/redis"
	"github.com/taibuivan/epaper/internal/platform/sec"
	"github.com/taibuivan/epaper/internal/users/account"
	"github.com/taibuivan/epaper/internal/users/auth"
)

func main() {
	// ── 1. Configuration ──────────────────────────────────────────────────
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootstrap.NewLogger(constants.AppName, false).Error("startup_failure",
			slog.String("context", "load configuration"),
			slog.Any("error", err),
		)
		os.Exit(1)
	}

	// ── 2. Logger ─────────────────────────────────────────────────────────
	log := bootstrap.NewLogger(constants.AppName, cfg.Debug)
	slog.SetDefault(log)

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. A 30s deadline surfaces misconfiguration
	// instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Infrastructure ─────────────────────────────────────────────────
	infra, err := bootstrap.Open(startupCtx, cfg, log)
	must(log, err, "open infrastructure")
	defer infra.Close()

	tokens, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	// ── 4. Health handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, infra.Pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, infra.Redis) },
		CheckStorage:  infra.Pages.Ping,
	}, log)

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(auth.NewUserRepository(infra.Pool), tokens, cfg.JWTTTL, log)
	accountService := account.NewService(account.NewPostgresRepository(infra.Pool), log)

	publications := news.NewPostgresRepository(infra.Pool)
	ingestor, err := infra.NewIngestor(cfg, publications)
	must(log, err, "build ingestion pipeline")
	newsService := news.NewService(publications, cfg.Location())

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(accountService),
		News: news.NewHandler(ingestor, newsService, news.HandlerOptions{
			IngestTimeout:  cfg.IngestTimeout,
			MaxUploadBytes: cfg.MaxUploadBytes,
		}),
	}

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	limiter := middleware.NewRateLimiter(constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst)
	go limiter.Run(rootCtx)

	server := api.NewServer(cfg, log, limiter, tokens, handlers)

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// In-flight ingestions may run up to INGEST_TIMEOUT; wait for the longer
	// of that and the default shutdown window.
	shutdownTimeout := max(constants.ShutdownTimeout, cfg.IngestTimeout)
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
