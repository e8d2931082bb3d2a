// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package bootstrap opens the external dependencies shared by the API server
and the operator CLI, and builds the ingestion pipeline on top of them.

Startup order:

 1. PostgreSQL pool.
 2. Redis client (ingestion locks).
 3. Migrations (idempotent).
 4. S3 page store.

No business logic lives here.
*/
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/epaper/internal/news"
	"github.com/taibuivan/epaper/internal/platform/config"
	"github.com/taibuivan/epaper/internal/platform/migration"
	"github.com/taibuivan/epaper/internal/platform/objectstore"
	pgstore "github.com/taibuivan/epaper/internal/platform/postgres"
	"github.com/taibuivan/epaper/internal/platform/raster"
	redisstore "github.com/taibuivan/epaper/internal/platform/redis"
)

// Infra holds the live connections. Close releases them in reverse order.
type Infra struct {
	Pool  *pgxpool.Pool
	Redis *goredis.Client
	Pages *objectstore.S3Store

	logger *slog.Logger
}

// NewLogger builds the JSON logger used by every binary.
func NewLogger(app string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", app))
}

// Open connects to PostgreSQL, Redis and S3 and applies pending migrations.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Infra, error) {
	infra := &Infra{logger: logger}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	infra.Pool = pool

	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	infra.Redis = rdb

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
		infra.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	options := objectstore.Options{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicBaseURL:   cfg.S3PublicBaseURL,
		PublicRead:      cfg.S3PublicReadACL,
	}
	client, err := objectstore.NewS3Client(ctx, options)
	if err != nil {
		infra.Close()
		return nil, err
	}
	pages, err := objectstore.NewS3Store(client, options)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.Pages = pages

	logger.Info("page_store_configured",
		slog.String("bucket", cfg.S3Bucket),
		slog.String("region", cfg.S3Region),
	)

	return infra, nil
}

// NewIngestor assembles the ingestion pipeline from config.
func (infra *Infra) NewIngestor(cfg *config.Config, records news.RecordStore) (*news.Ingestor, error) {
	rasterizer, err := raster.New(cfg.RasterScale)
	if err != nil {
		return nil, err
	}

	return news.NewIngestor(
		rasterizer,
		news.NewPageSink(infra.Pages),
		records,
		news.NewRedisKeyLocker(infra.Redis),
		infra.logger,
		news.WithUploadConcurrency(cfg.IngestUploadConcurrency),
		news.WithUploadRetries(cfg.IngestUploadRetries),
		news.WithLockTTL(cfg.IngestLockTTL),
	), nil
}

// Close releases every open connection.
func (infra *Infra) Close() {
	var errs []error
	if infra.Redis != nil {
		errs = append(errs, infra.Redis.Close())
	}
	if infra.Pool != nil {
		infra.Pool.Close()
	}
	if err := errors.Join(errs...); err != nil {
		infra.logger.Error("infra_close_failed", slog.Any("error", err))
	}
	infra.logger.Info("infra_closed")
}
