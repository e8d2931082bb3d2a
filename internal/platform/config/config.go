// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, S3, rasterizer) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the ePaper API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis), used for per-issue ingestion locks
	RedisURL string `env:"REDIS_URL,required"`

	// Credential signing
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`

	// Object Storage (AWS S3 / S3-compatible)
	S3Bucket          string `env:"S3_BUCKET,required"`
	S3Region          string `env:"S3_REGION"   envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`
	S3PublicReadACL   bool   `env:"S3_PUBLIC_READ_ACL" envDefault:"true"`

	// Rasterization quality. Pages are rendered at 72 * RasterScale DPI.
	RasterScale float64 `env:"RASTER_SCALE" envDefault:"2.0"`

	// Ingestion pipeline tuning
	// IngestUploadConcurrency of 0 uploads every page of an edition at once.
	IngestUploadConcurrency int           `env:"INGEST_UPLOAD_CONCURRENCY" envDefault:"8"`
	IngestUploadRetries     int           `env:"INGEST_UPLOAD_RETRIES"     envDefault:"3"`
	IngestTimeout           time.Duration `env:"INGEST_TIMEOUT"            envDefault:"5m"`
	IngestLockTTL           time.Duration `env:"INGEST_LOCK_TTL"           envDefault:"10m"`
	MaxUploadBytes          int64         `env:"MAX_UPLOAD_BYTES"          envDefault:"104857600"`

	// PublicationTimezone decides which calendar day "today's paper" refers to.
	PublicationTimezone string `env:"PUBLICATION_TIMEZONE" envDefault:"UTC"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Fails if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field and range constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.RasterScale <= 0 || c.RasterScale > 8 {
		errs = append(errs, fmt.Errorf("RASTER_SCALE must be in (0, 8], got %v", c.RasterScale))
	}
	if c.IngestUploadConcurrency < 0 {
		errs = append(errs, fmt.Errorf("INGEST_UPLOAD_CONCURRENCY must not be negative, got %d", c.IngestUploadConcurrency))
	}
	if c.IngestUploadRetries < 0 {
		errs = append(errs, fmt.Errorf("INGEST_UPLOAD_RETRIES must not be negative, got %d", c.IngestUploadRetries))
	}
	if c.IngestTimeout <= 0 {
		errs = append(errs, errors.New("INGEST_TIMEOUT must be positive"))
	}
	if c.IngestLockTTL <= 0 {
		errs = append(errs, errors.New("INGEST_LOCK_TTL must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if (c.S3AccessKeyID == "") != (c.S3SecretAccessKey == "") {
		errs = append(errs, errors.New("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together"))
	}
	if _, err := time.LoadLocation(c.PublicationTimezone); err != nil {
		errs = append(errs, fmt.Errorf("PUBLICATION_TIMEZONE is invalid: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}

	return nil
}

// Location returns the timezone used to resolve publication dates.
// Validate guarantees the name is loadable.
func (c *Config) Location() *time.Location {
	location, err := time.LoadLocation(c.PublicationTimezone)
	if err != nil {
		return time.UTC
	}
	return location
}

// MigrationConfig is the subset of [Config] needed to run schema migrations.
type MigrationConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`
}

// LoadMigration parses only the migration settings, so operators can migrate
// without object storage or signing secrets configured.
func LoadMigration() (*MigrationConfig, error) {
	cfg := &MigrationConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the comma-separated EXTRA_ORIGINS as a trimmed list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
