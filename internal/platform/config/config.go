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
  - DI-Friendly: Passed to core components (Postgres, Redis, S3, IPFS) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the archiver daemon.
type Config struct {

	// Ops HTTP surface (C11)
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// Key-Value Cache (Redis) — backs the perceptual-hash dedup lookup (C4).
	RedisURL string `env:"REDIS_URL,required"`

	// Feed polling (C3)
	FeedURL      string        `env:"FEED_URL,required"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"5m"`

	// WorkDir is scratch space for in-flight downloads before upload (C6/C9).
	WorkDir string `env:"WORK_DIR" envDefault:"./data/work"`

	// Object Storage (S3-compatible) for durable artifacts (C9/C13)
	S3Bucket    string `env:"S3_BUCKET,required"`
	S3Region    string `env:"S3_REGION"     envDefault:"auto"`
	S3Endpoint  string `env:"S3_ENDPOINT,required"`
	S3AccessKey string `env:"S3_ACCESS_KEY,required"`
	S3SecretKey string `env:"S3_SECRET_KEY,required"`
	S3UseSSL    bool   `env:"S3_USE_SSL"    envDefault:"true"`

	// IPFS pinning (C14) — optional, disabled when empty.
	IPFSRPCEndpoint string `env:"IPFS_RPC_ENDPOINT"`

	// Retention & cleanup (C8)
	RetentionDays   int           `env:"RETENTION_DAYS"   envDefault:"90"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`

	// Archive.today submission (C7)
	ArchiveTodayRatePerMinute int `env:"ARCHIVE_TODAY_RATE_PER_MINUTE" envDefault:"3"`

	// Worker pool (C6)
	WorkerCount            int           `env:"WORKER_COUNT"             envDefault:"4"`
	PerDomainConcurrency   int           `env:"PER_DOMAIN_CONCURRENCY"   envDefault:"2"`
	MaxAttempts            int           `env:"MAX_ATTEMPTS"             envDefault:"8"`
	BackoffBase            time.Duration `env:"BACKOFF_BASE"             envDefault:"2s"`
	BackoffCap             time.Duration `env:"BACKOFF_CAP"              envDefault:"24h"`
	HandlerTimeout         time.Duration `env:"HANDLER_TIMEOUT"          envDefault:"10m"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
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

// IPFSEnabled reports whether pinning is configured.
func (c *Config) IPFSEnabled() bool {
	return c.IPFSRPCEndpoint != ""
}
