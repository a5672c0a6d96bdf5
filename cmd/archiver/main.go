// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Archiver is the entry point for the forum link-archival daemon.

It polls a forum's RSS feed, extracts outbound links from new posts,
dispatches each to an artifact handler, and durably stores the resulting
snapshots in an S3-compatible object store (optionally pinned to IPFS).

Usage:

	go run cmd/archiver/main.go

Startup Sequence:

 1. Logger: Initialize structured JSON logging (slog).
 2. Config: Load and validate environment variables.
 3. Storage: Establish connections to Postgres and Redis.
 4. Migration: Run idempotent schema updates.
 5. Wiring: Construct domain services and the handler registry.
 6. Run: Start the feed poller, worker pool, cleanup worker, and ops server.

No business logic lives here. This file is strictly for orchestration and wiring.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/forumvault/archiver/internal/core/archivejob"
	"github.com/forumvault/archiver/internal/core/artifact"
	"github.com/forumvault/archiver/internal/core/cleanup"
	"github.com/forumvault/archiver/internal/core/dedup"
	"github.com/forumvault/archiver/internal/core/feed"
	"github.com/forumvault/archiver/internal/core/registry"
	"github.com/forumvault/archiver/internal/core/worker"
	"github.com/forumvault/archiver/internal/ipfs"
	"github.com/forumvault/archiver/internal/ops"
	"github.com/forumvault/archiver/internal/platform/config"
	"github.com/forumvault/archiver/internal/platform/constants"
	"github.com/forumvault/archiver/internal/platform/migration"
	pgstore "github.com/forumvault/archiver/internal/platform/postgres"
	redisstore "github.com/forumvault/archiver/internal/platform/redis"
	"github.com/forumvault/archiver/internal/submit"
	"github.com/forumvault/archiver/internal/uploader"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application_startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// # 1. Logger
	// Initialize first so that subsequent startup errors are structured JSON.
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("archiver_initializing")

	// # 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if cfg.Debug {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})).
			With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("feed_url", cfg.FeedURL),
	)

	// Root context for startup. A 30s deadline prevents the app from hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 3. PostgreSQL
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// # 4. Redis
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// # 5. Migrations
	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// # 6. Object Storage (C9/C13)
	uploadClient, err := uploader.New(uploader.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
	})
	if err != nil {
		return fmt.Errorf("construct object-store client: %w", err)
	}
	if err := uploadClient.EnsureBucket(startupCtx); err != nil {
		return fmt.Errorf("ensure object-store bucket: %w", err)
	}

	// # 7. IPFS pinning (C14) — optional
	var ipfsClient *ipfs.Client
	if cfg.IPFSEnabled() {
		ipfsClient = ipfs.New(cfg.IPFSRPCEndpoint, http.DefaultClient)
		log.Info("ipfs_pinning_enabled", slog.String("endpoint", cfg.IPFSRPCEndpoint))
	}

	// # 8. Domain Repositories
	feedRepo := feed.NewPostgresRepository(pool)
	jobRepo := archivejob.NewPostgresRepository(pool)
	artifactRepo := artifact.NewPostgresRepository(pool)
	cleanupRepo := cleanup.NewPostgresRepository(pool)

	// # 9. Domain Services
	jobService := archivejob.NewService(jobRepo, log, cfg.MaxAttempts, cfg.BackoffBase, cfg.BackoffCap)
	dedupCache := dedup.NewCache(rdb)

	// # 10. Feed Poller (C3)
	poller := feed.NewPoller(feedRepo, http.DefaultClient, cfg.FeedURL, cfg.PollInterval, log)

	// # 11. Archive.today Submitter (C7)
	submitClient := submit.New(cfg.ArchiveTodayRatePerMinute, http.DefaultClient)
	submitClient.SetLogger(log)

	// # 12. Handler Registry (C10)
	reg := registry.New()
	reg.Register(&registry.ThirdPartySnapshotHandler{Matcher: matchesAnyDomain(constants.ThirdPartySnapshotDomains), Submitter: submitClient})
	reg.Register(&registry.ImageGalleryHandler{Client: http.DefaultClient, Dedup: dedupCache, Artifacts: artifactRepo})
	reg.Register(&registry.PDFDocumentHandler{Client: http.DefaultClient})
	reg.SetFallback(&registry.GenericHTMLHandler{Client: http.DefaultClient})

	// # 13. Archive Worker Pool (C6)
	workerPool := worker.NewPool(jobService, feedRepo, reg, artifactRepo, uploadClient, log, worker.Config{
		WorkerCount:          cfg.WorkerCount,
		PerDomainConcurrency: cfg.PerDomainConcurrency,
		HandlerTimeout:       cfg.HandlerTimeout,
		ClaimBackoff:         constants.DefaultClaimBackoff,
		WorkDir:              cfg.WorkDir,
	})
	if ipfsClient != nil {
		workerPool.SetPinner(ipfsClient)
	}

	// # 14. Cleanup Worker (C8)
	cleanupWorker := cleanup.NewWorker(cleanupRepo, cleanup.Config{
		Interval:       cfg.CleanupInterval,
		AuditRetention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
	}, log)

	// # 15. Ops HTTP Surface (C11)
	opsServer := ops.NewServer(":"+cfg.ServerPort, log, ops.Dependencies{
		CheckDatabase: func() error { return pgstore.Ping(context.Background(), pool) },
		CheckCache:    func() error { return redisstore.Ping(context.Background(), rdb) },
	}, jobService, workerPool)

	// # 16. Lifecycle
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	poller.Start(appCtx)
	defer poller.Stop()

	if err := workerPool.Start(appCtx); err != nil {
		return fmt.Errorf("start worker pool: %w", err)
	}
	defer workerPool.Stop()

	cleanupWorker.Start(appCtx)
	defer cleanupWorker.Stop()

	shutdownErr := make(chan error, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownErr <- fmt.Errorf("ops_server_crash: %w", err)
		}
	}()

	log.Info("archiver_running", slog.String("port", cfg.ServerPort))

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-shutdownErr:
		return err
	}

	appCancel()

	log.Info("shutting_down_ops_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := opsServer.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("ops_server_shutdown_failed: %w", err)
	}

	log.Info("graceful_shutdown_complete")
	return nil
}

// matchesAnyDomain builds a registry.Handler Matcher that fires when the
// link's domain equals, or is a subdomain of, one of the given domains.
func matchesAnyDomain(domains []string) func(rawURL, domain string) bool {
	return func(_ string, domain string) bool {
		for _, d := range domains {
			if domain == d || strings.HasSuffix(domain, "."+d) {
				return true
			}
		}
		return false
	}
}
