// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cleanup runs the periodic purge worker (C8, §4.9): it reclaims
archive jobs whose worker lease has gone stale (this domain's analog of an
expired session) and deletes audit-event rows past the retention window.
It runs once immediately on startup, then on a fixed interval, and
respects a shutdown signal between cycles.
*/
package cleanup

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Config bounds a cleanup worker's behavior.
type Config struct {
	Interval          time.Duration
	AuditRetention    time.Duration
	StaleClaimTimeout time.Duration
}

// Worker runs the cleanup loop against a [Repository].
type Worker struct {
	repo   Repository
	cfg    Config
	logger *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker constructs a cleanup [Worker].
func NewWorker(repo Repository, cfg Config, logger *slog.Logger) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.AuditRetention <= 0 {
		cfg.AuditRetention = 90 * 24 * time.Hour
	}
	if cfg.StaleClaimTimeout <= 0 {
		cfg.StaleClaimTimeout = 20 * time.Minute
	}
	return &Worker{repo: repo, cfg: cfg, logger: logger}
}

// Start runs the cleanup cycle immediately, then on cfg.Interval, until
// the given context is canceled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.logger.Info("cleanup_worker_starting",
		slog.Duration("interval", w.cfg.Interval),
		slog.Duration("audit_retention", w.cfg.AuditRetention),
	)

	w.wg.Add(1)
	go w.loop(ctx)
}

// Stop signals the loop to exit and waits for the in-flight cycle to finish.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Worker) loop(ctx context.Context) {
	defer w.wg.Done()

	w.runOnce(ctx)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cleanup_worker_stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	staleBefore := time.Now().Add(-w.cfg.StaleClaimTimeout)
	if n, err := w.repo.RecoverStaleClaims(ctx, staleBefore); err != nil {
		w.logger.Error("cleanup_stale_claims_failed", slog.String("error", err.Error()))
	} else if n > 0 {
		w.logger.Info("cleanup_stale_claims_recovered", slog.Int("count", n))
	}

	auditBefore := time.Now().Add(-w.cfg.AuditRetention)
	if n, err := w.repo.DeleteOldAuditEvents(ctx, auditBefore); err != nil {
		w.logger.Error("cleanup_audit_events_failed", slog.String("error", err.Error()))
	} else if n > 0 {
		w.logger.Info("cleanup_audit_events_deleted", slog.Int("count", n), slog.Duration("retention", w.cfg.AuditRetention))
	}
}
