// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package archivejob

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/forumvault/archiver/internal/platform/constants"
)

// # Service Layer

// Service orchestrates the job lifecycle on top of a [Repository].
type Service struct {
	repo        Repository
	logger      *slog.Logger
	maxAttempts int
	backoffBase time.Duration
	backoffCap  time.Duration
}

// NewService constructs a new archive job [Service]. backoffBase/backoffCap
// of zero fall back to [constants.BackoffBase]/[constants.BackoffCap].
func NewService(repo Repository, logger *slog.Logger, maxAttempts int, backoffBase, backoffCap time.Duration) *Service {
	if maxAttempts <= 0 {
		maxAttempts = constants.DefaultMaxAttempts
	}
	if backoffBase <= 0 {
		backoffBase = constants.BackoffBase
	}
	if backoffCap <= 0 {
		backoffCap = constants.BackoffCap
	}
	return &Service{repo: repo, logger: logger, maxAttempts: maxAttempts, backoffBase: backoffBase, backoffCap: backoffCap}
}

/*
CreatePending inserts a pending archive for a link. Exactly one Archive
exists per Link (§3), so a second call for the same link fails.

Parameters:
  - context: context.Context
  - linkID: string

Returns:
  - string: the new archive id
  - error: persistence failures, including the duplicate-constraint error
    when an archive for linkID already exists
*/
func (service *Service) CreatePending(context context.Context, linkID string) (string, error) {
	return service.repo.CreatePending(context, linkID)
}

/*
Claim hands the next due archive to a worker, recovering the queue-empty
case as a nil result rather than an error.

Parameters:
  - context: context.Context
  - workerID: string

Returns:
  - *Archive: claimed row, nil if none available
  - error: Database failures
*/
func (service *Service) Claim(context context.Context, workerID string) (*Archive, error) {
	return service.repo.ClaimNext(context, workerID, service.maxAttempts)
}

// ReportProgress forwards a coalesced progress snapshot to storage.
func (service *Service) ReportProgress(context context.Context, id string, pct int, progressJSON string) error {
	return service.repo.UpdateProgress(context, id, pct, progressJSON)
}

// Complete marks an archive complete with its terminal metadata.
func (service *Service) Complete(context context.Context, id string, fields CompleteFields) error {
	if err := service.repo.SetComplete(context, id, fields); err != nil {
		return err
	}
	service.logger.Info("archive_completed", slog.String("archive_id", id))
	return nil
}

/*
Fail records a handler error against the archive and schedules the next
retry using exponential backoff keyed on attempt_count (§4.6, §9).

Parameters:
  - context: context.Context
  - archive: *Archive (pre-failure state, used to compute the next delay)
  - handlerErr: error

Returns:
  - error: Persistence failures
*/
func (service *Service) Fail(context context.Context, archive *Archive, handlerErr error) error {
	delay := service.BackoffDelay(archive.AttemptCount + 1)
	nextAttemptAt := time.Now().Add(delay)

	if err := service.repo.SetFailed(context, archive.ID, handlerErr.Error(), nextAttemptAt); err != nil {
		return err
	}

	service.logger.Warn("archive_failed",
		slog.String("archive_id", archive.ID),
		slog.Int("attempt_count", archive.AttemptCount+1),
		slog.Duration("next_attempt_in", delay),
		slog.String("error", handlerErr.Error()),
	)
	return nil
}

// IsRetriable reports whether an archive may still be retried under the
// configured max attempt count.
func (service *Service) IsRetriable(archive *Archive) bool {
	return archive.AttemptCount < service.maxAttempts
}

// Recover transitions stuck in_progress rows back to pending on startup.
func (service *Service) Recover(context context.Context) (int, error) {
	n, err := service.repo.RecoverStuck(context)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		service.logger.Info("archives_recovered", slog.Int("count", n))
	}
	return n, nil
}

// ListPending returns the oldest pending archives, for the ops surface (C11).
func (service *Service) ListPending(context context.Context, limit int) ([]*Archive, error) {
	return service.repo.ListPending(context, limit)
}

// StatusCounts returns the number of archives in each lifecycle status, for
// the ops surface's /stats snapshot (§4.11).
func (service *Service) StatusCounts(context context.Context) (map[Status]int, error) {
	counts := make(map[Status]int, 4)
	for _, status := range []Status{StatusPending, StatusInProgress, StatusComplete, StatusFailed} {
		n, err := service.repo.CountByStatus(context, status)
		if err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, nil
}

// BackoffDelay computes the exponential backoff for a given attempt count:
// backoffBase * 2^(attempt-1), capped at backoffCap — both configured on the
// service rather than hardcoded, so an operator's BACKOFF_BASE/BACKOFF_CAP
// actually takes effect (§4.12).
func (service *Service) BackoffDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := time.Duration(float64(service.backoffBase) * math.Pow(2, float64(attempt-1)))
	if delay > service.backoffCap || delay <= 0 {
		return service.backoffCap
	}
	return delay
}
