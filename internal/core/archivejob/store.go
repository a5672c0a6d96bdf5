// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package archivejob

import (
	"context"
	"time"
)

// # Archive Job Data Access

// Repository defines the data access contract for the archive job queue.
type Repository interface {

	/*
		CreatePending inserts a pending archive for a link.

		Parameters:
		  - context: context.Context
		  - linkID: string (UUIDv7)

		Returns:
		  - string: the new archive id
		  - error: [apperr.KindDuplicateConstraint] if an archive for linkID already exists
	*/
	CreatePending(context context.Context, linkID string) (string, error)

	/*
		ClaimNext atomically transitions one pending (or due-for-retry) archive
		to in_progress, recording the claiming worker id and claim time. Rows
		whose attempt_count has reached maxAttempts are excluded — they are
		non-retriable and stay failed until an operator intervenes (§4.6, §9).

		Parameters:
		  - context: context.Context
		  - workerID: string
		  - maxAttempts: int (attempt_count ceiling; rows at or past it are skipped)

		Returns:
		  - *Archive: the claimed row, or nil if the queue is empty
		  - error: Database failures

		Safety: must be serializable against itself — two concurrent callers
		never receive the same archive id.
	*/
	ClaimNext(context context.Context, workerID string, maxAttempts int) (*Archive, error)

	/*
		UpdateProgress updates the progress snapshot without changing status.

		Parameters:
		  - context: context.Context
		  - id: string
		  - pct: int
		  - progressJSON: string (structured progress payload)

		Returns:
		  - error: Persistence failures
	*/
	UpdateProgress(context context.Context, id string, pct int, progressJSON string) error

	/*
		SetComplete transitions an archive to complete with terminal metadata.

		Parameters:
		  - context: context.Context
		  - id: string
		  - fields: CompleteFields

		Returns:
		  - error: Persistence failures
	*/
	SetComplete(context context.Context, id string, fields CompleteFields) error

	/*
		SetFailed transitions an archive from in_progress to failed, increments
		attempt_count, and stores a truncated error message.

		Parameters:
		  - context: context.Context
		  - id: string
		  - lastError: string
		  - nextAttemptAt: the earliest time a future claim may retry this job

		Returns:
		  - error: Persistence failures
	*/
	SetFailed(context context.Context, id string, lastError string, nextAttemptAt time.Time) error

	/*
		RecoverStuck transitions all in_progress rows back to pending. Called
		once on worker pool startup before any claims are issued.

		Parameters:
		  - context: context.Context

		Returns:
		  - int: number of rows recovered
		  - error: Persistence failures
	*/
	RecoverStuck(context context.Context) (int, error)

	/*
		ListPending returns pending archives oldest-first by created_at.

		Parameters:
		  - context: context.Context
		  - limit: int

		Returns:
		  - []*Archive: matching rows
		  - error: Retrieval failures
	*/
	ListPending(context context.Context, limit int) ([]*Archive, error)

	/*
		FindByLinkID retrieves the archive for a given link, if any.

		Parameters:
		  - context: context.Context
		  - linkID: string

		Returns:
		  - *Archive: the archive row
		  - error: [dberr.ErrNotFound] if missing
	*/
	FindByLinkID(context context.Context, linkID string) (*Archive, error)

	/*
		CountByStatus returns the number of archives currently in a status, for
		the ops surface's /stats snapshot (§4.11).

		Parameters:
		  - context: context.Context
		  - status: Status

		Returns:
		  - int: row count
		  - error: Retrieval failures
	*/
	CountByStatus(context context.Context, status Status) (int, error)
}
