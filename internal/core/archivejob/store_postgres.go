// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package archivejob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forumvault/archiver/internal/platform/constants"
	"github.com/forumvault/archiver/internal/platform/database/schema"
	"github.com/forumvault/archiver/internal/platform/dberr"
	"github.com/forumvault/archiver/pkg/uuidv7"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed archive job store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
CreatePending inserts a pending archive row for a link.

Parameters:
  - context: context.Context
  - linkID: string

Returns:
  - string: the new archive id
  - error: [apperr.KindDuplicateConstraint] if one already exists for linkID
*/
func (repository *PostgresRepository) CreatePending(context context.Context, linkID string) (string, error) {
	id := uuidv7.New()
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
	`,
		schema.ArchiveArchive.Table,
		schema.ArchiveArchive.ID, schema.ArchiveArchive.LinkID, schema.ArchiveArchive.Status,
	)
	_, err := repository.db.Exec(context, query, id, linkID, string(StatusPending))
	if err != nil {
		return "", dberr.Wrap(err, "create_pending_archive")
	}
	return id, nil
}

/*
ClaimNext atomically claims the oldest due archive, transitioning it to
in_progress. Rows whose attempt_count has reached maxAttempts are excluded
from the candidate set, so a permanently-broken link stops being reclaimed
once it has exhausted its retries (§4.6, §9).

Description: uses SELECT ... FOR UPDATE SKIP LOCKED so concurrent workers
race on distinct rows instead of blocking each other (§5).

Parameters:
  - context: context.Context
  - workerID: string
  - maxAttempts: int

Returns:
  - *Archive: claimed row, or nil if the queue is empty
  - error: Database failures
*/
func (repository *PostgresRepository) ClaimNext(context context.Context, workerID string, maxAttempts int) (*Archive, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = NOW(), %s = NOW()
		WHERE %s = (
			SELECT %s FROM %s
			WHERE %s IN ($3, $4) AND %s <= NOW() AND %s < $5
			ORDER BY %s ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
	`,
		schema.ArchiveArchive.Status, schema.ArchiveArchive.ClaimedBy, schema.ArchiveArchive.ClaimedAt, schema.ArchiveArchive.UpdatedAt,
		schema.ArchiveArchive.ID,
		schema.ArchiveArchive.ID, schema.ArchiveArchive.Table,
		schema.ArchiveArchive.Status, schema.ArchiveArchive.NextAttemptAt, schema.ArchiveArchive.AttemptCount,
		schema.ArchiveArchive.CreatedAt,
		schema.ArchiveArchive.ID, schema.ArchiveArchive.LinkID, schema.ArchiveArchive.Status, schema.ArchiveArchive.AttemptCount,
		schema.ArchiveArchive.LastError, schema.ArchiveArchive.ProgressPct, schema.ArchiveArchive.ProgressJSON,
		schema.ArchiveArchive.Title, schema.ArchiveArchive.MediaType, schema.ArchiveArchive.ArtifactIndex,
		schema.ArchiveArchive.ClaimedBy, schema.ArchiveArchive.ClaimedAt, schema.ArchiveArchive.NextAttemptAt,
		schema.ArchiveArchive.CreatedAt, schema.ArchiveArchive.UpdatedAt,
	)

	row := repository.db.QueryRow(context, query, string(StatusInProgress), workerID, string(StatusPending), string(StatusFailed), maxAttempts)

	archive := &Archive{}
	err := row.Scan(
		&archive.ID, &archive.LinkID, &archive.Status, &archive.AttemptCount,
		&archive.LastError, &archive.ProgressPct, &archive.ProgressJSON,
		&archive.Title, &archive.MediaType, &archive.ArtifactIndex,
		&archive.ClaimedBy, &archive.ClaimedAt, &archive.NextAttemptAt,
		&archive.CreatedAt, &archive.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dberr.Wrap(err, "claim_next_archive")
	}
	return archive, nil
}

/*
UpdateProgress writes a coalesced progress snapshot without touching status.

Parameters:
  - context: context.Context
  - id: string
  - pct: int
  - progressJSON: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) UpdateProgress(context context.Context, id string, pct int, progressJSON string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = NOW() WHERE %s = $1
	`,
		schema.ArchiveArchive.Table,
		schema.ArchiveArchive.ProgressPct, schema.ArchiveArchive.ProgressJSON, schema.ArchiveArchive.UpdatedAt,
		schema.ArchiveArchive.ID,
	)
	_, err := repository.db.Exec(context, query, id, pct, progressJSON)
	return dberr.Wrap(err, "update_archive_progress")
}

/*
SetComplete transitions an archive to complete with terminal metadata.

Parameters:
  - context: context.Context
  - id: string
  - fields: CompleteFields

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SetComplete(context context.Context, id string, fields CompleteFields) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = 100, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1
	`,
		schema.ArchiveArchive.Table,
		schema.ArchiveArchive.Status, schema.ArchiveArchive.ProgressPct,
		schema.ArchiveArchive.Title, schema.ArchiveArchive.MediaType, schema.ArchiveArchive.ArtifactIndex,
		schema.ArchiveArchive.UpdatedAt,
		schema.ArchiveArchive.ID,
	)
	_, err := repository.db.Exec(context, query, id, string(StatusComplete), fields.Title, fields.MediaType, fields.ArtifactIndex)
	return dberr.Wrap(err, "set_archive_complete")
}

/*
SetFailed transitions an archive to failed, increments attempt_count, and
stores a truncated error message plus the next eligible retry time.

Parameters:
  - context: context.Context
  - id: string
  - lastError: string
  - nextAttemptAt: time.Time

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SetFailed(context context.Context, id string, lastError string, nextAttemptAt time.Time) error {
	if len(lastError) > constants.LastErrorTruncateLen {
		lastError = lastError[:constants.LastErrorTruncateLen]
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = %s + 1, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
	`,
		schema.ArchiveArchive.Table,
		schema.ArchiveArchive.Status,
		schema.ArchiveArchive.AttemptCount, schema.ArchiveArchive.AttemptCount,
		schema.ArchiveArchive.LastError, schema.ArchiveArchive.NextAttemptAt,
		schema.ArchiveArchive.UpdatedAt,
		schema.ArchiveArchive.ID,
	)
	_, err := repository.db.Exec(context, query, id, string(StatusFailed), lastError, nextAttemptAt)
	return dberr.Wrap(err, "set_archive_failed")
}

/*
RecoverStuck transitions every in_progress row back to pending. Called once
on worker pool startup, before any claim is issued.

Parameters:
  - context: context.Context

Returns:
  - int: number of rows recovered
  - error: Persistence failures
*/
func (repository *PostgresRepository) RecoverStuck(context context.Context) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = NULL, %s = NULL, %s = NOW() WHERE %s = $2
	`,
		schema.ArchiveArchive.Table,
		schema.ArchiveArchive.Status, schema.ArchiveArchive.ClaimedBy, schema.ArchiveArchive.ClaimedAt,
		schema.ArchiveArchive.UpdatedAt, schema.ArchiveArchive.Status,
	)
	result, err := repository.db.Exec(context, query, string(StatusPending), string(StatusInProgress))
	if err != nil {
		return 0, dberr.Wrap(err, "recover_stuck_archives")
	}
	return int(result.RowsAffected()), nil
}

/*
ListPending returns pending archives oldest-first by created_at.

Parameters:
  - context: context.Context
  - limit: int

Returns:
  - []*Archive: matching rows
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListPending(context context.Context, limit int) ([]*Archive, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
		LIMIT $2
	`,
		schema.ArchiveArchive.ID, schema.ArchiveArchive.LinkID, schema.ArchiveArchive.Status, schema.ArchiveArchive.AttemptCount,
		schema.ArchiveArchive.LastError, schema.ArchiveArchive.ProgressPct, schema.ArchiveArchive.ProgressJSON,
		schema.ArchiveArchive.Title, schema.ArchiveArchive.MediaType, schema.ArchiveArchive.ArtifactIndex,
		schema.ArchiveArchive.ClaimedBy, schema.ArchiveArchive.ClaimedAt, schema.ArchiveArchive.NextAttemptAt,
		schema.ArchiveArchive.CreatedAt, schema.ArchiveArchive.UpdatedAt,
		schema.ArchiveArchive.Table,
		schema.ArchiveArchive.Status,
		schema.ArchiveArchive.CreatedAt,
	)
	rows, err := repository.db.Query(context, query, string(StatusPending), limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_pending_archives")
	}
	defer rows.Close()

	var archives []*Archive
	for rows.Next() {
		archive := &Archive{}
		if err := rows.Scan(
			&archive.ID, &archive.LinkID, &archive.Status, &archive.AttemptCount,
			&archive.LastError, &archive.ProgressPct, &archive.ProgressJSON,
			&archive.Title, &archive.MediaType, &archive.ArtifactIndex,
			&archive.ClaimedBy, &archive.ClaimedAt, &archive.NextAttemptAt,
			&archive.CreatedAt, &archive.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_pending_archive")
		}
		archives = append(archives, archive)
	}
	return archives, nil
}

/*
FindByLinkID retrieves the archive for a given link.

Parameters:
  - context: context.Context
  - linkID: string

Returns:
  - *Archive: the archive row
  - error: [dberr.ErrNotFound] if missing
*/
func (repository *PostgresRepository) FindByLinkID(context context.Context, linkID string) (*Archive, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1
	`,
		schema.ArchiveArchive.ID, schema.ArchiveArchive.LinkID, schema.ArchiveArchive.Status, schema.ArchiveArchive.AttemptCount,
		schema.ArchiveArchive.LastError, schema.ArchiveArchive.ProgressPct, schema.ArchiveArchive.ProgressJSON,
		schema.ArchiveArchive.Title, schema.ArchiveArchive.MediaType, schema.ArchiveArchive.ArtifactIndex,
		schema.ArchiveArchive.ClaimedBy, schema.ArchiveArchive.ClaimedAt, schema.ArchiveArchive.NextAttemptAt,
		schema.ArchiveArchive.CreatedAt, schema.ArchiveArchive.UpdatedAt,
		schema.ArchiveArchive.Table, schema.ArchiveArchive.LinkID,
	)
	archive := &Archive{}
	err := repository.db.QueryRow(context, query, linkID).Scan(
		&archive.ID, &archive.LinkID, &archive.Status, &archive.AttemptCount,
		&archive.LastError, &archive.ProgressPct, &archive.ProgressJSON,
		&archive.Title, &archive.MediaType, &archive.ArtifactIndex,
		&archive.ClaimedBy, &archive.ClaimedAt, &archive.NextAttemptAt,
		&archive.CreatedAt, &archive.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_archive_by_link_id")
	}
	return archive, nil
}

/*
CountByStatus returns the number of archives currently in a status.

Parameters:
  - context: context.Context
  - status: Status

Returns:
  - int: row count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) CountByStatus(context context.Context, status Status) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, schema.ArchiveArchive.Table, schema.ArchiveArchive.Status)
	var count int
	err := repository.db.QueryRow(context, query, string(status)).Scan(&count)
	if err != nil {
		return 0, dberr.Wrap(err, "count_archives_by_status")
	}
	return count, nil
}
