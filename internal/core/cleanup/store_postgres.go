// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forumvault/archiver/internal/core/archivejob"
	"github.com/forumvault/archiver/internal/platform/database/schema"
	"github.com/forumvault/archiver/internal/platform/dberr"
)

// PostgresRepository is the Postgres-backed [Repository].
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository] over an existing pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) RecoverStaleClaims(ctx context.Context, olderThan time.Time) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = NULL, %s = NULL, %s = NOW()
		WHERE %s = $2 AND %s < $3
	`,
		schema.ArchiveArchive.Table,
		schema.ArchiveArchive.Status, schema.ArchiveArchive.ClaimedBy, schema.ArchiveArchive.ClaimedAt,
		schema.ArchiveArchive.UpdatedAt,
		schema.ArchiveArchive.Status, schema.ArchiveArchive.ClaimedAt,
	)
	result, err := repository.db.Exec(ctx, query, string(archivejob.StatusPending), string(archivejob.StatusInProgress), olderThan)
	if err != nil {
		return 0, dberr.Wrap(err, "recover_stale_claims")
	}
	return int(result.RowsAffected()), nil
}

func (repository *PostgresRepository) DeleteOldAuditEvents(ctx context.Context, olderThan time.Time) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s < $1`,
		schema.ArchiveAuditEvent.Table, schema.ArchiveAuditEvent.CreatedAt,
	)
	result, err := repository.db.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_old_audit_events")
	}
	return int(result.RowsAffected()), nil
}
