// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package artifact

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forumvault/archiver/internal/core/archivejob"
	"github.com/forumvault/archiver/internal/core/dedup"
	"github.com/forumvault/archiver/internal/platform/database/schema"
	"github.com/forumvault/archiver/internal/platform/dberr"
	"github.com/forumvault/archiver/pkg/uuidv7"
)

// duplicateScanLimit bounds the perceptual-hash fallback scan (§6) to the
// most recently created candidates, so a cache miss never becomes a
// full-table scan.
const duplicateScanLimit = 500

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed artifact store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) CompleteWithArtifacts(context context.Context, archiveID string, artifacts []NewArtifact, fields archivejob.CompleteFields) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_complete_with_artifacts_tx")
	}
	defer transaction.Rollback(context)

	for _, a := range artifacts {
		if err := repository.insertArtifact(context, transaction, archiveID, a); err != nil {
			return err
		}
	}

	if err := repository.setComplete(context, transaction, archiveID, fields); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_complete_with_artifacts_tx")
	}
	return nil
}

func (repository *PostgresRepository) insertArtifact(context context.Context, transaction pgx.Tx, archiveID string, a NewArtifact) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (%s, %s, %s) DO NOTHING
	`,
		schema.ArchiveArtifact.Table,
		schema.ArchiveArtifact.ID, schema.ArchiveArtifact.ArchiveID, schema.ArchiveArtifact.Kind,
		schema.ArchiveArtifact.ObjectKey, schema.ArchiveArtifact.SizeBytes, schema.ArchiveArtifact.PerceptualHash,
		schema.ArchiveArtifact.ContentHash, schema.ArchiveArtifact.IPFSCid,
		schema.ArchiveArtifact.ArchiveID, schema.ArchiveArtifact.Kind, schema.ArchiveArtifact.ObjectKey,
	)
	_, err := transaction.Exec(context, query,
		uuidv7.New(), archiveID, a.Kind, a.ObjectKey, a.SizeBytes, a.PerceptualHash, a.ContentHash, a.IPFSCid,
	)
	return dberr.Wrap(err, "insert_artifact")
}

func (repository *PostgresRepository) setComplete(context context.Context, transaction pgx.Tx, archiveID string, fields archivejob.CompleteFields) error {
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
	_, err := transaction.Exec(context, query,
		archiveID, string(archivejob.StatusComplete), fields.Title, fields.MediaType, fields.ArtifactIndex,
	)
	return dberr.Wrap(err, "set_archive_complete")
}

// ListByArchiveID returns every artifact recorded for an archive.
func (repository *PostgresRepository) ListByArchiveID(context context.Context, archiveID string) ([]*Artifact, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s WHERE %s = $1 ORDER BY %s
	`,
		schema.ArchiveArtifact.ID, schema.ArchiveArtifact.ArchiveID, schema.ArchiveArtifact.Kind,
		schema.ArchiveArtifact.ObjectKey, schema.ArchiveArtifact.SizeBytes, schema.ArchiveArtifact.PerceptualHash,
		schema.ArchiveArtifact.ContentHash, schema.ArchiveArtifact.IPFSCid, schema.ArchiveArtifact.CreatedAt,
		schema.ArchiveArtifact.Table, schema.ArchiveArtifact.ArchiveID, schema.ArchiveArtifact.CreatedAt,
	)
	rows, err := repository.db.Query(context, query, archiveID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_artifacts_by_archive_id")
	}
	defer rows.Close()

	var results []*Artifact
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(
			&a.ID, &a.ArchiveID, &a.Kind, &a.ObjectKey, &a.SizeBytes,
			&a.PerceptualHash, &a.ContentHash, &a.IPFSCid, &a.CreatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_artifact")
		}
		results = append(results, &a)
	}
	return results, dberr.Wrap(rows.Err(), "list_artifacts_by_archive_id")
}

// FindDuplicateByPerceptualHash scans the most recent artifacts with a
// recorded perceptual_hash and returns the content hash of the first one
// within the dedup threshold of hash, computing the Hamming distance in Go
// since Postgres cannot compare the opaque base64 hash column directly.
func (repository *PostgresRepository) FindDuplicateByPerceptualHash(context context.Context, hash string) (string, bool, error) {
	if hash == "" {
		return "", false, nil
	}

	query := fmt.Sprintf(`
		SELECT %s, %s FROM %s
		WHERE %s IS NOT NULL AND %s <> ''
		ORDER BY %s DESC
		LIMIT %d
	`,
		schema.ArchiveArtifact.PerceptualHash, schema.ArchiveArtifact.ContentHash, schema.ArchiveArtifact.Table,
		schema.ArchiveArtifact.PerceptualHash, schema.ArchiveArtifact.PerceptualHash,
		schema.ArchiveArtifact.CreatedAt, duplicateScanLimit,
	)
	rows, err := repository.db.Query(context, query)
	if err != nil {
		return "", false, dberr.Wrap(err, "scan_duplicate_perceptual_hash")
	}
	defer rows.Close()

	for rows.Next() {
		var candidateHash, contentHash string
		if err := rows.Scan(&candidateHash, &contentHash); err != nil {
			return "", false, dberr.Wrap(err, "scan_duplicate_perceptual_hash_row")
		}
		if dedup.IsDuplicate(hash, candidateHash) {
			return contentHash, true, nil
		}
	}
	return "", false, dberr.Wrap(rows.Err(), "scan_duplicate_perceptual_hash")
}
