// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forumvault/archiver/internal/platform/database/schema"
	"github.com/forumvault/archiver/internal/platform/dberr"
	"github.com/forumvault/archiver/pkg/uuidv7"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed feed store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
PostExists reports whether a post with the given guid has already been ingested.

Parameters:
  - context: context.Context
  - guid: string

Returns:
  - bool: true if already ingested
  - error: Database failures
*/
func (repository *PostgresRepository) PostExists(context context.Context, guid string) (bool, error) {
	query := fmt.Sprintf(`SELECT 1 FROM %s WHERE %s = $1`, schema.ArchivePost.Table, schema.ArchivePost.GUID)

	var dummy int
	err := repository.db.QueryRow(context, query, guid).Scan(&dummy)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, dberr.Wrap(err, "check_post_exists")
	}
	return true, nil
}

/*
IngestPost inserts a Post and, transactionally, every Link/Occurrence/pending
Archive it introduces.

Description: Post insertion happens-before LinkOccurrence insertion
happens-before Archive creation (§5). Links are idempotent on
normalized_url; occurrences on (link_id, post_id); archives are created
once per link, the first time it is observed.

Parameters:
  - context: context.Context
  - post: *Post
  - links: []ExtractedLink

Returns:
  - int: count of links that did not already exist
  - error: Persistence failures
*/
func (repository *PostgresRepository) IngestPost(context context.Context, post *Post, links []ExtractedLink) (int, error) {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return 0, dberr.Wrap(err, "begin_ingest_post_tx")
	}
	defer transaction.Rollback(context)

	post.ID = uuidv7.New()
	insertPostQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`,
		schema.ArchivePost.Table,
		schema.ArchivePost.ID, schema.ArchivePost.GUID, schema.ArchivePost.SourceURL, schema.ArchivePost.Author,
		schema.ArchivePost.Title, schema.ArchivePost.BodyHTML, schema.ArchivePost.ContentHash, schema.ArchivePost.PublishedAt,
		schema.ArchivePost.CreatedAt,
	)
	if err := transaction.QueryRow(context, insertPostQuery,
		post.ID, post.GUID, post.SourceURL, post.Author, post.Title, post.BodyHTML, post.ContentHash, post.PublishedAt,
	).Scan(&post.CreatedAt); err != nil {
		return 0, dberr.Wrap(err, "insert_post")
	}

	newLinkCount := 0
	for _, extracted := range links {
		linkID, isNew, err := repository.upsertLink(context, transaction, extracted)
		if err != nil {
			return 0, err
		}
		if isNew {
			newLinkCount++
		}

		if err := repository.insertOccurrence(context, transaction, linkID, post.ID, extracted); err != nil {
			return 0, err
		}

		if isNew {
			if err := repository.createPendingArchive(context, transaction, linkID); err != nil {
				return 0, err
			}
		}
	}

	if err := transaction.Commit(context); err != nil {
		return 0, dberr.Wrap(err, "commit_ingest_post_tx")
	}
	return newLinkCount, nil
}

/*
FindLinkByID retrieves a Link by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Link: nil if not found
  - error: Database failures
*/
func (repository *PostgresRepository) FindLinkByID(context context.Context, id string) (*Link, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1
	`,
		schema.ArchiveLink.ID, schema.ArchiveLink.OriginalURL, schema.ArchiveLink.NormalizedURL,
		schema.ArchiveLink.CanonicalURL, schema.ArchiveLink.Domain, schema.ArchiveLink.CreatedAt,
		schema.ArchiveLink.Table, schema.ArchiveLink.ID,
	)

	var link Link
	err := repository.db.QueryRow(context, query, id).Scan(
		&link.ID, &link.OriginalURL, &link.NormalizedURL, &link.CanonicalURL, &link.Domain, &link.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "find_link_by_id")
	}
	return &link, nil
}

func (repository *PostgresRepository) upsertLink(context context.Context, transaction pgx.Tx, extracted ExtractedLink) (linkID string, isNew bool, err error) {
	id := uuidv7.New()
	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (%s) DO NOTHING
		RETURNING %s
	`,
		schema.ArchiveLink.Table,
		schema.ArchiveLink.ID, schema.ArchiveLink.OriginalURL, schema.ArchiveLink.NormalizedURL, schema.ArchiveLink.Domain,
		schema.ArchiveLink.NormalizedURL,
		schema.ArchiveLink.ID,
	)
	err = transaction.QueryRow(context, insertQuery, id, extracted.OriginalURL, extracted.NormalizedURL, extracted.Domain).Scan(&linkID)
	if err == nil {
		return linkID, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, dberr.Wrap(err, "insert_link")
	}

	selectQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.ArchiveLink.ID, schema.ArchiveLink.Table, schema.ArchiveLink.NormalizedURL)
	if err := transaction.QueryRow(context, selectQuery, extracted.NormalizedURL).Scan(&linkID); err != nil {
		return "", false, dberr.Wrap(err, "select_existing_link")
	}
	return linkID, false, nil
}

func (repository *PostgresRepository) insertOccurrence(context context.Context, transaction pgx.Tx, linkID, postID string, extracted ExtractedLink) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s, %s) DO NOTHING
	`,
		schema.ArchiveLinkOccurrence.Table,
		schema.ArchiveLinkOccurrence.ID, schema.ArchiveLinkOccurrence.LinkID, schema.ArchiveLinkOccurrence.PostID,
		schema.ArchiveLinkOccurrence.InQuote, schema.ArchiveLinkOccurrence.ContextSnippet,
		schema.ArchiveLinkOccurrence.LinkID, schema.ArchiveLinkOccurrence.PostID,
	)
	_, err := transaction.Exec(context, query, uuidv7.New(), linkID, postID, extracted.InQuote, extracted.ContextSnippet)
	return dberr.Wrap(err, "insert_link_occurrence")
}

func (repository *PostgresRepository) createPendingArchive(context context.Context, transaction pgx.Tx, linkID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s) DO NOTHING
	`,
		schema.ArchiveArchive.Table,
		schema.ArchiveArchive.ID, schema.ArchiveArchive.LinkID, schema.ArchiveArchive.Status,
		schema.ArchiveArchive.LinkID,
	)
	_, err := transaction.Exec(context, query, uuidv7.New(), linkID, "pending")
	return dberr.Wrap(err, "create_pending_archive_for_link")
}
