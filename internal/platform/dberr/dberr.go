// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/forumvault/archiver/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error
// per the §7 taxonomy so callers can switch on [apperr.AppError.Kind].
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Unique-violation mapping — DuplicateConstraint, swallowed by callers
	// as the idempotency guarantee (Post.guid, Link.normalized_url,
	// LinkOccurrence(link_id, post_id), Artifact(archive_id, kind, object_key)).
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperr.DuplicateConstraintErr(err)
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// IsDuplicate reports whether err is a [apperr.KindDuplicateConstraint] error,
// the idempotent-insert "already exists" case every ingestion path must
// treat as success-no-op rather than failure.
func IsDuplicate(err error) bool {
	ae := apperr.As(err)
	return ae != nil && ae.Kind == apperr.KindDuplicateConstraint
}
