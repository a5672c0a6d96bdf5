// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package artifact

import (
	"context"

	"github.com/forumvault/archiver/internal/core/archivejob"
)

// Repository persists Artifact rows.
type Repository interface {
	/*
		CompleteWithArtifacts inserts one row per produced artifact and marks the
		owning archive complete, in a single transaction (§4.6 step 5): either all
		artifacts are recorded and the archive is complete, or none are and the
		archive is untouched.

		Parameters:
		  - context: context.Context
		  - archiveID: string
		  - artifacts: []NewArtifact
		  - fields: archivejob.CompleteFields

		Returns:
		  - error: Persistence failures
	*/
	CompleteWithArtifacts(context context.Context, archiveID string, artifacts []NewArtifact, fields archivejob.CompleteFields) error

	// ListByArchiveID returns every artifact recorded for an archive.
	ListByArchiveID(context context.Context, archiveID string) ([]*Artifact, error)

	/*
		FindDuplicateByPerceptualHash scans recent artifacts with a non-empty
		perceptual_hash for one within the Hamming-distance dedup threshold of
		hash (§4.4, §6) — the cache-miss fallback behind [dedup.Cache].

		Parameters:
		  - context: context.Context
		  - hash: string (base64-encoded perceptual hash)

		Returns:
		  - string: the matching artifact's content hash, if any
		  - bool: whether a duplicate was found
		  - error: Retrieval failures
	*/
	FindDuplicateByPerceptualHash(context context.Context, hash string) (string, bool, error)
}
