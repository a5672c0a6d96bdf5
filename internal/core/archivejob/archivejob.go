// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package archivejob is the durable job queue for the archival pipeline (§4.5).

It owns the [Archive] entity — one row per [Link] — carrying it through the
pending → in_progress → {complete | failed} lifecycle that the worker pool
(internal/core/worker) drives.
*/
package archivejob

import "time"

// # Status Lifecycle

// Status is the job's position in the pending/in_progress/complete/failed DAG.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

// # Core Entity

// Archive is the persistent job and terminal metadata for one Link.
type Archive struct {
	ID            string     `json:"id"`
	LinkID        string     `json:"link_id"`
	Status        Status     `json:"status"`
	AttemptCount  int        `json:"attempt_count"`
	LastError     *string    `json:"last_error,omitempty"`
	ProgressPct   int        `json:"progress_pct"`
	ProgressJSON  *string    `json:"progress_json,omitempty"`
	Title         *string    `json:"title,omitempty"`
	MediaType     *string    `json:"media_type,omitempty"`
	ArtifactIndex *string    `json:"artifact_index,omitempty"`
	ClaimedBy     *string    `json:"claimed_by,omitempty"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`
	NextAttemptAt time.Time  `json:"next_attempt_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CompleteFields carries the terminal metadata written by set_complete.
type CompleteFields struct {
	Title         *string
	MediaType     *string
	ArtifactIndex *string
}

// # Field Identifiers

const (
	FieldLinkID = "link_id"
	FieldStatus = "status"
)
