// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cleanup

import (
	"context"
	"time"
)

// Repository is the persistence surface the cleanup worker needs (§4.9).
type Repository interface {
	// RecoverStaleClaims reclaims in_progress archives whose worker lease
	// (claimed_at) is older than olderThan, returning them to pending. This
	// domain has no auth sessions; a stale claim is this pipeline's analog
	// of an expired session row.
	RecoverStaleClaims(ctx context.Context, olderThan time.Time) (int, error)

	// DeleteOldAuditEvents removes audit_event rows older than olderThan.
	DeleteOldAuditEvents(ctx context.Context, olderThan time.Time) (int, error)
}
