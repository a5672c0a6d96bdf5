package schema

// ArchiveArchiveTable represents the 'archive.archive' table — the job queue row.
type ArchiveArchiveTable struct {
	Table         string
	ID            string
	LinkID        string
	Status        string
	AttemptCount  string
	LastError     string
	ProgressPct   string
	ProgressJSON  string
	Title         string
	MediaType     string
	ArtifactIndex string
	ClaimedBy     string
	ClaimedAt     string
	NextAttemptAt string
	CreatedAt     string
	UpdatedAt     string
}

// ArchiveArchive is the schema definition for archive.archive.
var ArchiveArchive = ArchiveArchiveTable{
	Table:         "archive.archive",
	ID:            "id",
	LinkID:        "link_id",
	Status:        "status",
	AttemptCount:  "attempt_count",
	LastError:     "last_error",
	ProgressPct:   "progress_pct",
	ProgressJSON:  "progress_json",
	Title:         "title",
	MediaType:     "media_type",
	ArtifactIndex: "artifact_index",
	ClaimedBy:     "claimed_by",
	ClaimedAt:     "claimed_at",
	NextAttemptAt: "next_attempt_at",
	CreatedAt:     "created_at",
	UpdatedAt:     "updated_at",
}

func (t ArchiveArchiveTable) Columns() []string {
	return []string{
		t.ID, t.LinkID, t.Status, t.AttemptCount, t.LastError, t.ProgressPct,
		t.ProgressJSON, t.Title, t.MediaType, t.ArtifactIndex, t.ClaimedBy,
		t.ClaimedAt, t.NextAttemptAt, t.CreatedAt, t.UpdatedAt,
	}
}

// Status values for archive.archive.status (§3).
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
	StatusFailed     = "failed"
)
