package schema

// ArchiveArtifactTable represents the 'archive.artifact' table.
type ArchiveArtifactTable struct {
	Table          string
	ID             string
	ArchiveID      string
	Kind           string
	ObjectKey      string
	SizeBytes      string
	PerceptualHash string
	ContentHash    string
	IPFSCid        string
	CreatedAt      string
}

// ArchiveArtifact is the schema definition for archive.artifact.
var ArchiveArtifact = ArchiveArtifactTable{
	Table:          "archive.artifact",
	ID:             "id",
	ArchiveID:      "archive_id",
	Kind:           "kind",
	ObjectKey:      "object_key",
	SizeBytes:      "size_bytes",
	PerceptualHash: "perceptual_hash",
	ContentHash:    "content_hash",
	IPFSCid:        "ipfs_cid",
	CreatedAt:      "created_at",
}

func (t ArchiveArtifactTable) Columns() []string {
	return []string{
		t.ID, t.ArchiveID, t.Kind, t.ObjectKey, t.SizeBytes,
		t.PerceptualHash, t.ContentHash, t.IPFSCid, t.CreatedAt,
	}
}

// Artifact kind values (§4.7).
const (
	KindHTML            = "html"
	KindPDF             = "pdf"
	KindVideo           = "video"
	KindComments        = "comments"
	KindTranscript      = "transcript"
	KindThumbnail       = "thumbnail"
	KindDOMDump         = "dom-dump"
	KindThirdPartyPoint = "third-party-pointer"
)
