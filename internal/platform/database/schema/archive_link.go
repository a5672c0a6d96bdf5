package schema

// ArchiveLinkTable represents the 'archive.link' table.
type ArchiveLinkTable struct {
	Table         string
	ID            string
	OriginalURL   string
	NormalizedURL string
	CanonicalURL  string
	Domain        string
	CreatedAt     string
}

// ArchiveLink is the schema definition for archive.link.
var ArchiveLink = ArchiveLinkTable{
	Table:         "archive.link",
	ID:            "id",
	OriginalURL:   "original_url",
	NormalizedURL: "normalized_url",
	CanonicalURL:  "canonical_url",
	Domain:        "domain",
	CreatedAt:     "created_at",
}

func (t ArchiveLinkTable) Columns() []string {
	return []string{t.ID, t.OriginalURL, t.NormalizedURL, t.CanonicalURL, t.Domain, t.CreatedAt}
}
