package schema

// ArchiveLinkOccurrenceTable represents the 'archive.link_occurrence' table.
type ArchiveLinkOccurrenceTable struct {
	Table          string
	ID             string
	LinkID         string
	PostID         string
	InQuote        string
	ContextSnippet string
	CreatedAt      string
}

// ArchiveLinkOccurrence is the schema definition for archive.link_occurrence.
var ArchiveLinkOccurrence = ArchiveLinkOccurrenceTable{
	Table:          "archive.link_occurrence",
	ID:             "id",
	LinkID:         "link_id",
	PostID:         "post_id",
	InQuote:        "in_quote",
	ContextSnippet: "context_snippet",
	CreatedAt:      "created_at",
}

func (t ArchiveLinkOccurrenceTable) Columns() []string {
	return []string{t.ID, t.LinkID, t.PostID, t.InQuote, t.ContextSnippet, t.CreatedAt}
}
