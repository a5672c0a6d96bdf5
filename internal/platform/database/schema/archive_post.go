package schema

// ArchivePostTable represents the 'archive.post' table.
type ArchivePostTable struct {
	Table       string
	ID          string
	GUID        string
	SourceURL   string
	Author      string
	Title       string
	BodyHTML    string
	ContentHash string
	PublishedAt string
	CreatedAt   string
}

// ArchivePost is the schema definition for archive.post.
var ArchivePost = ArchivePostTable{
	Table:       "archive.post",
	ID:          "id",
	GUID:        "guid",
	SourceURL:   "source_url",
	Author:      "author",
	Title:       "title",
	BodyHTML:    "body_html",
	ContentHash: "content_hash",
	PublishedAt: "published_at",
	CreatedAt:   "created_at",
}

func (t ArchivePostTable) Columns() []string {
	return []string{
		t.ID, t.GUID, t.SourceURL, t.Author, t.Title, t.BodyHTML,
		t.ContentHash, t.PublishedAt, t.CreatedAt,
	}
}
