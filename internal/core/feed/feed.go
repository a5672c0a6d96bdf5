// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package feed owns ingestion of the monitored forum's RSS export: fetching,
diffing against known posts, running the link extractor and URL normalizer
on each new post, and handing freshly-discovered links to the archive job
store (§4.3).
*/
package feed

import "time"

// # Core Entities

// Post is one forum post as sighted by the poller. Immutable once inserted.
type Post struct {
	ID          string    `json:"id"`
	GUID        string    `json:"guid"`
	SourceURL   string    `json:"source_url"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html"`
	ContentHash string    `json:"content_hash"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Link is a distinct outbound URL, keyed by its normalized form.
type Link struct {
	ID            string    `json:"id"`
	OriginalURL   string    `json:"original_url"`
	NormalizedURL string    `json:"normalized_url"`
	CanonicalURL  *string   `json:"canonical_url,omitempty"`
	Domain        string    `json:"domain"`
	CreatedAt     time.Time `json:"created_at"`
}

// Occurrence records that a Link appeared in a Post.
type Occurrence struct {
	ID             string    `json:"id"`
	LinkID         string    `json:"link_id"`
	PostID         string    `json:"post_id"`
	InQuote        bool      `json:"in_quote"`
	ContextSnippet string    `json:"context_snippet"`
	CreatedAt      time.Time `json:"created_at"`
}

// PollResult summarizes one poll cycle.
type PollResult struct {
	NewPosts int
	NewLinks int
}
