// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package feed

import "context"

// # Feed Data Access

// Repository defines the data access contract for posts, links, and occurrences.
type Repository interface {

	/*
		PostExists reports whether a post with the given guid has already
		been ingested.

		Parameters:
		  - context: context.Context
		  - guid: string

		Returns:
		  - bool: true if already ingested
		  - error: Database failures
	*/
	PostExists(context context.Context, guid string) (bool, error)

	/*
		IngestPost inserts a Post and, within the same transaction, the Links,
		LinkOccurrences, and pending Archives it introduces (§4.3 step 3).

		Parameters:
		  - context: context.Context
		  - post: *Post
		  - links: []ExtractedLink (normalized + quote/context metadata already attached)

		Returns:
		  - newLinkCount: int — links that did not already exist
		  - error: Persistence failures (duplicate guid is treated as a no-op by the caller via PostExists)
	*/
	IngestPost(context context.Context, post *Post, links []ExtractedLink) (newLinkCount int, err error)

	/*
		FindLinkByID retrieves a Link by its primary key, for the worker pool to
		resolve a claimed Archive's URL and domain before handler dispatch.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Link: nil if not found
		  - error: Database failures
	*/
	FindLinkByID(context context.Context, id string) (*Link, error)
}

// ExtractedLink bundles everything IngestPost needs to materialize one
// Link + Occurrence (+ Archive, if the link is new) row.
type ExtractedLink struct {
	OriginalURL    string
	NormalizedURL  string
	Domain         string
	InQuote        bool
	ContextSnippet string
}
