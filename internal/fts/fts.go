// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package fts sanitizes free-text search queries for Postgres's
plainto_tsquery/websearch_to_tsquery boundary (§6): wrapping the query in
double quotes enables phrase matching and sidesteps syntax errors from
apostrophes, hyphens, and other operator characters a user might type.
*/
package fts

import "strings"

// SanitizeQuery wraps a raw search query for safe phrase-matching use,
// doubling any internal double quotes first. Empty or whitespace-only
// input returns an empty string.
func SanitizeQuery(query string) string {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return ""
	}

	escaped := strings.ReplaceAll(trimmed, `"`, `""`)
	return `"` + escaped + `"`
}
