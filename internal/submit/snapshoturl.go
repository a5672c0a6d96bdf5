// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submit

import (
	"strings"

	"github.com/forumvault/archiver/internal/platform/constants"
)

// isSnapshotURL reports whether rawURL points at an actual Archive.today
// snapshot rather than a submission/search/about page (§4.8): the path
// segment right after the host must be 5-10 alphanumeric characters and
// not one of the reserved path names.
func isSnapshotURL(rawURL string) bool {
	for _, host := range constants.ArchiveTodaySnapshotHosts {
		marker := host + "/"
		idx := strings.Index(rawURL, marker)
		if idx < 0 {
			continue
		}
		after := rawURL[idx+len(marker):]
		segment, _, _ := strings.Cut(after, "/")
		if isReservedPath(segment) {
			continue
		}
		if len(segment) >= 5 && len(segment) <= 10 && isAlphanumeric(segment) {
			return true
		}
	}
	return false
}

func isReservedPath(segment string) bool {
	for _, reserved := range constants.ArchiveTodayReservedPaths {
		if strings.EqualFold(segment, reserved) {
			return true
		}
	}
	return false
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return s != ""
}

// extractSnapshotURL scans an Archive.today response body for a snapshot
// URL, checking (in order) the canonical link, the og:url meta tag, and a
// raw scan for an archive host URL (§4.8). Returns "" if none is found.
func extractSnapshotURL(body string) string {
	if url := findBetween(body, `rel="canonical" href="`, `"`); url != "" && isSnapshotURL(url) {
		return url
	}
	if url := findBetween(body, `property="og:url" content="`, `"`); url != "" && isSnapshotURL(url) {
		return url
	}
	for _, host := range constants.ArchiveTodaySnapshotHosts {
		prefix := "https://" + host + "/"
		idx := strings.Index(body, prefix)
		if idx < 0 {
			continue
		}
		rest := body[idx:]
		end := strings.IndexFunc(rest, func(r rune) bool {
			return r == '"' || r == '\'' || r == '<' || r == '>' || r == ' ' || r == '\n' || r == '\t'
		})
		if end < 0 {
			end = len(rest)
		}
		candidate := rest[:end]
		if isSnapshotURL(candidate) {
			return candidate
		}
	}
	return ""
}

func findBetween(s, start, end string) string {
	idx := strings.Index(s, start)
	if idx < 0 {
		return ""
	}
	rest := s[idx+len(start):]
	endIdx := strings.Index(rest, end)
	if endIdx < 0 {
		return ""
	}
	return rest[:endIdx]
}
