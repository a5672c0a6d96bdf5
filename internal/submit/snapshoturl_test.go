// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submit

import "testing"

func TestIsSnapshotURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://archive.today/AbCd1", true},
		{"https://archive.ph/Xy9Zw", true},
		{"https://archive.is/12345", true},
		{"https://archive.today/submit/", false},
		{"https://example.com/archive.today/", false},
		{"https://archive.today/", false},
		{"https://archive.today/ab", false},
		{"https://archive.today/" + "abcdefghijk", false},
	}
	for _, tc := range cases {
		t.Run(tc.url, func(t *testing.T) {
			if got := isSnapshotURL(tc.url); got != tc.want {
				t.Errorf("isSnapshotURL(%q) = %v, want %v", tc.url, got, tc.want)
			}
		})
	}
}

func TestExtractSnapshotURL_CanonicalLink(t *testing.T) {
	html := `<link rel="canonical" href="https://archive.today/AbCd1">`
	got := extractSnapshotURL(html)
	want := "https://archive.today/AbCd1"
	if got != want {
		t.Errorf("extractSnapshotURL() = %q, want %q", got, want)
	}
}

func TestExtractSnapshotURL_NoMatch(t *testing.T) {
	html := `<link rel="canonical" href="https://example.com">`
	if got := extractSnapshotURL(html); got != "" {
		t.Errorf("extractSnapshotURL() = %q, want empty", got)
	}
}

func TestExtractSnapshotURL_OGMeta(t *testing.T) {
	html := `<meta property="og:url" content="https://archive.ph/Xy9Zw">`
	got := extractSnapshotURL(html)
	want := "https://archive.ph/Xy9Zw"
	if got != want {
		t.Errorf("extractSnapshotURL() = %q, want %q", got, want)
	}
}

func TestExtractSnapshotURL_RawBodyScan(t *testing.T) {
	html := `some noise <a href="https://archive.today/Qq1Rr2">link</a> trailer`
	got := extractSnapshotURL(html)
	want := "https://archive.today/Qq1Rr2"
	if got != want {
		t.Errorf("extractSnapshotURL() = %q, want %q", got, want)
	}
}
