// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forumvault/archiver/internal/fts"
)

func TestSanitizeQuery(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"simple word", "rust", `"rust"`},
		{"multi word", "hello world", `"hello world"`},
		{"apostrophe", "let's", `"let's"`},
		{"quoted phrase", `foo "bar" baz`, `"foo ""bar"" baz"`},
		{"fully quoted", `"quoted"`, `"""quoted"""`},
		{"hyphen operator", "test-query", `"test-query"`},
		{"wildcard", "*wildcard*", `"*wildcard*"`},
		{"parentheses", "(foo OR bar)", `"(foo OR bar)"`},
		{"colon", "title:test", `"title:test"`},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"tabs and newlines", "\t\n  ", ""},
		{"trims surrounding whitespace", "  test  ", `"test"`},
		{"unicode", "café", `"café"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, fts.SanitizeQuery(tc.input))
		})
	}
}
