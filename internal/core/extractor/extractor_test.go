// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumvault/archiver/internal/core/extractor"
)

func TestExtract_SimpleLink(t *testing.T) {
	links, err := extractor.Extract(`<p>Check out <a href="https://example.com">this link</a>.</p>`)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://example.com", links[0].URL)
	assert.False(t, links[0].InQuote)
}

func TestExtract_DeduplicatesWithinPost(t *testing.T) {
	html := `<p><a href="https://example.com">First</a><a href="https://example.com">Second</a></p>`
	links, err := extractor.Extract(html)
	require.NoError(t, err)
	require.Len(t, links, 1)
}

func TestExtract_SkipsAnchorsJSAndMailto(t *testing.T) {
	html := `
		<a href="#section">Anchor</a>
		<a href="javascript:void(0)">JS</a>
		<a href="mailto:test@example.com">Email</a>
		<a href="https://valid.com">Valid</a>
	`
	links, err := extractor.Extract(html)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "https://valid.com", links[0].URL)
}

func TestExtract_QuoteDetectionBlockquote(t *testing.T) {
	html := `
		<blockquote><p><a href="https://quoted.com">Quoted</a></p></blockquote>
		<p><a href="https://normal.com">Normal</a></p>
	`
	links, err := extractor.Extract(html)
	require.NoError(t, err)
	require.Len(t, links, 2)

	byURL := map[string]extractor.Link{}
	for _, l := range links {
		byURL[l.URL] = l
	}
	assert.True(t, byURL["https://quoted.com"].InQuote)
	assert.False(t, byURL["https://normal.com"].InQuote)
}

func TestExtract_QuoteDetectionAsideClass(t *testing.T) {
	html := `<aside class="quote"><p><a href="https://quoted.com">Quoted</a></p></aside>`
	links, err := extractor.Extract(html)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.True(t, links[0].InQuote)
}

func TestExtract_QuoteDetectionDivClass(t *testing.T) {
	html := `<div class="post-quote"><a href="https://quoted.com">Quoted</a></div>`
	links, err := extractor.Extract(html)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.True(t, links[0].InQuote)
}

func TestExtract_ContextSnippetFromParentParagraph(t *testing.T) {
	html := `<p>Here is some text before <a href="https://example.com">the link</a> and after.</p>`
	links, err := extractor.Extract(html)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Contains(t, links[0].ContextSnippet, "the link")
}

func TestExtract_FallsBackToLinkTextWithoutBlockAncestor(t *testing.T) {
	html := `<a href="https://example.com">bare link</a>`
	links, err := extractor.Extract(html)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "bare link", links[0].ContextSnippet)
}

func TestExtract_BodyWithoutLinksYieldsNoLinks(t *testing.T) {
	links, err := extractor.Extract(`<p>no links here</p>`)
	require.NoError(t, err)
	assert.Empty(t, links)
}
