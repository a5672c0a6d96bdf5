// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package extractor parses a forum post body and emits its outbound links,
flagging which ones sit inside a quoted block and capturing a surrounding
context snippet for each.
*/
package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/forumvault/archiver/internal/platform/constants"
)

// Link is one outbound href found in a post body (§4.2).
type Link struct {
	URL            string
	InQuote        bool
	ContextSnippet string
}

// Extract parses an HTML fragment and returns its links in document order.
//
// The first occurrence of a given href wins; later identical hrefs in the
// same body are dropped. Empty, "#", "javascript:", and "mailto:" hrefs are
// skipped entirely.
func Extract(html string) ([]Link, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var links []Link
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, _ := selection.Attr("href")
		if !isCandidateHref(href) {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}

		links = append(links, Link{
			URL:            href,
			InQuote:        isInQuote(selection),
			ContextSnippet: contextSnippet(selection),
		})
	})

	return links, nil
}

func isCandidateHref(href string) bool {
	if href == "" {
		return false
	}
	switch {
	case strings.HasPrefix(href, "#"):
		return false
	case strings.HasPrefix(href, "javascript:"):
		return false
	case strings.HasPrefix(href, "mailto:"):
		return false
	}
	return true
}

// isInQuote walks up from the anchor looking for the nearest quote ancestor:
// blockquote, aside.quote, or div.quote. The first match wins.
func isInQuote(selection *goquery.Selection) bool {
	for parent := selection.Parent(); parent.Length() > 0; parent = parent.Parent() {
		tag := goquery.NodeName(parent)
		class, _ := parent.Attr("class")

		switch {
		case tag == "blockquote":
			return true
		case tag == "aside" && strings.Contains(class, "quote"):
			return true
		case tag == "div" && strings.Contains(class, "quote"):
			return true
		}
	}
	return false
}

// contextSnippet walks up to the nearest p/li/div ancestor and extracts its
// text, truncating around the link's own text when the ancestor is long.
func contextSnippet(selection *goquery.Selection) string {
	linkText := strings.TrimSpace(selection.Text())

	for parent := selection.Parent(); parent.Length() > 0; parent = parent.Parent() {
		tag := goquery.NodeName(parent)
		if tag != "p" && tag != "li" && tag != "div" {
			continue
		}

		full := collapseWhitespace(parent.Text())
		if full == "" {
			break
		}
		if len(full) <= constants.ContextSnippetMaxLen {
			return full
		}
		return truncateAround(full, linkText, constants.ContextSnippetWindow)
	}

	return linkText
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.TrimSpace(strings.Join(fields, " "))
}

// truncateAround centers a window of contextChars on each side of target
// inside text, prefixing/suffixing ellipsis markers when truncated.
func truncateAround(text, target string, contextChars int) string {
	idx := strings.Index(text, target)
	if idx < 0 {
		end := min(contextChars, len(text))
		result := text[:end]
		if end < len(text) {
			result += "..."
		}
		return result
	}

	start := idx - contextChars
	if start < 0 {
		start = 0
	}
	end := idx + len(target) + contextChars
	if end > len(text) {
		end = len(text)
	}

	var sb strings.Builder
	if start > 0 {
		sb.WriteString("...")
	}
	sb.WriteString(text[start:end])
	if end < len(text) {
		sb.WriteString("...")
	}
	return sb.String()
}
