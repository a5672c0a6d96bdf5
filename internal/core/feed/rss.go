// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"html"
	"strings"
	"time"
)

// # RSS 2.0 Wire Format

// Item is one <item> entry from an RSS 2.0 channel, after basic cleanup.
//
// Non-conforming items (missing guid or link) are dropped by [ParseFeed]
// rather than failing the whole parse — parsing never fails on a single bad
// item (§6).
type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Author      string
	Published   time.Time
}

type rssRoot struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Link  string    `xml:"link"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Author      string `xml:"author"`
	Creator     string `xml:"http://purl.org/dc/elements/1.1/ creator"`
}

// ParseFeed parses an RSS 2.0 document. Restricted to RSS 2.0 per §6; Atom
// and RDF feeds are out of scope.
func ParseFeed(data []byte) ([]Item, error) {
	data = bytes.TrimPrefix(data, []byte{0xef, 0xbb, 0xbf})

	var root rssRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.XMLName.Local != "rss" {
		return nil, errors.New("feed: not an RSS 2.0 document")
	}

	items := make([]Item, 0, len(root.Channel.Items))
	for _, raw := range root.Channel.Items {
		guid := strings.TrimSpace(raw.GUID)
		link := strings.TrimSpace(raw.Link)
		if guid == "" || link == "" {
			continue
		}

		items = append(items, Item{
			GUID:        guid,
			Title:       cleanText(raw.Title),
			Link:        link,
			Description: raw.Description,
			Author:      firstNonEmpty(raw.Author, raw.Creator),
			Published:   parseDate(raw.PubDate),
		})
	}

	return items, nil
}

func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var pubDateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, format := range pubDateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
