// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package feed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumvault/archiver/internal/core/feed"
)

const sampleFeed = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Test Forum</title>
    <link>https://forum.example.com</link>
    <item>
      <title>First post</title>
      <link>https://forum.example.com/t/1</link>
      <guid>g1</guid>
      <pubDate>Mon, 02 Jan 2006 15:04:05 +0000</pubDate>
      <author>alice</author>
      <description><![CDATA[<p><a href="https://www.youtube.com/watch?v=X">V</a></p><blockquote><a href="https://example.com/a">a</a></blockquote>]]></description>
    </item>
    <item>
      <title>Missing guid</title>
      <link>https://forum.example.com/t/2</link>
      <description>no guid here</description>
    </item>
  </channel>
</rss>`

func TestParseFeed_ParsesItems(t *testing.T) {
	items, err := feed.ParseFeed([]byte(sampleFeed))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "g1", items[0].GUID)
	assert.Equal(t, "alice", items[0].Author)
	assert.Contains(t, items[0].Description, "youtube.com")
}

func TestParseFeed_RejectsNonRSS(t *testing.T) {
	_, err := feed.ParseFeed([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
	assert.Error(t, err)
}

func TestParseFeed_EmptyChannelYieldsNoItems(t *testing.T) {
	items, err := feed.ParseFeed([]byte(`<rss version="2.0"><channel><title>Empty</title></channel></rss>`))
	require.NoError(t, err)
	assert.Empty(t, items)
}
