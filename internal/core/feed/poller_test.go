// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package feed_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumvault/archiver/internal/core/feed"
)

type fakeFeedRepository struct {
	seenGUIDs map[string]bool
	ingested  []*feed.Post
	links     map[string][]feed.ExtractedLink
}

func newFakeFeedRepository() *fakeFeedRepository {
	return &fakeFeedRepository{
		seenGUIDs: map[string]bool{},
		links:     map[string][]feed.ExtractedLink{},
	}
}

func (r *fakeFeedRepository) PostExists(_ context.Context, guid string) (bool, error) {
	return r.seenGUIDs[guid], nil
}

func (r *fakeFeedRepository) IngestPost(_ context.Context, post *feed.Post, links []feed.ExtractedLink) (int, error) {
	r.seenGUIDs[post.GUID] = true
	r.ingested = append(r.ingested, post)
	r.links[post.GUID] = links
	return len(links), nil
}

func (r *fakeFeedRepository) FindLinkByID(_ context.Context, id string) (*feed.Link, error) {
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPollOnce_FirstTimePollTwoLinksOneQuoted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	repo := newFakeFeedRepository()
	poller := feed.NewPoller(repo, server.Client(), server.URL, time.Minute, testLogger())

	result, err := poller.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewPosts)
	assert.Equal(t, 2, result.NewLinks)

	links := repo.links["g1"]
	require.Len(t, links, 2)
	assert.False(t, links[0].InQuote)
	assert.True(t, links[1].InQuote)
}

func TestPollOnce_SecondPollIsNoOp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	repo := newFakeFeedRepository()
	poller := feed.NewPoller(repo, server.Client(), server.URL, time.Minute, testLogger())

	_, err := poller.PollOnce(context.Background())
	require.NoError(t, err)

	result, err := poller.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.NewPosts)
}

func TestPollOnce_EmptyFeedInsertsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<rss version="2.0"><channel><title>Empty</title></channel></rss>`))
	}))
	defer server.Close()

	repo := newFakeFeedRepository()
	poller := feed.NewPoller(repo, server.Client(), server.URL, time.Minute, testLogger())

	result, err := poller.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.NewPosts)
	assert.Empty(t, repo.ingested)
}

func TestPollOnce_FetchFailureReturnsErrorNotPanic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := newFakeFeedRepository()
	poller := feed.NewPoller(repo, server.Client(), server.URL, time.Minute, testLogger())

	_, err := poller.PollOnce(context.Background())
	assert.Error(t, err)
}
