// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forumvault/archiver/internal/submit"
)

func TestClient_Submit_ReturnsSnapshotFromResponseBody(t *testing.T) {
	var lookupCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			lookupCalls++
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost:
			_, _ = w.Write([]byte(`<link rel="canonical" href="https://archive.today/Zz9Yy8">`))
		}
	}))
	defer server.Close()

	client := submit.New(60, server.Client())
	client.SetBaseURLForTest(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snapshot, err := client.Submit(ctx, "https://example.com/article")
	require.NoError(t, err)
	assert.Equal(t, "https://archive.today/Zz9Yy8", snapshot)
	assert.GreaterOrEqual(t, lookupCalls, 1)
}

func TestClient_Submit_FallsBackToLookupURLWhenNoSnapshotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPost:
			_, _ = w.Write([]byte(`no archive link here`))
		}
	}))
	defer server.Close()

	client := submit.New(60, server.Client())
	client.SetBaseURLForTest(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snapshot, err := client.Submit(ctx, "https://example.com/article")
	require.NoError(t, err)
	assert.Contains(t, snapshot, server.URL)
}

func TestClient_Submit_RateLimitedResponseReturnsNoSnapshotNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	// High rate so the 3x-replenish-period backoff sleep stays short in test.
	client := submit.New(6000, server.Client())
	client.SetBaseURLForTest(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snapshot, err := client.Submit(ctx, "https://example.com/article")
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}
