// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/forumvault/archiver/internal/core/extractor"
	"github.com/forumvault/archiver/internal/core/urlnorm"
	"github.com/forumvault/archiver/internal/platform/apperr"
)

// # Poller

// Poller runs the feed ingestion loop forever at a configured cadence (§4.3).
type Poller struct {
	repo       Repository
	httpClient *http.Client
	feedURL    string
	interval   time.Duration
	logger     *slog.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	refreshCh chan struct{}
}

// NewPoller constructs a feed [Poller]. httpClient is shared, process-wide,
// connection-pooled (§5).
func NewPoller(repo Repository, httpClient *http.Client, feedURL string, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		repo:       repo,
		httpClient: httpClient,
		feedURL:    feedURL,
		interval:   interval,
		logger:     logger,
		refreshCh:  make(chan struct{}, 1),
	}
}

// Start begins the background polling loop; it returns immediately.
func (poller *Poller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	poller.cancel = cancel

	poller.wg.Add(1)
	go poller.loop(ctx)
}

// Stop signals the loop to exit and waits for the in-flight cycle to finish.
func (poller *Poller) Stop() {
	if poller.cancel != nil {
		poller.cancel()
	}
	poller.wg.Wait()
}

// RefreshNow requests an out-of-cadence poll cycle; a pending request is
// coalesced if one is already queued.
func (poller *Poller) RefreshNow() {
	select {
	case poller.refreshCh <- struct{}{}:
	default:
	}
}

func (poller *Poller) loop(ctx context.Context) {
	defer poller.wg.Done()

	poller.runCycle(ctx)

	ticker := time.NewTicker(poller.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poller.runCycle(ctx)
		case <-poller.refreshCh:
			poller.runCycle(ctx)
		}
	}
}

func (poller *Poller) runCycle(ctx context.Context) {
	result, err := poller.PollOnce(ctx)
	if err != nil {
		poller.logger.Error("feed_poll_failed", slog.String("error", err.Error()))
		return
	}
	if result.NewPosts > 0 {
		poller.logger.Info("feed_poll_completed",
			slog.Int("new_posts", result.NewPosts),
			slog.Int("new_links", result.NewLinks),
		)
	}
}

/*
PollOnce runs a single poll cycle (§4.3):
 1. Fetch the feed body.
 2. For each item, skip if its GUID is already known.
 3. Otherwise extract links, normalize them, and ingest post+links+occurrences+
    pending archives in one transaction.

Fetch and parse failures fail the cycle, not the process — the error is
returned for the caller to log; the next tick tries again.
*/
func (poller *Poller) PollOnce(ctx context.Context) (PollResult, error) {
	body, err := poller.fetch(ctx)
	if err != nil {
		return PollResult{}, err
	}

	items, err := ParseFeed(body)
	if err != nil {
		return PollResult{}, apperr.ParseErr(fmt.Errorf("feed: parse RSS: %w", err))
	}

	var result PollResult
	for _, item := range items {
		exists, err := poller.repo.PostExists(ctx, item.GUID)
		if err != nil {
			return result, err
		}
		if exists {
			continue
		}

		extracted, err := extractor.Extract(item.Description)
		if err != nil {
			poller.logger.Warn("link_extraction_failed",
				slog.String("guid", item.GUID), slog.String("error", err.Error()))
			extracted = nil
		}

		links := make([]ExtractedLink, 0, len(extracted))
		for _, link := range extracted {
			normalized, domain := urlnorm.Normalize(link.URL)
			links = append(links, ExtractedLink{
				OriginalURL:    link.URL,
				NormalizedURL:  normalized,
				Domain:         domain,
				InQuote:        link.InQuote,
				ContextSnippet: link.ContextSnippet,
			})
		}

		post := &Post{
			GUID:        item.GUID,
			SourceURL:   item.Link,
			Author:      item.Author,
			Title:       item.Title,
			BodyHTML:    item.Description,
			ContentHash: contentHash(item.Description),
			PublishedAt: item.Published,
		}

		newLinks, err := poller.repo.IngestPost(ctx, post, links)
		if err != nil {
			return result, err
		}

		result.NewPosts++
		result.NewLinks += newLinks
	}

	return result, nil
}

func (poller *Poller) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, poller.feedURL, nil)
	if err != nil {
		return nil, apperr.ProgrammerErr(fmt.Errorf("feed: build request: %w", err))
	}
	req.Header.Set("User-Agent", "forum-archiver/1.0 (+https://github.com/forumvault/archiver)")

	resp, err := poller.httpClient.Do(req)
	if err != nil {
		return nil, apperr.TransientNetwork(fmt.Errorf("feed: fetch: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, apperr.TransientNetwork(fmt.Errorf("feed: unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.TransientNetwork(fmt.Errorf("feed: read body: %w", err))
	}
	return body, nil
}

func contentHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
