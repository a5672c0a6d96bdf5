// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package submit implements the rate-limited Archive.today client (§4.8): a
third-party snapshot is a pointer, not a fetch — the pipeline asks
Archive.today to preserve a URL and records the snapshot it hands back.

Submissions are throttled two ways, deliberately kept together (§9): a
token bucket bounds the sustained rate, and a fixed jitter sleep is applied
to every submission regardless of bucket state, to avoid bursting the
service the instant a permit frees up.
*/
package submit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/forumvault/archiver/internal/platform/apperr"
	"github.com/forumvault/archiver/internal/platform/constants"
)

// Client is a rate-limited Archive.today submitter.
type Client struct {
	httpClient      *http.Client
	limiter         *rate.Limiter
	replenishPeriod time.Duration
	baseURL         string
	logger          *slog.Logger
}

// New constructs a [Client] admitting at most ratePerMinute submissions per
// minute (§4.8). A ratePerMinute of zero or less falls back to the default.
func New(ratePerMinute int, httpClient *http.Client) *Client {
	if ratePerMinute <= 0 {
		ratePerMinute = constants.DefaultArchiveTodayRatePerMinute
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		httpClient:      httpClient,
		limiter:         rate.NewLimiter(rate.Limit(float64(ratePerMinute)/60), ratePerMinute),
		replenishPeriod: time.Minute / time.Duration(ratePerMinute),
		baseURL:         "https://archive.today",
		logger:          slog.Default(),
	}
}

// SetLogger overrides the client's logger; New defaults to slog.Default().
func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

/*
Submit preserves rawURL on Archive.today and returns the snapshot URL (§4.8):

 1. Wait for a rate-limit token.
 2. Sleep the fixed jitter to soften bursts right after a token frees up.
 3. Check whether rawURL already has a snapshot; reuse it if so.
 4. Otherwise POST to the submission endpoint.
 5. Parse the resulting page or redirect target for the snapshot URL.
 6. Fall back to the generic lookup URL when no exact snapshot URL can be
    determined from the response.
*/
func (c *Client) Submit(ctx context.Context, rawURL string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", apperr.TransientNetwork(fmt.Errorf("submit: rate limiter: %w", err))
	}

	select {
	case <-time.After(constants.ArchiveTodaySubmitJitter):
	case <-ctx.Done():
		return "", apperr.TransientNetwork(ctx.Err())
	}

	if existing, err := c.checkExisting(ctx, rawURL); err == nil && existing != "" {
		return existing, nil
	}

	form := url.Values{"url": {rawURL}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit/", strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperr.ProgrammerErr(fmt.Errorf("submit: build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", archiveTodayUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.TransientNetwork(fmt.Errorf("submit: post: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("archive_today_rate_limited", slog.String("url", rawURL))
		select {
		case <-time.After(3 * c.replenishPeriod):
		case <-ctx.Done():
		}
		return "", nil
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("archive_today_submission_failed",
			slog.String("url", rawURL), slog.Int("status", resp.StatusCode))
		return "", nil
	}

	finalURL := resp.Request.URL.String()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.TransientNetwork(fmt.Errorf("submit: read body: %w", err))
	}

	if isSnapshotURL(finalURL) {
		return finalURL, nil
	}
	if snapshot := extractSnapshotURL(string(body)); snapshot != "" {
		return snapshot, nil
	}

	return c.baseURL + "/" + url.QueryEscape(rawURL), nil
}

// checkExisting probes Archive.today's lookup endpoint for a pre-existing
// snapshot of rawURL, returning "" (no error) when none is found.
func (c *Client) checkExisting(ctx context.Context, rawURL string) (string, error) {
	checkURL := c.baseURL + "/" + url.QueryEscape(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		return "", apperr.ProgrammerErr(fmt.Errorf("submit: build check request: %w", err))
	}
	req.Header.Set("User-Agent", archiveTodayUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.TransientNetwork(fmt.Errorf("submit: check: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", nil
	}

	finalURL := resp.Request.URL.String()
	if isSnapshotURL(finalURL) {
		return finalURL, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}
	return extractSnapshotURL(string(body)), nil
}

const archiveTodayUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// SetBaseURLForTest overrides the Archive.today base URL, for pointing the
// client at an httptest server in tests.
func (c *Client) SetBaseURLForTest(baseURL string) {
	c.baseURL = baseURL
}
