// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/forumvault/archiver/internal/core/dedup"
	"github.com/forumvault/archiver/internal/platform/apperr"
	"github.com/forumvault/archiver/internal/platform/database/schema"
)

// fetcher is the narrow HTTP surface every handler needs; satisfied by
// *http.Client.
type fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

func fetchBytes(ctx context.Context, client fetcher, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", apperr.ProgrammerErr(fmt.Errorf("registry: build request: %w", err))
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; forum-archiver/1.0)")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", apperr.TransientNetwork(fmt.Errorf("registry: fetch %s: %w", rawURL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil, "", apperr.PermanentNetwork(fmt.Errorf("registry: %s returned %d", rawURL, resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return nil, "", apperr.TransientNetwork(fmt.Errorf("registry: %s returned %d", rawURL, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", apperr.TransientNetwork(fmt.Errorf("registry: read body: %w", err))
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// # generic_html — the catch-all

// GenericHTMLHandler fetches a page body verbatim and stores it as the
// primary HTML artifact. It is the registry's fallback handler.
type GenericHTMLHandler struct {
	Client fetcher
}

func (h *GenericHTMLHandler) Name() string { return "generic_html" }

func (h *GenericHTMLHandler) Matches(string, string) bool { return true }

func (h *GenericHTMLHandler) Run(ctx context.Context, job JobContext, rawURL string) (Result, error) {
	body, contentType, err := fetchBytes(ctx, h.Client, rawURL)
	if err != nil {
		return Result{}, err
	}
	if job.OnProgress != nil {
		job.OnProgress(100, "fetched")
	}

	return Result{
		Artifacts: []Artifact{{
			Kind:        schema.KindHTML,
			Bytes:       body,
			ContentType: firstNonEmpty(contentType, "text/html"),
		}},
		MediaType:     "text/html",
		ArtifactIndex: map[string]string{schema.KindHTML: sha256Hex(body)},
	}, nil
}

// # image_gallery

// DuplicateIndex is the write-through cache consulted before the Postgres
// dedup scan (§6) — satisfied by [dedup.Cache].
type DuplicateIndex interface {
	Lookup(ctx context.Context, hash string) (value string, found bool, err error)
	Store(ctx context.Context, hash, value string) error
}

// DuplicateScanner is the cache-miss fallback: a bounded scan over existing
// artifacts' perceptual hashes (§4.4, §6) — satisfied by
// [artifact.Repository].
type DuplicateScanner interface {
	FindDuplicateByPerceptualHash(ctx context.Context, hash string) (value string, found bool, err error)
}

// ImageGalleryHandler downloads an image and records its perceptual hash
// alongside the raw bytes, for dedup lookups (C4). Dedup/Artifacts are
// optional; a nil one skips that tier of the lookup.
type ImageGalleryHandler struct {
	Client     fetcher
	Extensions []string
	Dedup      DuplicateIndex
	Artifacts  DuplicateScanner
}

func (h *ImageGalleryHandler) Name() string { return "image_gallery" }

func (h *ImageGalleryHandler) Matches(rawURL, _ string) bool {
	lower := strings.ToLower(rawURL)
	exts := h.Extensions
	if len(exts) == 0 {
		exts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	}
	for _, ext := range exts {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

func (h *ImageGalleryHandler) Run(ctx context.Context, job JobContext, rawURL string) (Result, error) {
	body, contentType, err := fetchBytes(ctx, h.Client, rawURL)
	if err != nil {
		return Result{}, err
	}

	phash, err := dedup.ComputeImageHash(body)
	if err != nil {
		phash = ""
	}

	hints := map[string]string{"perceptual_hash": phash}
	if phash != "" {
		if duplicateOf := h.findDuplicate(ctx, phash); duplicateOf != "" {
			hints["duplicate_of"] = duplicateOf
		}
	}

	if job.OnProgress != nil {
		job.OnProgress(100, "hashed")
	}

	return Result{
		Artifacts: []Artifact{{
			Kind:        schema.KindThumbnail,
			Bytes:       body,
			ContentType: firstNonEmpty(contentType, "image/jpeg"),
			Hints:       hints,
		}},
		MediaType:     "image",
		ArtifactIndex: map[string]string{schema.KindThumbnail: sha256Hex(body)},
	}, nil
}

// findDuplicate checks the Redis cache before falling back to the Postgres
// perceptual-hash scan (§6), writing the result back to the cache either way
// so a repeat of this hash is a cache hit next time.
func (h *ImageGalleryHandler) findDuplicate(ctx context.Context, phash string) string {
	if h.Dedup != nil {
		if value, found, err := h.Dedup.Lookup(ctx, phash); err == nil && found {
			return value
		}
	}

	if h.Artifacts != nil {
		if value, found, err := h.Artifacts.FindDuplicateByPerceptualHash(ctx, phash); err == nil && found {
			if h.Dedup != nil {
				_ = h.Dedup.Store(ctx, phash, value)
			}
			return value
		}
	}

	if h.Dedup != nil {
		_ = h.Dedup.Store(ctx, phash, phash)
	}
	return ""
}

// # pdf_document

// PDFDocumentHandler stores a PDF byte-for-byte.
type PDFDocumentHandler struct {
	Client fetcher
}

func (h *PDFDocumentHandler) Name() string { return "pdf_document" }

func (h *PDFDocumentHandler) Matches(rawURL, _ string) bool {
	return strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
}

func (h *PDFDocumentHandler) Run(ctx context.Context, job JobContext, rawURL string) (Result, error) {
	body, _, err := fetchBytes(ctx, h.Client, rawURL)
	if err != nil {
		return Result{}, err
	}
	if job.OnProgress != nil {
		job.OnProgress(100, "downloaded")
	}
	return Result{
		Artifacts: []Artifact{{
			Kind:        schema.KindPDF,
			Bytes:       body,
			ContentType: "application/pdf",
		}},
		MediaType:     "application/pdf",
		ArtifactIndex: map[string]string{schema.KindPDF: sha256Hex(body)},
	}, nil
}

// # video_with_subtitles

// SubtitleParser is a pure function converting a raw subtitle track (SRT,
// WebVTT) into a plain-text transcript. Out of core scope per §1; injected
// so the handler can call it without owning the parsing logic.
type SubtitleParser func(track []byte) (string, error)

// VideoDownloader fetches a video's media bytes and, if present, its
// subtitle track. Out of core scope per §1 — the real implementation shells
// out to a media-extraction tool; this is the seam the handler calls through.
type VideoDownloader func(ctx context.Context, rawURL string) (video []byte, subtitleTrack []byte, err error)

// VideoWithSubtitlesHandler produces a video artifact plus, when a subtitle
// track is available, a transcript artifact.
type VideoWithSubtitlesHandler struct {
	Matcher    func(rawURL, domain string) bool
	Download   VideoDownloader
	ParseSubs  SubtitleParser
}

func (h *VideoWithSubtitlesHandler) Name() string { return "video_with_subtitles" }

func (h *VideoWithSubtitlesHandler) Matches(rawURL, domain string) bool {
	if h.Matcher != nil {
		return h.Matcher(rawURL, domain)
	}
	return false
}

func (h *VideoWithSubtitlesHandler) Run(ctx context.Context, job JobContext, rawURL string) (Result, error) {
	video, subtitles, err := h.Download(ctx, rawURL)
	if err != nil {
		return Result{}, err
	}
	if job.OnProgress != nil {
		job.OnProgress(60, "downloaded")
	}

	artifacts := []Artifact{{Kind: schema.KindVideo, Bytes: video, ContentType: "video/mp4"}}
	index := map[string]string{schema.KindVideo: sha256Hex(video)}

	if len(subtitles) > 0 && h.ParseSubs != nil {
		transcript, err := h.ParseSubs(subtitles)
		if err == nil && transcript != "" {
			artifacts = append(artifacts, Artifact{
				Kind:        schema.KindTranscript,
				Bytes:       []byte(transcript),
				ContentType: "text/plain",
			})
			index[schema.KindTranscript] = sha256Hex([]byte(transcript))
		}
	}
	if job.OnProgress != nil {
		job.OnProgress(100, "complete")
	}

	return Result{Artifacts: artifacts, MediaType: "video", ArtifactIndex: index}, nil
}

// # social_post / social_comments_api — headless-browser collaborator

// HeadlessBrowser is the out-of-scope external collaborator (§6): a
// CLI-style command accepting a URL, a cloned user-data directory, and a
// timeout, whose stdout is the rendered DOM.
type HeadlessBrowser struct {
	BinaryPath    string
	UserDataDir   string
	Timeout       time.Duration
}

// Render shells out to the headless-browser helper and returns its stdout.
func (b *HeadlessBrowser) Render(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.BinaryPath, "--url", rawURL, "--user-data-dir", b.UserDataDir)
	out, err := cmd.Output()
	if err != nil {
		return nil, apperr.TransientNetwork(fmt.Errorf("registry: headless render %s: %w", rawURL, err))
	}
	return out, nil
}

// SocialPostHandler renders an authenticated social-network permalink via
// the headless-browser helper and stores the resulting DOM dump.
// Non-goal per §1: it never logs in itself, only invokes the helper.
type SocialPostHandler struct {
	Matcher  func(rawURL, domain string) bool
	Browser  *HeadlessBrowser
}

func (h *SocialPostHandler) Name() string { return "social_post" }

func (h *SocialPostHandler) Matches(rawURL, domain string) bool {
	if h.Matcher != nil {
		return h.Matcher(rawURL, domain)
	}
	return false
}

func (h *SocialPostHandler) Run(ctx context.Context, job JobContext, rawURL string) (Result, error) {
	dom, err := h.Browser.Render(ctx, rawURL)
	if err != nil {
		return Result{}, err
	}
	if job.OnProgress != nil {
		job.OnProgress(100, "rendered")
	}
	return Result{
		Artifacts:     []Artifact{{Kind: schema.KindDOMDump, Bytes: dom, ContentType: "text/html"}},
		MediaType:     "text/html",
		ArtifactIndex: map[string]string{schema.KindDOMDump: sha256Hex(dom)},
	}, nil
}

// CommentsFetcher retrieves a platform's comment tree via its public API.
type CommentsFetcher func(ctx context.Context, rawURL string) ([]byte, error)

// SocialCommentsAPIHandler dumps a platform's comment tree via its public
// JSON API (e.g. the Reddit/Discourse comments endpoint).
type SocialCommentsAPIHandler struct {
	Matcher func(rawURL, domain string) bool
	Fetch   CommentsFetcher
}

func (h *SocialCommentsAPIHandler) Name() string { return "social_comments_api" }

func (h *SocialCommentsAPIHandler) Matches(rawURL, domain string) bool {
	if h.Matcher != nil {
		return h.Matcher(rawURL, domain)
	}
	return false
}

func (h *SocialCommentsAPIHandler) Run(ctx context.Context, job JobContext, rawURL string) (Result, error) {
	dump, err := h.Fetch(ctx, rawURL)
	if err != nil {
		return Result{}, err
	}
	if job.OnProgress != nil {
		job.OnProgress(100, "fetched")
	}
	return Result{
		Artifacts:     []Artifact{{Kind: schema.KindComments, Bytes: dump, ContentType: "application/json"}},
		MediaType:     "application/json",
		ArtifactIndex: map[string]string{schema.KindComments: sha256Hex(dump)},
	}, nil
}

// # third_party_snapshot

// Submitter is the narrow surface the handler needs from the Archive.today
// client (C7): submit a URL and get back a snapshot pointer.
type Submitter interface {
	Submit(ctx context.Context, rawURL string) (snapshotURL string, err error)
}

// ThirdPartySnapshotHandler records an Archive.today pointer instead of
// fetching the content itself — used for sites the pipeline prefers to
// delegate preservation to (paywalled news, volatile pages).
type ThirdPartySnapshotHandler struct {
	Matcher   func(rawURL, domain string) bool
	Submitter Submitter
}

func (h *ThirdPartySnapshotHandler) Name() string { return "third_party_snapshot" }

func (h *ThirdPartySnapshotHandler) Matches(rawURL, domain string) bool {
	if h.Matcher != nil {
		return h.Matcher(rawURL, domain)
	}
	return false
}

func (h *ThirdPartySnapshotHandler) Run(ctx context.Context, job JobContext, rawURL string) (Result, error) {
	snapshotURL, err := h.Submitter.Submit(ctx, rawURL)
	if err != nil {
		return Result{}, err
	}
	if job.OnProgress != nil {
		job.OnProgress(100, "submitted")
	}
	pointer := []byte(snapshotURL)
	return Result{
		Artifacts:     []Artifact{{Kind: schema.KindThirdPartyPoint, Bytes: pointer, ContentType: "text/plain"}},
		MediaType:     "text/plain",
		ArtifactIndex: map[string]string{schema.KindThirdPartyPoint: sha256Hex(pointer)},
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
