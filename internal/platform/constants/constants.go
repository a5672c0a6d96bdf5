// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the ops HTTP surface.
  - Rate Limiting: Burst capacities and IP tracking TTLs for the ops surface.
  - Pipeline: Worker backoff, Archive.today pacing, snapshot host list.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "forum-archiver"
	AppVersion = "0.1.0-dev"
)

// # Server Timing (ops HTTP surface)

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests/workers to
	// finish their current step during graceful shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting (ops HTTP surface)

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP by middleware.RateLimit.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # HTTP Header Names

const (
	HeaderXRequestID     = "X-Request-ID"
	HeaderXRealIP        = "X-Real-IP"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderOrigin         = "Origin"
)

// # Database Schema

const (
	SchemaArchive = "archive"
)

// # Redis Key Prefixes (Cache Taxonomy)

const (
	// RedisPrefixPHash namespaces the perceptual-hash duplicate-lookup index
	// consulted by the dedup engine (C4) before falling back to a Postgres scan.
	RedisPrefixPHash = "dedup:phash:"
)

// # Pipeline Defaults

const (
	// DefaultWorkerCount is the number of cooperative workers in the pool (C6).
	DefaultWorkerCount = 4

	// DefaultPerDomainConcurrency caps concurrent in-flight jobs per host.
	DefaultPerDomainConcurrency = 2

	// DefaultClaimBackoff is how long an idle worker sleeps after finding
	// the queue empty before calling claim_next again.
	DefaultClaimBackoff = 2 * time.Second

	// DefaultHandlerTimeout is the per-job deadline wrapping a handler invocation.
	DefaultHandlerTimeout = 10 * time.Minute

	// DefaultHTTPRequestTimeout bounds any single outbound HTTP request made
	// by a handler or the submitter.
	DefaultHTTPRequestTimeout = 45 * time.Second

	// ProgressCoalesceInterval bounds update_progress call frequency to at
	// most once per this duration...
	ProgressCoalesceInterval = 10 * time.Second

	// ProgressCoalesceItems is the alternate bound: at most once per this
	// many processed sub-items, whichever comes first.
	ProgressCoalesceItems = 250

	// BackoffBase is the exponential backoff base (attempt_count exponent).
	BackoffBase = 2 * time.Second

	// BackoffCap is the maximum backoff delay between retry attempts.
	BackoffCap = 24 * time.Hour

	// DefaultMaxAttempts is the attempt_count ceiling beyond which a failed
	// archive is considered non-retriable.
	DefaultMaxAttempts = 8

	// DefaultArchiveTodayRatePerMinute is the token-bucket capacity R for
	// the Archive.today submitter (replenishment period is 60s/R).
	DefaultArchiveTodayRatePerMinute = 3

	// ArchiveTodaySubmitJitter is the soft-throttling sleep applied before
	// every submission, independent of the token bucket (see §9 design note).
	ArchiveTodaySubmitJitter = 500 * time.Millisecond

	// DefaultRetentionDays is how long audit-event rows are kept by the
	// cleanup worker (C8) before deletion.
	DefaultRetentionDays = 90

	// DefaultCleanupInterval is how often the cleanup worker runs after its
	// initial startup pass.
	DefaultCleanupInterval = 1 * time.Hour

	// DedupHashThreshold is the Hamming-distance threshold at or below which
	// two perceptual hashes are considered duplicates.
	DedupHashThreshold = 10

	// LastErrorTruncateLen bounds the stored/displayed length of Archive.last_error.
	LastErrorTruncateLen = 512

	// ContextSnippetMaxLen is the untruncated context_snippet length ceiling (§4.2).
	ContextSnippetMaxLen = 500

	// ContextSnippetWindow is the half-width of the truncation window
	// centered on the link's text when the ancestor text exceeds the ceiling.
	ContextSnippetWindow = 250
)

// ArchiveTodaySnapshotHosts enumerates the known Archive.today mirror hosts
// recognized by the snapshot-URL matcher (§4.8).
var ArchiveTodaySnapshotHosts = []string{
	"archive.today",
	"archive.ph",
	"archive.is",
	"archive.li",
	"archive.vn",
	"archive.md",
}

// ArchiveTodayReservedPaths are path segments on a snapshot host that are
// never a snapshot hash, even where they pass the 5-10 alphanumeric check.
var ArchiveTodayReservedPaths = []string{
	"submit",
	"search",
	"about",
	"faq",
	"timegate",
}

// ThirdPartySnapshotDomains are hosts the registry (C10) routes to the
// Archive.today submitter (C7) rather than fetching directly — paywalled or
// volatile pages where delegating preservation is more reliable than a
// direct GET.
var ThirdPartySnapshotDomains = []string{
	"nytimes.com",
	"wsj.com",
	"ft.com",
	"bloomberg.com",
	"washingtonpost.com",
	"economist.com",
}

// TrackingQueryParams are query parameters stripped during URL normalization (§4.1).
var TrackingQueryParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"utm_id", "utm_name", "utm_referrer",
	"fbclid", "gclid", "gclsrc", "dclid", "msclkid",
	"ref", "ref_src", "ref_url", "igshid", "mc_cid", "mc_eid",
	"spm", "si",
}

// DomainRewrites maps a host to its canonical replacement (§4.1 rule 6).
var DomainRewrites = map[string]string{
	"www.reddit.com": "old.reddit.com",
	"m.reddit.com":   "old.reddit.com",
	"np.reddit.com":  "old.reddit.com",
}
