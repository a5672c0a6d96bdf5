// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package urlnorm canonicalizes outbound links so the dedup engine can compare
them by a single normalized key instead of byte-for-byte URL equality.

Normalize is pure and total: it never fails, and malformed input is returned
mostly unchanged (lower-cased, fragment stripped) rather than rejected.
*/
package urlnorm

import (
	"net/url"
	"sort"
	"strings"

	"github.com/forumvault/archiver/internal/platform/constants"
)

// trackingParams is a lookup set built once from constants.TrackingQueryParams.
var trackingParams = buildTrackingParamSet()

func buildTrackingParamSet() map[string]struct{} {
	set := make(map[string]struct{}, len(constants.TrackingQueryParams))
	for _, p := range constants.TrackingQueryParams {
		set[p] = struct{}{}
	}
	return set
}

// Normalize converts a raw URL into a canonical (normalizedURL, domain) pair.
//
// Rules are applied in order (§4.1):
//  1. Lower-case scheme and host.
//  2. Strip default ports (80 for http, 443 for https).
//  3. Remove the fragment.
//  4. Strip known tracking query parameters.
//  5. Sort remaining query parameters lexicographically.
//  6. Apply per-domain rewrites; strip a trailing slash unless the path is empty.
//  7. Extract domain as the host minus a leading "www.".
//
// Parse failures fall through to a best-effort lower-case + fragment-strip of
// the raw string; Normalize never returns an error.
func Normalize(rawURL string) (normalizedURL, domain string) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return fallback(rawURL), ""
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	stripDefaultPort(u)
	stripTrackingParams(u)

	host := u.Hostname()
	if rewritten, ok := constants.DomainRewrites[host]; ok {
		u.Host = replaceHost(u.Host, host, rewritten)
		host = rewritten
	}

	if u.Path != "" && u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	domain = strings.TrimPrefix(host, "www.")

	return u.String(), domain
}

func fallback(rawURL string) string {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return s
}

func stripDefaultPort(u *url.URL) {
	port := u.Port()
	if port == "" {
		return
	}
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = u.Hostname()
	}
}

func stripTrackingParams(u *url.URL) {
	query := u.Query()
	for key := range query {
		if _, tracked := trackingParams[strings.ToLower(key)]; tracked {
			query.Del(key)
		}
	}

	if len(query) == 0 {
		u.RawQuery = ""
		return
	}

	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, key := range keys {
		for j, value := range query[key] {
			if i > 0 || j > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(key))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(value))
		}
	}
	u.RawQuery = sb.String()
}

// replaceHost swaps the hostname portion of host:port (if any) for newHost.
func replaceHost(hostport, oldHost, newHost string) string {
	if hostport == oldHost {
		return newHost
	}
	return newHost + strings.TrimPrefix(hostport, oldHost)
}
