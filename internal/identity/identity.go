// Package identity derives the stable fingerprint that the whole pipeline
// keys on: dedup, upserts, and point lookups all use the same id.
//
// The fingerprint is the full 64-character sha256 hex digest. An earlier
// generation of this pipeline truncated the digest to 16 characters; that
// scheme is unsupported here, so databases written with it will re-insert
// jobs under full-length ids rather than match the old rows.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"github.com/dmillar/jobpulse/internal/model"
)

// Tracking query parameters stripped during canonicalization. Any key with
// a "utm_" prefix is stripped as well.
var trackingParams = map[string]bool{
	"utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_term": true, "utm_content": true,
	"ref": true, "src": true, "source": true,
	"referrer": true, "referer": true,
	"fbclid": true, "gclid": true,
	"_ga": true, "_gid": true, "_gac": true,
	"mc_cid": true, "mc_eid": true, "mkt_tok": true,
	"igshid": true, "twclid": true,
}

// CanonicalizeURL normalizes a URL for identity derivation: lower-cases the
// scheme and host, trims trailing slashes from the path, drops the fragment
// and all tracking parameters, and re-encodes the remaining query in sorted
// order. The result is stable under re-canonicalization.
//
// Unparsable input is returned trimmed but otherwise untouched; a garbage
// URL still contributes deterministically to the fingerprint.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	u.Fragment = ""

	q := u.Query()
	filtered := url.Values{}
	for k, vals := range q {
		lk := strings.ToLower(k)
		if trackingParams[lk] || strings.HasPrefix(lk, "utm_") {
			continue
		}
		for _, v := range vals {
			if v == "" {
				continue
			}
			filtered.Add(k, v)
		}
	}
	for k := range filtered {
		sort.Strings(filtered[k])
	}
	u.RawQuery = filtered.Encode()

	return u.String()
}

// MakeJobID returns the sha256 hex fingerprint of the normalized
// (company, title, canonical URL) triple. Identical triples always collide
// to the same id; that collision is the sole deduplication signal.
func MakeJobID(company, title, rawURL string) string {
	c := strings.ToLower(strings.TrimSpace(company))
	t := strings.ToLower(strings.TrimSpace(title))
	u := CanonicalizeURL(rawURL)

	sum := sha256.Sum256([]byte(c + "|" + t + "|" + u))
	return hex.EncodeToString(sum[:])
}

// Deduplicate removes exact-fingerprint duplicates in a single pass,
// keeping the first occurrence in input order.
func Deduplicate(jobs []model.Job) []model.Job {
	seen := make(map[string]bool, len(jobs))
	unique := make([]model.Job, 0, len(jobs))
	for _, job := range jobs {
		if seen[job.JobID] {
			continue
		}
		seen[job.JobID] = true
		unique = append(unique, job)
	}
	return unique
}
