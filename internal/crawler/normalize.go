// Package crawler implements the breadth-first crawl engine: URL
// normalization, the frontier, and the orchestrator that drives fetching,
// extraction, and link discovery under page and depth budgets.
package crawler

import (
	"net/url"
	"strings"
)

// nonNavigational lists href schemes that never lead to a crawlable page.
var nonNavigational = []string{"mailto:", "tel:", "javascript:"}

// Normalize canonicalizes a candidate href discovered on a page: it resolves
// relative references against base, strips the fragment, and rejects empty
// input, non-navigational schemes, pure in-page fragments, and anything that
// does not resolve to http or https. ok is false when the candidate should
// be discarded. Normalize never panics on malformed input.
func Normalize(base *url.URL, candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || strings.HasPrefix(candidate, "#") {
		return "", false
	}

	lower := strings.ToLower(candidate)
	for _, scheme := range nonNavigational {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	ref, err := url.Parse(candidate)
	if err != nil {
		return "", false
	}

	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if resolved.Host == "" {
		return "", false
	}

	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String(), true
}

// SameDomain reports whether rawURL's host matches domain exactly. Hosts are
// compared case-insensitively and include the port; subdomains are distinct.
func SameDomain(rawURL, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Host != "" && strings.EqualFold(parsed.Host, domain)
}
