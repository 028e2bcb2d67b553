// Package lexical implements the URL risk scoring primitives: hostname
// canonicalization, confusable-character normalization, string similarity,
// deterministic feature extraction, and the homoglyph deception score.
//
// Everything in this package is pure and allocation-light. Functions never
// return errors: malformed input degrades to an empty hostname or a neutral
// feature value so that scoring can always proceed.
package lexical

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ExtractHost canonicalizes the hostname portion of an arbitrary URL-like
// string: NFC-normalize, lowercase, strip a leading http:// or https://
// scheme, truncate at the first path separator, drop a userinfo prefix,
// and drop a trailing :port (IPv6 bracket literals included).
// Unparseable input yields "" rather than an error.
func ExtractHost(raw string) string {
	host := norm.NFC.String(strings.TrimSpace(raw))
	if host == "" {
		return ""
	}
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	// userinfo hides the real host behind a trusted-looking prefix
	// (http://paypal.com@evil.com); only what follows the last @ is the host
	if i := strings.LastIndexByte(host, '@'); i >= 0 {
		host = host[i+1:]
	}
	if strings.HasPrefix(host, "[") {
		// IPv6 literal: the address sits between the brackets
		if i := strings.IndexByte(host, ']'); i >= 0 {
			return host[1:i]
		}
		return host[1:]
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}

// Labels splits a hostname into its dot-separated label segments.
func Labels(host string) []string {
	if host == "" {
		return nil
	}
	return strings.Split(host, ".")
}

// SecondLevelLabel returns the label immediately left of the top-level
// domain ("paypal" in "paypal.com"). Single-label hosts return the label
// itself; an empty host returns "".
func SecondLevelLabel(host string) string {
	parts := Labels(host)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[len(parts)-2]
	}
}
