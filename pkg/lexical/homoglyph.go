package lexical

import (
	"math"
	"unicode"
)

// Homoglyph scoring policy constants. These are fixed policy, not tunables:
// changing any of them changes every historical verdict.
const (
	spoofSimilarityFloor = 0.85 // normalized similarity required to consider spoofing
	spoofSimilarityGap   = 0.05 // raw similarity must trail normalized by this much
	spoofWeight          = 80.0 // contribution of the spoofing branch, scaled by similarity
	nonASCIIPenalty      = 30.0 // flat penalty for any non-ASCII character
	digitPenaltyWeight   = 20.0 // contribution of the digit-ratio branch, scaled by ratio
	digitRatioFloor      = 0.15 // digit-to-length ratio that triggers the branch
)

// HomoglyphScore produces a 0-100 deception score for a URL against a
// trusted-domain set.
//
// The high-signal branch fires when confusable normalization materially
// increases similarity to a trusted domain: the raw hostname looks unlike
// anything trusted while its normalized form is a near-match, which is the
// signature of visual spoofing. Non-ASCII characters and digit-heavy
// hostnames add smaller penalties on top.
func HomoglyphScore(url string, trusted []string) float64 {
	host := ExtractHost(url)
	if host == "" {
		return 0.0
	}

	raw := host
	normalized := NormalizeConfusables(raw)

	// exact legitimate match, nothing to score
	if normalized == raw && containsDomain(trusted, normalized) {
		return 0.0
	}

	simNorm := BestSimilarity(normalized, trusted)
	simRaw := BestSimilarity(raw, trusted)

	score := 0.0
	if simNorm >= spoofSimilarityFloor && simRaw < simNorm-spoofSimilarityGap {
		score += spoofWeight * simNorm
	}

	if hasNonASCII(raw) {
		score += nonASCIIPenalty
	}

	if ratio := digitRatio(raw); ratio > digitRatioFloor {
		score += digitPenaltyWeight * ratio
	}

	return math.Min(100.0, math.Max(0.0, score))
}

func containsDomain(domains []string, d string) bool {
	for _, t := range domains {
		if t == d {
			return true
		}
	}
	return false
}

func hasNonASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return true
		}
	}
	return false
}

// digitRatio is digits over rune length with a max(1, len) denominator.
func digitRatio(s string) float64 {
	runes := []rune(s)
	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	denom := float64(len(runes))
	if denom < 1 {
		denom = 1
	}
	return float64(digits) / denom
}
