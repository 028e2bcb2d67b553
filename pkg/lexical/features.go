package lexical

import (
	"math"
	"unicode"

	"golang.org/x/net/idna"
)

// SchemaVersion identifies the feature layout below. A classifier artifact
// must declare the same version or the adapter refuses to use it; bump this
// whenever a field is added, removed, or reordered.
const SchemaVersion = 1

// trustedDistanceSentinel is reported when no trusted domains are available
// to compute a minimum edit distance against.
const trustedDistanceSentinel = 999

// suspiciousTLDs is the fixed denylist of top-level domains that correlate
// strongly with throwaway phishing infrastructure.
var suspiciousTLDs = map[string]struct{}{
	".zip":     {},
	".top":     {},
	".xyz":     {},
	".country": {},
	".info":    {},
	".icu":     {},
	".loan":    {},
}

// substitutions is the digit/letter look-alike table used for the
// homoglyph_subs feature. This is deliberately distinct from the confusable
// map: it counts characters commonly swapped in either direction
// (paypa1.com, g00gle.com) rather than rewriting them.
var substitutions = map[rune]struct{}{
	'0': {}, '1': {}, '3': {}, '4': {}, '5': {}, '7': {}, '8': {},
	'l': {}, 'o': {}, 'i': {}, 's': {}, 'a': {},
}

// FeatureVector is the fixed-schema numeric input a classifier is trained
// against. Field order here matches Columns() and the training export;
// the JSON tags are the canonical column names.
type FeatureVector struct {
	LenDomain          float64 `json:"len_domain"`
	NumParts           float64 `json:"num_parts"`
	TLDSuspicious      float64 `json:"tld_suspicious"`
	NonASCIICount      float64 `json:"non_ascii_count"`
	HomoglyphSubs      float64 `json:"homoglyph_subs"`
	PunycodeDiff       float64 `json:"punycode_diff"`
	LevenshteinTrusted float64 `json:"levenshtein_min_trusted"`
	Entropy            float64 `json:"entropy"`
	DigitRatio         float64 `json:"digit_ratio"`
	AlphaRatio         float64 `json:"alpha_ratio"`
}

// Columns returns the canonical feature column names in schema order.
func Columns() []string {
	return []string{
		"len_domain",
		"num_parts",
		"tld_suspicious",
		"non_ascii_count",
		"homoglyph_subs",
		"punycode_diff",
		"levenshtein_min_trusted",
		"entropy",
		"digit_ratio",
		"alpha_ratio",
	}
}

// Values returns the feature values in Columns() order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.LenDomain,
		v.NumParts,
		v.TLDSuspicious,
		v.NonASCIICount,
		v.HomoglyphSubs,
		v.PunycodeDiff,
		v.LevenshteinTrusted,
		v.Entropy,
		v.DigitRatio,
		v.AlphaRatio,
	}
}

// AsMap returns the vector keyed by canonical column name. The classifier
// adapter uses this form for column alignment against an artifact's
// expected ordering.
func (v FeatureVector) AsMap() map[string]float64 {
	cols, vals := Columns(), v.Values()
	m := make(map[string]float64, len(cols))
	for i, c := range cols {
		m[c] = vals[i]
	}
	return m
}

// ExtractFeatures derives the feature vector for a URL or bare hostname.
// The input is canonicalized with ExtractHost first, so callers may pass
// either form. trusted supplies the canonical domains used for the
// minimum-edit-distance feature; pass nil for the 999 sentinel.
//
// Extraction never fails: anything unextractable stays at its zero value.
func ExtractFeatures(url string, trusted []string) FeatureVector {
	host := ExtractHost(url)
	var v FeatureVector
	if host == "" {
		v.LevenshteinTrusted = trustedDistanceSentinel
		return v
	}

	runes := []rune(host)
	parts := Labels(host)

	v.LenDomain = float64(len(runes))
	v.NumParts = float64(len(parts))
	if len(parts) > 1 {
		if _, ok := suspiciousTLDs["."+parts[len(parts)-1]]; ok {
			v.TLDSuspicious = 1
		}
	}

	var nonASCII, subs, digits, alphas int
	for _, r := range runes {
		if r > 127 {
			nonASCII++
		}
		if _, ok := substitutions[unicode.ToLower(r)]; ok {
			subs++
		}
		if unicode.IsDigit(r) {
			digits++
		}
		if unicode.IsLetter(r) {
			alphas++
		}
	}
	v.NonASCIICount = float64(nonASCII)
	v.HomoglyphSubs = float64(subs)

	if punycodeForm(host) != host {
		v.PunycodeDiff = 1
	}

	v.LevenshteinTrusted = trustedDistanceSentinel
	if len(trusted) > 0 {
		sld := SecondLevelLabel(host)
		best := trustedDistanceSentinel
		for _, t := range trusted {
			if d := EditDistance(sld, firstLabel(t)); d < best {
				best = d
			}
		}
		v.LevenshteinTrusted = float64(best)
	}

	v.Entropy = ShannonEntropy(host)

	// max(1, len) denominators keep the ratios defined for degenerate input
	denom := float64(len(runes))
	if denom < 1 {
		denom = 1
	}
	v.DigitRatio = float64(digits) / denom
	v.AlphaRatio = float64(alphas) / denom

	return v
}

// ShannonEntropy returns -sum(p*log2(p)) over the rune frequency
// distribution of s, and 0.0 for an empty string.
func ShannonEntropy(s string) float64 {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0.0
	}
	counts := make(map[rune]int, len(runes))
	for _, r := range runes {
		counts[r]++
	}
	total := float64(len(runes))
	entropy := 0.0
	for _, c := range counts {
		p := float64(c) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// punycodeForm returns the IDNA ASCII (Punycode) form of a hostname, or the
// input unchanged when conversion fails.
func punycodeForm(host string) string {
	ascii, err := idna.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}

func firstLabel(domain string) string {
	parts := Labels(domain)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}
