package lexical

import (
	"math"
	"testing"
)

func TestColumnsMatchValues(t *testing.T) {
	var v FeatureVector
	if len(Columns()) != len(v.Values()) {
		t.Fatalf("Columns() has %d names but Values() has %d entries", len(Columns()), len(v.Values()))
	}
}

func TestExtractFeatures(t *testing.T) {
	trusted := []string{"paypal.com", "google.com"}

	t.Run("plain trusted domain", func(t *testing.T) {
		v := ExtractFeatures("https://paypal.com", trusted)
		if v.LenDomain != 10 {
			t.Errorf("len_domain = %v, want 10", v.LenDomain)
		}
		if v.NumParts != 2 {
			t.Errorf("num_parts = %v, want 2", v.NumParts)
		}
		if v.TLDSuspicious != 0 {
			t.Errorf("tld_suspicious = %v, want 0", v.TLDSuspicious)
		}
		if v.LevenshteinTrusted != 0 {
			t.Errorf("levenshtein_min_trusted = %v, want 0", v.LevenshteinTrusted)
		}
		if v.PunycodeDiff != 0 {
			t.Errorf("punycode_diff = %v, want 0", v.PunycodeDiff)
		}
	})

	t.Run("digit substitution lookalike", func(t *testing.T) {
		v := ExtractFeatures("paypa1.com", trusted)
		if v.LevenshteinTrusted != 1 {
			t.Errorf("levenshtein_min_trusted = %v, want 1", v.LevenshteinTrusted)
		}
		// p-a-y-p-a-1 plus o in .com: a,1,o are all in the substitution table
		if v.HomoglyphSubs < 3 {
			t.Errorf("homoglyph_subs = %v, want >= 3", v.HomoglyphSubs)
		}
		if v.DigitRatio <= 0 {
			t.Errorf("digit_ratio = %v, want > 0", v.DigitRatio)
		}
	})

	t.Run("suspicious tld", func(t *testing.T) {
		v := ExtractFeatures("login-update.xyz", trusted)
		if v.TLDSuspicious != 1 {
			t.Errorf("tld_suspicious = %v, want 1", v.TLDSuspicious)
		}
	})

	t.Run("unicode host", func(t *testing.T) {
		v := ExtractFeatures("pаypal.com", trusted)
		if v.NonASCIICount != 1 {
			t.Errorf("non_ascii_count = %v, want 1", v.NonASCIICount)
		}
		if v.PunycodeDiff != 1 {
			t.Errorf("punycode_diff = %v, want 1 (IDNA form differs)", v.PunycodeDiff)
		}
	})

	t.Run("no trusted set gives sentinel", func(t *testing.T) {
		v := ExtractFeatures("paypal.com", nil)
		if v.LevenshteinTrusted != 999 {
			t.Errorf("levenshtein_min_trusted = %v, want 999 sentinel", v.LevenshteinTrusted)
		}
	})

	t.Run("unparseable input stays neutral", func(t *testing.T) {
		v := ExtractFeatures("", trusted)
		if v.LenDomain != 0 || v.Entropy != 0 {
			t.Errorf("empty input should produce zero features, got %+v", v)
		}
	})
}

func TestExtractFeaturesRatios(t *testing.T) {
	v := ExtractFeatures("abc123.com", nil)
	// 10 runes: 3 digits, 6 letters, 1 dot
	if !almostEqual(v.DigitRatio, 0.3) {
		t.Errorf("digit_ratio = %v, want 0.3", v.DigitRatio)
	}
	if !almostEqual(v.AlphaRatio, 0.6) {
		t.Errorf("alpha_ratio = %v, want 0.6", v.AlphaRatio)
	}
}

func TestShannonEntropy(t *testing.T) {
	if got := ShannonEntropy(""); got != 0.0 {
		t.Errorf("entropy of empty string = %v, want 0", got)
	}

	// any single repeated character carries no information
	for _, s := range []string{"a", "aaaa", "zzzzzzzzzz"} {
		if got := ShannonEntropy(s); got != 0.0 {
			t.Errorf("entropy(%q) = %v, want 0", s, got)
		}
	}

	// two symbols at equal frequency is exactly one bit
	if got := ShannonEntropy("abab"); !almostEqual(got, 1.0) {
		t.Errorf("entropy(abab) = %v, want 1.0", got)
	}

	// diversity increases entropy (non-strictly) at fixed length
	low := ShannonEntropy("aaaaaaab")
	high := ShannonEntropy("abcdefgh")
	if low > high {
		t.Errorf("entropy should not decrease with diversity: %v > %v", low, high)
	}
	if math.IsNaN(low) || math.IsNaN(high) {
		t.Error("entropy produced NaN")
	}
}
