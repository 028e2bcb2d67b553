package lexical

import "testing"

func TestEditDistance(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"paypal", "paypa1", 1},
		{"google", "g00gle", 2},
		{"a", "b", 1},
		{"flaw", "lawn", 2},
		{"pаypal", "paypal", 1}, // Cyrillic а counts as one substitution, not two bytes
	}

	for _, tc := range testCases {
		if got := EditDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("EditDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestEditDistanceSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"", "paypal"},
		{"paypa1.com", "paypal.com"},
		{"ab", "ba"},
	}
	for _, p := range pairs {
		ab, ba := EditDistance(p[0], p[1]), EditDistance(p[1], p[0])
		if ab != ba {
			t.Errorf("EditDistance(%q,%q)=%d but reversed=%d", p[0], p[1], ab, ba)
		}
	}
}

func TestEditDistanceTriangleInequality(t *testing.T) {
	triples := [][3]string{
		{"paypal", "paypa1", "peypal"},
		{"abc", "", "xyz"},
		{"google", "g00gle", "goggle"},
	}
	for _, tr := range triples {
		ab := EditDistance(tr[0], tr[1])
		bc := EditDistance(tr[1], tr[2])
		ac := EditDistance(tr[0], tr[2])
		if ac > ab+bc {
			t.Errorf("triangle inequality violated for %v: d(a,c)=%d > d(a,b)+d(b,c)=%d", tr, ac, ab+bc)
		}
	}
}

func TestRatioSimilarity(t *testing.T) {
	testCases := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "abc", 1.0},
		{"abc", "xyz", 0.0},
		{"paypa1.com", "paypal.com", 0.9}, // 9 common runes over 20 total
		{"", "abc", 0.0},
	}

	for _, tc := range testCases {
		if got := RatioSimilarity(tc.a, tc.b); !almostEqual(got, tc.want) {
			t.Errorf("RatioSimilarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestRatioSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"paypal.com", "paypa1.com"},
		{"google.com", "gmail.com"},
		{"", "x"},
	}
	for _, p := range pairs {
		if RatioSimilarity(p[0], p[1]) != RatioSimilarity(p[1], p[0]) {
			t.Errorf("RatioSimilarity not symmetric for %q/%q", p[0], p[1])
		}
	}
}

func TestRatioSimilaritySelfIdentity(t *testing.T) {
	for _, s := range []string{"", "a", "paypal.com", "pаypal.com"} {
		if got := RatioSimilarity(s, s); got != 1.0 {
			t.Errorf("RatioSimilarity(%q, same) = %v, want 1.0", s, got)
		}
	}
}

func TestBestSimilarity(t *testing.T) {
	trusted := []string{"paypal.com", "google.com", "amazon.com"}

	if got := BestSimilarity("paypal.com", trusted); got != 1.0 {
		t.Errorf("exact member should score 1.0, got %v", got)
	}
	if got := BestSimilarity("anything", nil); got != 0.0 {
		t.Errorf("empty candidate set should score 0.0, got %v", got)
	}
	got := BestSimilarity("paypa1.com", trusted)
	if !almostEqual(got, 0.9) {
		t.Errorf("BestSimilarity(paypa1.com) = %v, want 0.9", got)
	}
}

func almostEqual(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	return d < eps && d > -eps
}
