package lexical

// EditDistance computes the Levenshtein distance between a and b with unit
// insert/delete/substitute costs, operating on runes. Uses two rolling rows
// so auxiliary space is O(min(|a|,|b|)).
//
// Symmetric, zero iff the strings are equal, and satisfies the triangle
// inequality.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	// keep the shorter string on the inner dimension
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// RatioSimilarity returns a normalized similarity in [0,1] computed as
// 2*LCS(a,b) / (|a|+|b|): 1.0 for identical strings, symmetric, and
// monotone decreasing in edit distance for fixed lengths. Two empty
// strings are identical, so they score 1.0.
func RatioSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(lcsLength(ra, rb)) / float64(total)
}

// BestSimilarity returns the maximum RatioSimilarity between a and any
// candidate, or 0.0 for an empty candidate set.
func BestSimilarity(a string, candidates []string) float64 {
	best := 0.0
	for _, c := range candidates {
		if r := RatioSimilarity(a, c); r > best {
			best = r
		}
	}
	return best
}

// lcsLength computes the longest-common-subsequence length with two rolling
// rows, mirroring the space bound of EditDistance.
func lcsLength(ra, rb []rune) int {
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return 0
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
		for j := range cur {
			cur[j] = 0
		}
	}
	return prev[len(rb)]
}
