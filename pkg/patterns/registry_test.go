package patterns

import "testing"

func TestRegistryInit(t *testing.T) {
	r1 := Get()
	r2 := Get()
	if r1 != r2 {
		t.Error("Get() should return the same registry instance")
	}
}

func TestRegistryHasPatterns(t *testing.T) {
	r := Get()
	if total := r.TotalPatterns(); total < 10 {
		t.Errorf("expected at least 10 patterns, got %d", total)
	}
}

func TestCategoryPatterns(t *testing.T) {
	r := Get()

	testCases := []struct {
		category    Category
		minPatterns int
	}{
		{CategoryStructure, 4},
		{CategoryBait, 2},
		{CategoryInfra, 3},
	}

	for _, tc := range testCases {
		t.Run(string(tc.category), func(t *testing.T) {
			patterns := r.GetByCategory(tc.category)
			if len(patterns) < tc.minPatterns {
				t.Errorf("category %s: expected at least %d patterns, got %d",
					tc.category, tc.minPatterns, len(patterns))
			}
		})
	}
}

func TestMatchAll(t *testing.T) {
	r := Get()

	testCases := []struct {
		name      string
		url       string
		wantMatch bool
	}{
		{"ip host", "http://192.168.4.22/login", true},
		{"userinfo trick", "https://paypal.com@evil.example/", true},
		{"deep subdomains", "https://secure.login.paypal.com.verify.evil.example/", true},
		{"punycode", "https://xn--pypal-4ve.com/", true},
		{"credential bait", "https://paypal-login-verify.com/", true},
		{"throwaway tld", "https://win-a-prize.icu/", true},
		{"shortener", "https://bit.ly/3xyzzy", true},
		{"clean url", "https://example.org/docs", false},
		{"bare trusted host", "paypal.com", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			matches := r.MatchAll(tc.url)
			if tc.wantMatch && len(matches) == 0 {
				t.Errorf("expected a match for %q", tc.url)
			}
			if !tc.wantMatch && len(matches) > 0 {
				t.Errorf("unexpected match for %q: %s", tc.url, matches[0].Name)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	r := Get()

	reasons := r.Describe("http://10.0.0.1/secure")
	if len(reasons) == 0 {
		t.Fatal("expected at least one reason for an IP-literal URL")
	}
	for _, reason := range reasons {
		if reason == "" {
			t.Error("pattern with empty description")
		}
	}

	if got := r.Describe("https://example.org/"); got != nil {
		t.Errorf("clean URL should describe to nil, got %v", got)
	}
}
