package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/shri-birje/Phishguard/pkg/ml"
)

func newTestCache(t *testing.T, ttl time.Duration) (*VerdictCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), Config{Addr: mr.Addr(), TTL: ttl})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func sampleVerdict(url string) *ml.Assessment {
	return &ml.Assessment{
		URL:            url,
		HomoglyphScore: 80,
		BehaviorScore:  30,
		PhishingScore:  65,
		RiskLevel:      ml.RiskHigh,
		Action:         ml.ActionBlock,
		Mode:           ml.ModeHeuristic,
		Suspect:        true,
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if got := c.Get(ctx, "http://paypa1.com/login", 30); got != nil {
		t.Fatalf("expected miss on empty cache, got %+v", got)
	}

	if err := c.Put(ctx, sampleVerdict("http://paypa1.com/login")); err != nil {
		t.Fatal(err)
	}

	got := c.Get(ctx, "http://paypa1.com/login", 30)
	if got == nil {
		t.Fatal("expected hit after put")
	}
	if got.PhishingScore != 65 || got.RiskLevel != ml.RiskHigh {
		t.Errorf("cached verdict = %+v", got)
	}

	// same host, different path and scheme: still a hit
	if c.Get(ctx, "https://paypa1.com/other", 30) == nil {
		t.Error("cache key must be the normalized host, not the full URL")
	}

	// different host: miss
	if c.Get(ctx, "http://paypal.com/", 30) != nil {
		t.Error("different host must miss")
	}
}

func TestCacheMissesAcrossBehaviorScores(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	// verdict scored with behavior 0: Low tier on the heuristic path
	low := &ml.Assessment{
		URL:           "example.org",
		BehaviorScore: 0,
		PhishingScore: 0,
		RiskLevel:     ml.RiskLow,
		Action:        ml.ActionAllow,
		Mode:          ml.ModeHeuristic,
	}
	if err := c.Put(ctx, low); err != nil {
		t.Fatal(err)
	}

	// a request with behavior 90 would blend to a different tier, so the
	// cached verdict must not be served for it
	if got := c.Get(ctx, "example.org", 90); got != nil {
		t.Errorf("cached %v/%s verdict served for a different behavior score", got.PhishingScore, got.RiskLevel)
	}

	// the matching behavior score still hits
	if c.Get(ctx, "example.org", 0) == nil {
		t.Error("matching behavior score must hit")
	}

	// unrounded request values compare against the verdict's 2-decimal form
	rounded := &ml.Assessment{URL: "rounded.example", BehaviorScore: 12.35, RiskLevel: ml.RiskLow, Action: ml.ActionAllow}
	if err := c.Put(ctx, rounded); err != nil {
		t.Fatal(err)
	}
	if c.Get(ctx, "rounded.example", 12.345) == nil {
		t.Error("behavior score must be compared after rounding to 2 decimals")
	}
}

func TestCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, sampleVerdict("paypa1.com")); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)

	if c.Get(ctx, "paypa1.com", 30) != nil {
		t.Error("verdict must expire after the TTL")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, sampleVerdict("evil.example")); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate(ctx, "http://evil.example/path"); err != nil {
		t.Fatal(err)
	}
	if c.Get(ctx, "evil.example", 30) != nil {
		t.Error("invalidated verdict must not be served")
	}
}

func TestCacheCorruptEntryDegradesToMiss(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)

	mr.Set("phishguard:verdict:broken.example", "{not json")
	if c.Get(context.Background(), "broken.example", 0) != nil {
		t.Error("corrupt entry must read as a miss")
	}
}

func TestNilCacheIsInert(t *testing.T) {
	var c *VerdictCache
	ctx := context.Background()

	if c.Get(ctx, "paypal.com", 0) != nil {
		t.Error("nil cache must always miss")
	}
	if err := c.Put(ctx, sampleVerdict("paypal.com")); err != nil {
		t.Errorf("nil cache put: %v", err)
	}
	if err := c.Invalidate(ctx, "paypal.com"); err != nil {
		t.Errorf("nil cache invalidate: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("nil cache close: %v", err)
	}
}

func TestUnparseableHostSkipsCache(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, sampleVerdict("   ")); err != nil {
		t.Errorf("unparseable host put: %v", err)
	}
	if c.Get(ctx, "   ", 0) != nil {
		t.Error("unparseable host must miss")
	}
}

func TestNewRequiresAddr(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Error("expected error for empty address")
	}
}
