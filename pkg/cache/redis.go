// Package cache is the Redis-backed verdict cache. Verdicts are keyed by
// normalized hostname so repeated checks of the same host within the TTL
// skip the scoring pipeline. A hit requires the request's behavior score
// to match the cached verdict's: the score enters the heuristic blend, so
// serving it across behavior scores would change the risk tier.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shri-birje/Phishguard/pkg/lexical"
	"github.com/shri-birje/Phishguard/pkg/ml"
)

// Config configures the verdict cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// VerdictCache stores assessments in Redis with a TTL. The zero-value
// guard is a nil receiver: a nil *VerdictCache misses on every Get and
// discards every Put, so callers need no branching when caching is off.
type VerdictCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*VerdictCache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &VerdictCache{client: client, ttl: cfg.TTL}, nil
}

// key normalizes a URL to its cache key. Empty when the host is
// unparseable, which disables caching for that input.
func key(url string) string {
	host := lexical.ExtractHost(url)
	if host == "" {
		return ""
	}
	return "phishguard:verdict:" + host
}

// Get returns the cached assessment for the URL's host, or nil on miss.
// The behavior score carries weight in the heuristic blend, so a cached
// verdict is only served when the request's behavior score matches the one
// it was scored with. Cache errors degrade to a miss.
func (c *VerdictCache) Get(ctx context.Context, url string, behaviorScore float64) *ml.Assessment {
	if c == nil {
		return nil
	}
	k := key(url)
	if k == "" {
		return nil
	}

	data, err := c.client.Get(ctx, k).Bytes()
	if err != nil {
		return nil // redis.Nil or transport error, either way a miss
	}

	var a ml.Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		// stale encoding from an older build, drop it
		_ = c.client.Del(ctx, k).Err()
		return nil
	}
	if a.BehaviorScore != math.Round(behaviorScore*100)/100 {
		return nil
	}
	return &a
}

// Put stores an assessment under its host key for the configured TTL.
func (c *VerdictCache) Put(ctx context.Context, a *ml.Assessment) error {
	if c == nil || a == nil {
		return nil
	}
	k := key(a.URL)
	if k == "" {
		return nil
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode verdict: %w", err)
	}
	if err := c.client.Set(ctx, k, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache verdict: %w", err)
	}
	return nil
}

// Invalidate drops the cached verdict for a URL's host. Used when a host
// is added to the blocklist so the old verdict cannot be served.
func (c *VerdictCache) Invalidate(ctx context.Context, url string) error {
	if c == nil {
		return nil
	}
	k := key(url)
	if k == "" {
		return nil
	}
	return c.client.Del(ctx, k).Err()
}

// Close releases the Redis connection.
func (c *VerdictCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
