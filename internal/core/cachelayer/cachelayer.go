// Package cachelayer implements the Cache Layer (C6): a process-local
// LRU (L1) in front of Redis (L2), infallible from the caller's
// perspective — every operation degrades to a cache miss rather than an
// error, so the Aggregator and Orchestrator can be written as if the
// cache did not exist.
package cachelayer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sebastianfrazier26/safeascent-predictor/pkg/cache"
	"github.com/sebastianfrazier26/safeascent-predictor/pkg/lru"
	"github.com/sebastianfrazier26/safeascent-predictor/pkg/metrics"
)

// l1PromotionTTL bounds how long an L2 hit stays resident in L1 once
// backfilled; it does not extend the value's life in L2.
const l1PromotionTTL = 5 * time.Minute

// Cache is the two-tier façade described by C6. It holds opaque string
// payloads; typed helpers for WeatherPattern/Stats live in encoding.go.
type Cache struct {
	l1      *lru.Cache[string, string]
	l2      cache.Client
	metrics *metrics.Collectors
	logger  *slog.Logger

	l1Hits, l1Misses uint64
	l2Hits, l2Misses uint64
}

// New builds a Cache with an L1 of l1Size entries in front of l2. l2 may
// be nil, in which case the cache degrades to an L1-only cache (used in
// tests and the "cache backend disabled" degradation scenario).
func New(l1Size int, l2 cache.Client, m *metrics.Collectors, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l1, err := lru.New[string, string](l1Size)
	if err != nil {
		return nil, err
	}
	return &Cache{l1: l1, l2: l2, metrics: m, logger: logger}, nil
}

// Get returns the raw value for key, checking L1 then L2. A transport
// error against L2 is logged and treated as a miss, never returned to
// the caller.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if v, ok := c.l1.Get(key); ok {
		c.record(&c.l1Hits, "l1", true)
		return v, true
	}
	c.record(&c.l1Misses, "l1", false)

	if c.l2 == nil {
		return "", false
	}

	v, err := c.l2.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			c.logger.Warn("cache l2 get failed", "key", key, "error", err)
		}
		c.record(&c.l2Misses, "l2", false)
		return "", false
	}

	c.record(&c.l2Hits, "l2", true)
	c.l1.Add(key, v, l1PromotionTTL)
	return v, true
}

// Set writes value to both tiers with the given TTL. An L2 transport
// error is logged and swallowed.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	c.l1.Add(key, value, ttl)
	if c.l2 == nil {
		return
	}
	if err := c.l2.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("cache l2 set failed", "key", key, "error", err)
	}
}

// Delete removes key from both tiers.
func (c *Cache) Delete(ctx context.Context, key string) {
	c.l1.Remove(key)
	if c.l2 == nil {
		return
	}
	if err := c.l2.Del(ctx, key); err != nil {
		c.logger.Warn("cache l2 delete failed", "key", key, "error", err)
	}
}

// ClearPrefix removes every key under the given namespace ("forecast",
// "stats", "prediction") from both tiers.
func (c *Cache) ClearPrefix(ctx context.Context, prefix string) {
	for _, k := range c.l1.Keys() {
		if strings.HasPrefix(k, prefix+":") {
			c.l1.Remove(k)
		}
	}

	if c.l2 == nil {
		return
	}
	keys, err := c.l2.Keys(ctx, cache.PrefixPattern(prefix))
	if err != nil {
		c.logger.Warn("cache l2 keys failed", "prefix", prefix, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.l2.Del(ctx, keys...); err != nil {
		c.logger.Warn("cache l2 clear prefix failed", "prefix", prefix, "error", err)
	}
}

// Stats is the snapshot returned by Cache.Stats().
type Stats struct {
	L1Hits, L1Misses uint64
	L2Hits, L2Misses uint64
}

// Stats returns a snapshot of hit/miss counters and refreshes the
// corresponding Prometheus hit-ratio gauges.
func (c *Cache) Stats() Stats {
	s := Stats{
		L1Hits:   atomic.LoadUint64(&c.l1Hits),
		L1Misses: atomic.LoadUint64(&c.l1Misses),
		L2Hits:   atomic.LoadUint64(&c.l2Hits),
		L2Misses: atomic.LoadUint64(&c.l2Misses),
	}

	if c.metrics != nil {
		if total := s.L1Hits + s.L1Misses; total > 0 {
			c.metrics.CacheHitRatio.WithLabelValues("l1").Set(float64(s.L1Hits) / float64(total))
		}
		if total := s.L2Hits + s.L2Misses; total > 0 {
			c.metrics.CacheHitRatio.WithLabelValues("l2").Set(float64(s.L2Hits) / float64(total))
		}
	}

	return s
}

func (c *Cache) record(counter *uint64, tier string, hit bool) {
	atomic.AddUint64(counter, 1)
	if c.metrics == nil {
		return
	}
	if hit {
		c.metrics.CacheHits.WithLabelValues(tier).Inc()
	} else {
		c.metrics.CacheMisses.WithLabelValues(tier).Inc()
	}
}
