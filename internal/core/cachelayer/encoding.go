package cachelayer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

// GetWeatherPattern decodes a cached forecast window. encoding/json
// marshals struct fields in declaration order, so round-tripping a
// WeatherPattern through Set/Get yields byte-identical JSON for equal
// values — the "stable serialization" contract C6 requires for test
// equality checks.
func (c *Cache) GetWeatherPattern(ctx context.Context, key string) (types.WeatherPattern, bool) {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return types.WeatherPattern{}, false
	}
	var wp types.WeatherPattern
	if err := json.Unmarshal([]byte(raw), &wp); err != nil {
		c.logger.Warn("cache weather pattern decode failed", "key", key, "error", err)
		return types.WeatherPattern{}, false
	}
	return wp, true
}

// SetWeatherPattern encodes and stores a forecast window.
func (c *Cache) SetWeatherPattern(ctx context.Context, key string, wp types.WeatherPattern, ttl time.Duration) {
	raw, err := json.Marshal(wp)
	if err != nil {
		c.logger.Warn("cache weather pattern encode failed", "key", key, "error", err)
		return
	}
	c.Set(ctx, key, string(raw), ttl)
}

// GetStats decodes cached climatological statistics.
func (c *Cache) GetStats(ctx context.Context, key string) (types.Stats, bool) {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return types.Stats{}, false
	}
	var stats types.Stats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		c.logger.Warn("cache stats decode failed", "key", key, "error", err)
		return types.Stats{}, false
	}
	return stats, true
}

// SetStats encodes and stores climatological statistics.
func (c *Cache) SetStats(ctx context.Context, key string, stats types.Stats, ttl time.Duration) {
	raw, err := json.Marshal(stats)
	if err != nil {
		c.logger.Warn("cache stats encode failed", "key", key, "error", err)
		return
	}
	c.Set(ctx, key, string(raw), ttl)
}

// GetPrediction decodes an optionally-cached prediction result.
func (c *Cache) GetPrediction(ctx context.Context, key string) (types.Prediction, bool) {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return types.Prediction{}, false
	}
	var p types.Prediction
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		c.logger.Warn("cache prediction decode failed", "key", key, "error", err)
		return types.Prediction{}, false
	}
	return p, true
}

// SetPrediction encodes and stores a prediction result.
func (c *Cache) SetPrediction(ctx context.Context, key string, p types.Prediction, ttl time.Duration) {
	raw, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("cache prediction encode failed", "key", key, "error", err)
		return
	}
	c.Set(ctx, key, string(raw), ttl)
}
