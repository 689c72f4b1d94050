// Package weather implements the Weather Fetcher (C1): forecast and
// climatological-statistics retrieval, retry with exponential backoff,
// a circuit breaker around the upstream provider, and cache-backed
// lookups through the Cache Layer (C6).
package weather

import (
	"context"
	"time"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

// Provider is the outbound weather source. HTTPProvider is the
// production implementation; tests substitute a fake.
type Provider interface {
	FetchForecast(ctx context.Context, lat, lon float64, date time.Time) (types.WeatherPattern, error)
	FetchStatistics(ctx context.Context, lat, lon float64, elevationBucketM int, season string) (types.Stats, error)
}

// PatternCache is the subset of the Cache Layer the Fetcher depends on.
// Declared here (consumer side) so cachelayer.Cache satisfies it without
// either package importing the other's concrete type.
type PatternCache interface {
	GetWeatherPattern(ctx context.Context, key string) (types.WeatherPattern, bool)
	SetWeatherPattern(ctx context.Context, key string, wp types.WeatherPattern, ttl time.Duration)
	GetStats(ctx context.Context, key string) (types.Stats, bool)
	SetStats(ctx context.Context, key string, stats types.Stats, ttl time.Duration)
}

// ForecastKeyFunc and StatsKeyFunc build cache keys from query
// parameters, delegated to the caller so the Fetcher does not need to
// know about H3 bucketing.
type ForecastKeyFunc func(lat, lon float64, date time.Time) string
type StatsKeyFunc func(lat, lon float64, elevationBucketM int, season string) string
