package weather

import (
	"context"
	"log/slog"
	"time"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

// Fetcher is the C1 component: it consults the cache before calling the
// upstream Provider, and on upstream failure lets the caller decide
// whether to substitute a neutral pattern (the Orchestrator always
// does, per §7's recovery policy).
type Fetcher struct {
	provider      Provider
	cache         PatternCache
	forecastKey   ForecastKeyFunc
	statsKey      StatsKeyFunc
	forecastTTL   time.Duration
	statsTTL      time.Duration
	logger        *slog.Logger
}

// NewFetcher builds a Fetcher. forecastKeyFn/statsKeyFn are typically
// cachelayer.ForecastKey/cachelayer.StatsKey, passed in rather than
// imported directly so this package stays agnostic of the bucketing
// strategy (H3 vs decimal rounding).
func NewFetcher(provider Provider, cache PatternCache, forecastKeyFn ForecastKeyFunc, statsKeyFn StatsKeyFunc, forecastTTL, statsTTL time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		provider:    provider,
		cache:       cache,
		forecastKey: forecastKeyFn,
		statsKey:    statsKeyFn,
		forecastTTL: forecastTTL,
		statsTTL:    statsTTL,
		logger:      logger,
	}
}

// FetchForecast returns the cached or freshly-retrieved 7-day window for
// (lat, lon) ending at date. On upstream failure it returns the error
// untouched — it is the Orchestrator's job to decide whether to
// substitute a neutral pattern and set the degraded flag, per §7's
// "recovered locally at the Fetcher boundary" language actually living
// one layer up so the degradation decision is visible to the caller
// that owns the response metadata.
func (f *Fetcher) FetchForecast(ctx context.Context, lat, lon float64, date time.Time) (types.WeatherPattern, error) {
	key := f.forecastKey(lat, lon, date)

	if wp, ok := f.cache.GetWeatherPattern(ctx, key); ok {
		return wp, nil
	}

	wp, err := f.provider.FetchForecast(ctx, lat, lon, date)
	if err != nil {
		return types.WeatherPattern{}, err
	}

	f.cache.SetWeatherPattern(ctx, key, wp, f.forecastTTL)
	return wp, nil
}

// FetchStatistics returns the cached or freshly-retrieved climatological
// statistics for the given location bucket and season.
func (f *Fetcher) FetchStatistics(ctx context.Context, lat, lon float64, elevationBucketM int, season string) (types.Stats, error) {
	key := f.statsKey(lat, lon, elevationBucketM, season)

	if stats, ok := f.cache.GetStats(ctx, key); ok {
		return stats, nil
	}

	stats, err := f.provider.FetchStatistics(ctx, lat, lon, elevationBucketM, season)
	if err != nil {
		return types.Stats{}, err
	}

	f.cache.SetStats(ctx, key, stats, f.statsTTL)
	return stats, nil
}

// FetchForecastOrNeutral calls FetchForecast and substitutes a neutral
// pattern on failure, reporting whether degradation occurred.
func (f *Fetcher) FetchForecastOrNeutral(ctx context.Context, lat, lon float64, date time.Time) (types.WeatherPattern, bool) {
	wp, err := f.FetchForecast(ctx, lat, lon, date)
	if err != nil {
		f.logger.Warn("weather forecast unavailable, substituting neutral pattern", "error", err)
		return types.NewNeutralWeatherPattern(), true
	}
	return wp, false
}
