package weather

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

type fakeProvider struct {
	forecastCalls int
	forecast      types.WeatherPattern
	forecastErr   error
}

func (f *fakeProvider) FetchForecast(ctx context.Context, lat, lon float64, date time.Time) (types.WeatherPattern, error) {
	f.forecastCalls++
	return f.forecast, f.forecastErr
}

func (f *fakeProvider) FetchStatistics(ctx context.Context, lat, lon float64, elevationBucketM int, season string) (types.Stats, error) {
	return types.Stats{}, nil
}

type fakeCache struct {
	forecasts map[string]types.WeatherPattern
	stats     map[string]types.Stats
}

func newFakeCache() *fakeCache {
	return &fakeCache{forecasts: map[string]types.WeatherPattern{}, stats: map[string]types.Stats{}}
}

func (c *fakeCache) GetWeatherPattern(ctx context.Context, key string) (types.WeatherPattern, bool) {
	wp, ok := c.forecasts[key]
	return wp, ok
}

func (c *fakeCache) SetWeatherPattern(ctx context.Context, key string, wp types.WeatherPattern, ttl time.Duration) {
	c.forecasts[key] = wp
}

func (c *fakeCache) GetStats(ctx context.Context, key string) (types.Stats, bool) {
	s, ok := c.stats[key]
	return s, ok
}

func (c *fakeCache) SetStats(ctx context.Context, key string, stats types.Stats, ttl time.Duration) {
	c.stats[key] = stats
}

func testKeyFuncs() (ForecastKeyFunc, StatsKeyFunc) {
	return func(lat, lon float64, date time.Time) string {
			return "forecast:fixed"
		}, func(lat, lon float64, elevationBucketM int, season string) string {
			return "stats:fixed"
		}
}

func TestFetchForecastCachesResult(t *testing.T) {
	temp := 12.0
	provider := &fakeProvider{forecast: types.WeatherPattern{Days: [7]types.DailyObservation{
		{}, {}, {}, {}, {}, {}, {TemperatureAvg: &temp},
	}}}
	c := newFakeCache()
	fk, sk := testKeyFuncs()
	f := NewFetcher(provider, c, fk, sk, time.Hour, 24*time.Hour, nil)

	_, err := f.FetchForecast(context.Background(), 40.2, -105.6, time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, provider.forecastCalls)

	_, err = f.FetchForecast(context.Background(), 40.2, -105.6, time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, provider.forecastCalls, "second call should hit the cache, not the provider")
}

func TestFetchForecastOrNeutralDegradesOnFailure(t *testing.T) {
	provider := &fakeProvider{forecastErr: errors.New("upstream down")}
	c := newFakeCache()
	fk, sk := testKeyFuncs()
	f := NewFetcher(provider, c, fk, sk, time.Hour, 24*time.Hour, nil)

	wp, degraded := f.FetchForecastOrNeutral(context.Background(), 40.2, -105.6, time.Now())
	require.True(t, degraded)
	require.True(t, wp.IsNeutral())
}
