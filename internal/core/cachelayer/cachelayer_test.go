package cachelayer

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
	"github.com/sebastianfrazier26/safeascent-predictor/pkg/cache"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l2 := cache.NewClientFromRedis(rc, nil)

	c, err := New(64, l2, nil, nil)
	require.NoError(t, err)

	return c, mr
}

func f(v float64) *float64 { return &v }

func TestWeatherPatternRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var wp types.WeatherPattern
	wp.Days[6] = types.DailyObservation{TemperatureAvg: f(12.5), WindSpeedAvg: f(18)}

	c.SetWeatherPattern(ctx, "forecast:test", wp, time.Minute)
	got, ok := c.GetWeatherPattern(ctx, "forecast:test")
	require.True(t, ok)
	require.Equal(t, *wp.Days[6].TemperatureAvg, *got.Days[6].TemperatureAvg)
	require.Equal(t, *wp.Days[6].WindSpeedAvg, *got.Days[6].WindSpeedAvg)
}

func TestGetMissReturnsFalseNotError(t *testing.T) {
	c, _ := newTestCache(t)
	_, ok := c.Get(context.Background(), "nonexistent")
	require.False(t, ok)
}

func TestL1HitAvoidsL2RoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "forecast:cached", "payload", time.Minute)
	mr.Close() // L2 now unreachable; a pure L1 hit must still succeed

	val, ok := c.Get(ctx, "forecast:cached")
	require.True(t, ok)
	require.Equal(t, "payload", val)
}

func TestClearPrefixRemovesOnlyMatchingKeys(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "forecast:a", "1", time.Minute)
	c.Set(ctx, "forecast:b", "2", time.Minute)
	c.Set(ctx, "stats:a", "3", time.Minute)

	c.ClearPrefix(ctx, "forecast")

	_, ok := c.Get(ctx, "forecast:a")
	require.False(t, ok)
	_, ok = c.Get(ctx, "stats:a")
	require.True(t, ok)
}

func TestDegradedModeWithNilL2(t *testing.T) {
	c, err := New(16, nil, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	c.Set(ctx, "forecast:x", "v", time.Minute)
	val, ok := c.Get(ctx, "forecast:x")
	require.True(t, ok)
	require.Equal(t, "v", val)
}

func TestStatsTracksHitsAndMisses(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "forecast:z", "v", time.Minute)
	c.Get(ctx, "forecast:z")
	c.Get(ctx, "missing")

	stats := c.Stats()
	require.GreaterOrEqual(t, stats.L1Hits, uint64(1))
	require.GreaterOrEqual(t, stats.L1Misses, uint64(1))
}

func TestFingerprintIsStableAcrossCalls(t *testing.T) {
	q := types.RouteQuery{
		Latitude:   40.255,
		Longitude:  -105.615,
		RouteType:  types.RouteAlpine,
		TargetDate: time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
	}
	require.Equal(t, Fingerprint(q), Fingerprint(q))
}
