package similarity

import (
	"testing"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/kernel"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

func f(v float64) *float64 { return &v }

func testConfig(t *testing.T) *kernel.Config {
	t.Helper()
	cfg, err := kernel.NewDefaultConfig("../kernel/data/route_type_matrix.yaml")
	if err != nil {
		t.Fatalf("kernel.NewDefaultConfig: %v", err)
	}
	return cfg
}

func fullDay(temp, wind, precip, cloud, vis float64) types.DailyObservation {
	return types.DailyObservation{
		TemperatureAvg:     f(temp),
		WindSpeedAvg:       f(wind),
		PrecipitationTotal: f(precip),
		CloudCoverAvg:      f(cloud),
		VisibilityAvg:      f(vis),
	}
}

func fullPattern(temp, wind, precip, cloud, vis float64) types.WeatherPattern {
	var p types.WeatherPattern
	for i := range p.Days {
		p.Days[i] = fullDay(temp, wind, precip, cloud, vis)
	}
	return p
}

func TestIdenticalPatternsScoreOne(t *testing.T) {
	cfg := testConfig(t)
	p := fullPattern(10, 20, 0, 50, 10000)
	result := Compute(cfg, p, p, nil)
	if result.Score != 1.0 {
		t.Errorf("Compute(identical) = %v, want 1.0", result.Score)
	}
	if result.LowConfidence {
		t.Errorf("identical full patterns should not be low-confidence")
	}
}

func TestSparseWindowReturnsNeutral(t *testing.T) {
	cfg := testConfig(t)
	var a, b types.WeatherPattern
	a.Days[6] = fullDay(10, 20, 0, 50, 10000)
	b.Days[6] = fullDay(10, 20, 0, 50, 10000)

	result := Compute(cfg, a, b, nil)
	if result.Score != NeutralValue {
		t.Errorf("Compute(sparse) = %v, want neutral %v", result.Score, NeutralValue)
	}
	if !result.LowConfidence {
		t.Errorf("sparse window should be marked low-confidence")
	}
}

func TestNeutralWeatherPatternPairScoresNeutral(t *testing.T) {
	cfg := testConfig(t)
	a := types.NewNeutralWeatherPattern()
	b := types.NewNeutralWeatherPattern()
	result := Compute(cfg, a, b, nil)
	if result.Score != NeutralValue {
		t.Errorf("Compute(neutral, neutral) = %v, want %v", result.Score, NeutralValue)
	}
}

func TestDivergentPatternsScoreLow(t *testing.T) {
	cfg := testConfig(t)
	a := fullPattern(10, 5, 0, 10, 15000)
	b := fullPattern(-10, 60, 40, 100, 500)

	stats := &types.Stats{Variables: map[string]types.VariableStats{
		"temperature":   {Mean: 0, StdDev: 5},
		"wind":          {Mean: 20, StdDev: 10},
		"precipitation": {Mean: 5, StdDev: 5},
		"cloud_cover":   {Mean: 50, StdDev: 20},
		"visibility":    {Mean: 10000, StdDev: 3000},
	}}

	result := Compute(cfg, a, b, stats)
	if result.Score >= 0.5 {
		t.Errorf("Compute(divergent) = %v, want < 0.5", result.Score)
	}
}
