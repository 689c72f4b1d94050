// Package similarity implements the weather-similarity function (C2):
// given two WeatherPatterns, a score in [0,1] where 1.0 means
// identical. Written as small named helpers rather than one monolithic
// function, so each step (alignment, per-variable scoring, weighted combination) can
// be tested in isolation.
package similarity

import (
	"math"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/kernel"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

// NeutralValue is returned when fewer than three days in either window
// carry any data at all.
const NeutralValue = 0.5

// minDaysWithData is the floor below which similarity degrades to the
// neutral value and low-confidence marker.
const minDaysWithData = 3

// Result carries the similarity score plus the low-confidence flag the
// aggregator needs to fold into its own confidence computation.
type Result struct {
	Score         float64
	LowConfidence bool
}

// Compute returns the similarity between a and b using cfg's
// per-variable weights, renormalizing when a variable or day is absent
// from either pattern.
func Compute(cfg *kernel.Config, a, b types.WeatherPattern, stats *types.Stats) Result {
	daysWithData := 0
	for i := 0; i < 7; i++ {
		if !a.Days[i].IsEmpty() || !b.Days[i].IsEmpty() {
			daysWithData++
		}
	}
	if daysWithData < minDaysWithData {
		return Result{Score: NeutralValue, LowConfidence: true}
	}

	daySum := 0.0
	daysScored := 0
	for i := 0; i < 7; i++ {
		da, db := a.Days[i], b.Days[i]
		if da.IsEmpty() && db.IsEmpty() {
			continue
		}
		score, scored := dayScore(cfg.SimilarityWeights, da, db, stats)
		if !scored {
			continue
		}
		daySum += score
		daysScored++
	}

	if daysScored == 0 {
		return Result{Score: NeutralValue, LowConfidence: true}
	}

	return Result{Score: daySum / float64(daysScored), LowConfidence: false}
}

// variable bundles a named weight with an accessor into a
// DailyObservation, so dayScore can loop instead of repeating five
// near-identical blocks.
type variable struct {
	name   string
	weight float64
	value  func(types.DailyObservation) *float64
	stdKey string
}

var variables = []variable{
	{name: "precipitation", weight: 0.30, value: func(d types.DailyObservation) *float64 { return d.PrecipitationTotal }, stdKey: "precipitation"},
	{name: "wind", weight: 0.25, value: func(d types.DailyObservation) *float64 { return d.WindSpeedAvg }, stdKey: "wind"},
	{name: "temperature", weight: 0.20, value: func(d types.DailyObservation) *float64 { return d.TemperatureAvg }, stdKey: "temperature"},
	{name: "cloud_cover", weight: 0.15, value: func(d types.DailyObservation) *float64 { return d.CloudCoverAvg }, stdKey: "cloud_cover"},
	{name: "visibility", weight: 0.10, value: func(d types.DailyObservation) *float64 { return d.VisibilityAvg }, stdKey: "visibility"},
}

// dayScore computes the weighted-mean per-variable similarity for one
// aligned day pair, skipping and renormalizing over any variable
// missing from either side.
func dayScore(weights map[string]float64, a, b types.DailyObservation, stats *types.Stats) (float64, bool) {
	weightedSum := 0.0
	weightTotal := 0.0

	for _, v := range variables {
		va, vb := v.value(a), v.value(b)
		if va == nil || vb == nil {
			continue
		}

		w := v.weight
		if override, ok := weights[v.name]; ok {
			w = override
		}

		stdDev := 1.0
		if stats != nil {
			if vs, ok := stats.Variables[v.stdKey]; ok && vs.StdDev > 0 {
				stdDev = vs.StdDev
			}
		}

		diff := math.Abs(*va - *vb) / stdDev
		if diff > 1 {
			diff = 1
		}
		score := 1 - diff

		weightedSum += w * score
		weightTotal += w
	}

	if weightTotal == 0 {
		return 0, false
	}
	return weightedSum / weightTotal, true
}
