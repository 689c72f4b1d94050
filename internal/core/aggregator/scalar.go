package aggregator

import (
	"log/slog"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

// ScalarAggregator is the reference implementation: one accident at a
// time, no batching. Used by tests and as the agreement baseline for
// VectorizedAggregator.
type ScalarAggregator struct {
	K                  float64
	WeatherPower       float64
	ExclusionThreshold float64
	logger             *slog.Logger
}

// NewScalarAggregator builds a ScalarAggregator with normalization
// constant k, the weather-similarity amplifier exponent, and the
// similarity exclusion threshold — both enumerated config per §9,
// never hard-wired literals inside total().
func NewScalarAggregator(k, weatherPower, exclusionThreshold float64, logger *slog.Logger) *ScalarAggregator {
	return &ScalarAggregator{K: k, WeatherPower: weatherPower, ExclusionThreshold: exclusionThreshold, logger: logger}
}

// Aggregate implements Aggregator.
func (s *ScalarAggregator) Aggregate(inputs []Weighted) Result {
	var raw float64
	var daysElapsed []int
	var aboveHalf int
	contributing := make([]types.Influence, 0, len(inputs))

	for _, w := range inputs {
		t := total(w, s.WeatherPower, s.ExclusionThreshold, s.logger)
		if t == 0 {
			continue
		}

		raw += t
		daysElapsed = append(daysElapsed, w.DaysElapsed)
		if w.WeatherSimilarity >= 0.5 {
			aboveHalf++
		}

		contributing = append(contributing, types.Influence{
			AccidentID:        w.AccidentID,
			DistanceKM:        w.DistanceKM,
			DaysElapsed:       w.DaysElapsed,
			SpatialW:          w.SpatialW,
			TemporalW:         w.TemporalW,
			ElevationW:        w.ElevationW,
			RouteTypeW:        w.RouteTypeW,
			SeverityW:         w.SeverityW,
			WeatherSimilarity: w.WeatherSimilarity,
			TotalInfluence:    t,
			Severity:          w.Severity,
		})
	}

	n := len(contributing)
	riskScore := clamp(raw*s.K, 0, 100)

	var matchFraction float64
	if n > 0 {
		matchFraction = float64(aboveHalf) / float64(n)
	}
	conf := confidence(n, median(daysElapsed), matchFraction)

	sortContributors(contributing)
	if len(contributing) > topContributorLimit {
		contributing = contributing[:topContributorLimit]
	}

	return Result{
		RiskScore:                riskScore,
		Confidence:                conf,
		NumContributingAccidents: n,
		TopContributors:          contributing,
		Vectorized:                false,
	}
}
