// Package aggregator implements the Influence Aggregator (C5): it
// fuses the weight kernels and weather similarity into a per-accident
// influence, sums and normalizes into a risk score, computes
// confidence, and selects the top contributors.
package aggregator

import (
	"log/slog"
	"math"
	"sort"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

// Weighted is the per-accident input to the aggregator: the product
// terms from the weight kernels plus the weather similarity score.
type Weighted struct {
	AccidentID        int64
	DistanceKM        float64
	DaysElapsed       int
	SpatialW          float64
	TemporalW         float64
	ElevationW        float64
	RouteTypeW        float64
	SeverityW         float64
	WeatherSimilarity float64
	Severity          types.Severity
}

// Aggregator fuses Weighted records into a Result. Two
// implementations share this interface: Scalar (the reference) and
// Vectorized (the hot path), which must agree within 1e-6.
type Aggregator interface {
	Aggregate(inputs []Weighted) Result
}

// Result is the aggregator's internal output before JSON rounding is
// applied at the HTTP boundary.
type Result struct {
	RiskScore                float64
	Confidence                float64
	NumContributingAccidents int
	TopContributors          []types.Influence
	Vectorized                bool
}

// total computes base*similarity^weatherPower, or 0 if similarity is
// below exclusionThreshold, or if base itself is NaN (malformed kernel
// output). weatherPower and exclusionThreshold are the enumerated
// config values from §9 (read-only after initialization, never a bare
// literal here). logger may be nil.
func total(w Weighted, weatherPower, exclusionThreshold float64, logger *slog.Logger) float64 {
	base := w.SpatialW * w.TemporalW * w.ElevationW * w.RouteTypeW * w.SeverityW

	if math.IsNaN(base) {
		if logger != nil {
			logger.Warn("kernel product produced NaN, excluding accident", "accident_id", w.AccidentID)
		}
		return 0
	}

	if w.WeatherSimilarity < exclusionThreshold {
		return 0
	}

	return base * math.Pow(w.WeatherSimilarity, weatherPower)
}

// confidence implements the weighted count/recency/match formula. n is
// the number of non-zero contributors, medianDays their median
// days_elapsed, matchFraction the fraction with similarity >= 0.5.
func confidence(n int, medianDays float64, matchFraction float64) float64 {
	if n == 0 {
		return 0
	}

	countScore := math.Min(1, float64(n)/100)
	recencyScore := clamp(1-medianDays/3650, 0, 1)
	matchScore := matchFraction

	return 100 * (0.4*countScore + 0.3*recencyScore + 0.3*matchScore)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

// sortContributors orders influences by total_influence descending,
// with the deterministic tie-break order from the spec: days_elapsed
// ascending, distance_km ascending, accident_id ascending.
func sortContributors(infs []types.Influence) {
	sort.Slice(infs, func(i, j int) bool {
		a, b := infs[i], infs[j]
		if a.TotalInfluence != b.TotalInfluence {
			return a.TotalInfluence > b.TotalInfluence
		}
		if a.DaysElapsed != b.DaysElapsed {
			return a.DaysElapsed < b.DaysElapsed
		}
		if a.DistanceKM != b.DistanceKM {
			return a.DistanceKM < b.DistanceKM
		}
		return a.AccidentID < b.AccidentID
	})
}

const topContributorLimit = 10
