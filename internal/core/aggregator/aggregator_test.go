package aggregator

import (
	"math"
	"testing"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

func TestTotalExcludesBelowSimilarityThreshold(t *testing.T) {
	w := Weighted{SpatialW: 1, TemporalW: 1, ElevationW: 1, RouteTypeW: 1, SeverityW: 1, WeatherSimilarity: 0.24}
	if got := total(w, 2.0, 0.25, nil); got != 0 {
		t.Fatalf("expected exclusion below threshold, got %v", got)
	}
}

func TestTotalAppliesQuadraticAmplifier(t *testing.T) {
	w := Weighted{SpatialW: 0.5, TemporalW: 1, ElevationW: 1, RouteTypeW: 1, SeverityW: 1, WeatherSimilarity: 0.8}
	want := 0.5 * 0.8 * 0.8
	if got := total(w, 2.0, 0.25, nil); math.Abs(got-want) > 1e-9 {
		t.Fatalf("total() = %v, want %v", got, want)
	}
}

func TestTotalTreatsNaNBaseAsExcluded(t *testing.T) {
	w := Weighted{SpatialW: math.NaN(), TemporalW: 1, ElevationW: 1, RouteTypeW: 1, SeverityW: 1, WeatherSimilarity: 1}
	if got := total(w, 2.0, 0.25, nil); got != 0 {
		t.Fatalf("expected NaN base to exclude, got %v", got)
	}
}

func TestZeroContributorsYieldsZeroConfidence(t *testing.T) {
	s := NewScalarAggregator(10.0, 2.0, 0.25, nil)
	result := s.Aggregate(nil)
	if result.RiskScore != 0 || result.Confidence != 0 || result.NumContributingAccidents != 0 {
		t.Fatalf("expected all-zero result for empty input, got %+v", result)
	}
}

func TestTopContributorTieBreakOrder(t *testing.T) {
	inputs := []Weighted{
		{AccidentID: 3, DistanceKM: 5, DaysElapsed: 10, SpatialW: 1, TemporalW: 1, ElevationW: 1, RouteTypeW: 1, SeverityW: 1, WeatherSimilarity: 1},
		{AccidentID: 1, DistanceKM: 2, DaysElapsed: 10, SpatialW: 1, TemporalW: 1, ElevationW: 1, RouteTypeW: 1, SeverityW: 1, WeatherSimilarity: 1},
		{AccidentID: 2, DistanceKM: 1, DaysElapsed: 5, SpatialW: 1, TemporalW: 1, ElevationW: 1, RouteTypeW: 1, SeverityW: 1, WeatherSimilarity: 1},
	}

	s := NewScalarAggregator(10.0, 2.0, 0.25, nil)
	result := s.Aggregate(inputs)

	if len(result.TopContributors) != 3 {
		t.Fatalf("expected 3 contributors, got %d", len(result.TopContributors))
	}
	// all equal total_influence -> tie-break by days_elapsed asc, then distance_km asc, then accident_id asc
	if result.TopContributors[0].AccidentID != 2 {
		t.Fatalf("expected accident 2 first (lowest days_elapsed), got %d", result.TopContributors[0].AccidentID)
	}
	if result.TopContributors[1].AccidentID != 1 {
		t.Fatalf("expected accident 1 second (lower distance among days_elapsed=10 group), got %d", result.TopContributors[1].AccidentID)
	}
	if result.TopContributors[2].AccidentID != 3 {
		t.Fatalf("expected accident 3 last, got %d", result.TopContributors[2].AccidentID)
	}
}

func TestTopContributorLimitedToTen(t *testing.T) {
	var inputs []Weighted
	for i := int64(0); i < 20; i++ {
		inputs = append(inputs, Weighted{
			AccidentID: i, DistanceKM: float64(i), DaysElapsed: int(i),
			SpatialW: 1, TemporalW: 1, ElevationW: 1, RouteTypeW: 1, SeverityW: 1,
			WeatherSimilarity: 1,
		})
	}
	result := NewScalarAggregator(10.0, 2.0, 0.25, nil).Aggregate(inputs)
	if len(result.TopContributors) != topContributorLimit {
		t.Fatalf("expected %d contributors, got %d", topContributorLimit, len(result.TopContributors))
	}
	if result.NumContributingAccidents != 20 {
		t.Fatalf("expected NumContributingAccidents to reflect all contributors, not just the top slice, got %d", result.NumContributingAccidents)
	}
}

func TestRiskScoreClampedToHundred(t *testing.T) {
	var inputs []Weighted
	for i := int64(0); i < 50; i++ {
		inputs = append(inputs, Weighted{
			AccidentID: i, DistanceKM: 1, DaysElapsed: 1,
			SpatialW: 1, TemporalW: 1, ElevationW: 1, RouteTypeW: 1, SeverityW: 1,
			WeatherSimilarity: 1,
		})
	}
	result := NewScalarAggregator(10.0, 2.0, 0.25, nil).Aggregate(inputs)
	if result.RiskScore != 100 {
		t.Fatalf("expected risk score clamped to 100, got %v", result.RiskScore)
	}
}

// deterministicInputs generates a reproducible pseudo-random candidate
// set without relying on math/rand's global state ordering, so the
// scalar/vectorized agreement test is stable across runs.
func deterministicInputs(n int) []Weighted {
	inputs := make([]Weighted, n)
	state := uint64(88172645463325252)
	next := func() float64 {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		return float64(state%10000) / 10000.0
	}

	severities := []types.Severity{types.SeverityFatal, types.SeveritySerious, types.SeverityModerate, types.SeverityMinor, types.SeverityUnknown}

	for i := 0; i < n; i++ {
		inputs[i] = Weighted{
			AccidentID:        int64(i),
			DistanceKM:        next() * 50,
			DaysElapsed:       int(next() * 3650),
			SpatialW:          next(),
			TemporalW:         next(),
			ElevationW:        next(),
			RouteTypeW:        next(),
			SeverityW:         0.9 + next()*0.4,
			WeatherSimilarity: next(),
			Severity:          severities[i%len(severities)],
		}
	}
	return inputs
}

func TestScalarAndVectorizedAgreeOnLargeCandidateSet(t *testing.T) {
	inputs := deterministicInputs(2500)

	scalarResult := NewScalarAggregator(10.0, 2.0, 0.25, nil).Aggregate(inputs)
	vectorResult := NewVectorizedAggregator(10.0, 2.0, 0.25, nil).Aggregate(inputs)

	const tolerance = 1e-6

	if math.Abs(scalarResult.RiskScore-vectorResult.RiskScore) > tolerance {
		t.Fatalf("risk score mismatch: scalar=%v vectorized=%v", scalarResult.RiskScore, vectorResult.RiskScore)
	}
	if math.Abs(scalarResult.Confidence-vectorResult.Confidence) > tolerance {
		t.Fatalf("confidence mismatch: scalar=%v vectorized=%v", scalarResult.Confidence, vectorResult.Confidence)
	}
	if scalarResult.NumContributingAccidents != vectorResult.NumContributingAccidents {
		t.Fatalf("contributor count mismatch: scalar=%d vectorized=%d", scalarResult.NumContributingAccidents, vectorResult.NumContributingAccidents)
	}
	if len(scalarResult.TopContributors) != len(vectorResult.TopContributors) {
		t.Fatalf("top contributor list length mismatch: scalar=%d vectorized=%d", len(scalarResult.TopContributors), len(vectorResult.TopContributors))
	}
	for i := range scalarResult.TopContributors {
		a, b := scalarResult.TopContributors[i], vectorResult.TopContributors[i]
		if a.AccidentID != b.AccidentID {
			t.Fatalf("top contributor %d mismatch: scalar=%d vectorized=%d", i, a.AccidentID, b.AccidentID)
		}
		if math.Abs(a.TotalInfluence-b.TotalInfluence) > tolerance {
			t.Fatalf("top contributor %d total_influence mismatch: scalar=%v vectorized=%v", i, a.TotalInfluence, b.TotalInfluence)
		}
	}
}
