package aggregator

import (
	"log/slog"
	"runtime"
	"sync"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

// vectorizedChunkSize bounds how many accidents one goroutine scores
// per batch, keeping the parallel fan-out shallow for the typical
// ~2,500-accident candidate set.
const vectorizedChunkSize = 256

// VectorizedAggregator is the hot-path implementation: it computes
// per-accident totals in parallel chunks over a flat slice instead of
// one accident at a time. Its output must agree with ScalarAggregator
// within 1e-6 on the same input.
type VectorizedAggregator struct {
	K                  float64
	WeatherPower       float64
	ExclusionThreshold float64
	logger             *slog.Logger
}

// NewVectorizedAggregator builds a VectorizedAggregator with
// normalization constant k, the weather-similarity amplifier exponent,
// and the similarity exclusion threshold (see ScalarAggregator).
func NewVectorizedAggregator(k, weatherPower, exclusionThreshold float64, logger *slog.Logger) *VectorizedAggregator {
	return &VectorizedAggregator{K: k, WeatherPower: weatherPower, ExclusionThreshold: exclusionThreshold, logger: logger}
}

// Aggregate implements Aggregator.
func (v *VectorizedAggregator) Aggregate(inputs []Weighted) Result {
	totals := make([]float64, len(inputs))

	numWorkers := runtime.NumCPU()
	if numWorkers < 1 {
		numWorkers = 1
	}

	numChunks := (len(inputs) + vectorizedChunkSize - 1) / vectorizedChunkSize
	if numChunks < numWorkers {
		numWorkers = numChunks
	}

	chunks := make(chan [2]int, numChunks)
	for start := 0; start < len(inputs); start += vectorizedChunkSize {
		end := start + vectorizedChunkSize
		if end > len(inputs) {
			end = len(inputs)
		}
		chunks <- [2]int{start, end}
	}
	close(chunks)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range chunks {
				for i := c[0]; i < c[1]; i++ {
					totals[i] = total(inputs[i], v.WeatherPower, v.ExclusionThreshold, v.logger)
				}
			}
		}()
	}
	wg.Wait()

	var raw float64
	var daysElapsed []int
	var aboveHalf int
	contributing := make([]types.Influence, 0, len(inputs))

	for i, w := range inputs {
		t := totals[i]
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
	riskScore := clamp(raw*v.K, 0, 100)

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
		Vectorized:                true,
	}
}
