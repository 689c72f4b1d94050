// Package orchestrator implements the Prediction Orchestrator (C7):
// the end-to-end handler that validates a query, resolves elevation,
// loads and filters accidents, fetches weather, scores influences, and
// assembles the response.
package orchestrator

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/aggregator"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/cachelayer"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/elevation"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/kernel"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/similarity"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/weather"
)

// AccidentLoader is the subset of the Accident Store the orchestrator
// depends on.
type AccidentLoader interface {
	LoadAll(ctx context.Context) ([]types.AccidentRecord, error)
	AttachWeatherWindows(ctx context.Context, records []types.AccidentRecord) error
}

// ElevationResolver is the subset of the elevation package used here,
// declared consumer-side so tests can substitute a fake without
// importing net/http machinery.
type ElevationResolver interface {
	Resolve(ctx context.Context, lat, lon float64) (*float64, error)
}

// PredictionCache is the optional, out-of-core-scope prediction-result
// tier named in §3 ("optionally cached by a request fingerprint in a
// higher tier"). May be nil, in which case every request is scored
// fresh.
type PredictionCache interface {
	GetPrediction(ctx context.Context, key string) (types.Prediction, bool)
	SetPrediction(ctx context.Context, key string, p types.Prediction, ttl time.Duration)
}

// Orchestrator wires together every core component into the single
// synchronous Predict(ctx, query) entry point.
type Orchestrator struct {
	kernelConfig      *kernel.Config
	accidentLoader    AccidentLoader
	weatherFetcher    *weather.Fetcher
	elevationResolver ElevationResolver
	predictionCache   PredictionCache
	predictionTTL     time.Duration
	scalarAggregator  aggregator.Aggregator
	vectorAggregator  aggregator.Aggregator
	useVectorized     bool
	verifyAggregator  bool
	localRadiusKM     float64
	strictRouteTypeThreshold float64
	logger            *slog.Logger
}

// Options bundles the tunables the orchestrator needs from the shared
// service configuration.
type Options struct {
	NormalizationK             float64
	LocalRadiusKM              float64
	StrictRouteTypeThreshold   float64
	WeatherPower               float64
	SimilarityExclusionThreshold float64
	PredictionTTL              time.Duration
	UseVectorizedAggregator    bool
	VerifyAggregator           bool
}

// New builds an Orchestrator from its dependencies. predictionCache may
// be nil, in which case the optional result tier is skipped entirely.
func New(
	kernelConfig *kernel.Config,
	accidentLoader AccidentLoader,
	weatherFetcher *weather.Fetcher,
	elevationResolver ElevationResolver,
	predictionCache PredictionCache,
	opts Options,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		kernelConfig:             kernelConfig,
		accidentLoader:           accidentLoader,
		weatherFetcher:           weatherFetcher,
		elevationResolver:        elevationResolver,
		predictionCache:          predictionCache,
		predictionTTL:            opts.PredictionTTL,
		scalarAggregator:         aggregator.NewScalarAggregator(opts.NormalizationK, opts.WeatherPower, opts.SimilarityExclusionThreshold, logger),
		vectorAggregator:         aggregator.NewVectorizedAggregator(opts.NormalizationK, opts.WeatherPower, opts.SimilarityExclusionThreshold, logger),
		useVectorized:            opts.UseVectorizedAggregator,
		verifyAggregator:         opts.VerifyAggregator,
		localRadiusKM:            opts.LocalRadiusKM,
		strictRouteTypeThreshold: opts.StrictRouteTypeThreshold,
		logger:                   logger,
	}
}

// Predict runs the full seven-step flow described in §4.7. Every
// suspension point (elevation lookup, accident load, weather fetch)
// checks ctx between steps so a canceled or expired context abandons
// work at the next checkpoint rather than mid-computation.
func (o *Orchestrator) Predict(ctx context.Context, query types.RouteQuery) (*types.Prediction, error) {
	// Step 1: validate.
	if err := ValidateQuery(&query); err != nil {
		return nil, err
	}

	predictionCacheKey := cachelayer.PredictionKey(query)
	if o.predictionCache != nil {
		if cached, ok := o.predictionCache.GetPrediction(ctx, predictionCacheKey); ok {
			return &cached, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, types.NewTimeout("request canceled before elevation resolution")
	}

	// Step 2: resolve elevation, non-fatal on failure.
	if query.ElevationMeters == nil {
		query.ElevationMeters = elevation.ResolveOrNil(ctx, o.elevationResolver, query.Latitude, query.Longitude, o.logger)
	}

	if err := ctx.Err(); err != nil {
		return nil, types.NewTimeout("request canceled before accident load")
	}

	// Step 3: load all accidents.
	allAccidents, err := o.loadAllWithRetry(ctx)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, types.NewTimeout("request canceled before candidate filtering")
	}

	// Step 4: candidate filter.
	candidates := o.filterCandidates(query, allAccidents)

	if len(candidates) == 0 {
		prediction := &types.Prediction{
			RiskScore:                0,
			Confidence:                0,
			NumContributingAccidents:  0,
			TopContributingAccidents:  []types.Contributor{},
			Metadata: types.Metadata{
				RouteType:  string(query.RouteType),
				TargetDate: query.TargetDate.Format("2006-01-02"),
				Vectorized: o.useVectorized,
				Degraded:   false,
			},
		}
		o.cachePrediction(ctx, predictionCacheKey, *prediction)
		return prediction, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, types.NewTimeout("request canceled before weather fetch")
	}

	// Step 5: fetch route weather, the climatological stats used to
	// normalize similarity (§4.2), and attach accident weather windows.
	routeWeather, degraded := o.weatherFetcher.FetchForecastOrNeutral(ctx, query.Latitude, query.Longitude, query.TargetDate)
	stats := o.resolveStats(ctx, query)

	if err := o.attachWeatherWithRetry(ctx, candidates); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, types.NewTimeout("request canceled before influence scoring")
	}

	// Step 6: compute influences.
	weighted := o.computeWeighted(query, candidates, routeWeather, stats)

	// Step 7: assemble the prediction.
	result := o.aggregate(weighted)

	prediction := &types.Prediction{
		RiskScore:                round2(result.RiskScore),
		Confidence:                round2(result.Confidence),
		NumContributingAccidents: result.NumContributingAccidents,
		TopContributingAccidents: toContributors(result.TopContributors),
		Metadata: types.Metadata{
			RouteType:  string(query.RouteType),
			TargetDate: query.TargetDate.Format("2006-01-02"),
			Vectorized: result.Vectorized,
			Degraded:   degraded,
		},
	}

	o.cachePrediction(ctx, predictionCacheKey, *prediction)
	return prediction, nil
}

// cachePrediction writes p to the optional prediction-result tier. A
// nil predictionCache makes this a no-op.
func (o *Orchestrator) cachePrediction(ctx context.Context, key string, p types.Prediction) {
	if o.predictionCache == nil {
		return
	}
	o.predictionCache.SetPrediction(ctx, key, p, o.predictionTTL)
}

// resolveStats fetches the climatological statistics for the query's
// location, elevation bucket, and season (§4.1's fetch_statistics),
// used as the similarity function's normalization denominator. Failure
// is non-fatal: a nil Stats makes similarity fall back to an
// unnormalized (stddev=1) difference rather than aborting the request.
func (o *Orchestrator) resolveStats(ctx context.Context, query types.RouteQuery) *types.Stats {
	bucket := elevationBucketMeters(query.ElevationMeters)
	season := seasonForMonth(query.TargetDate.Month())

	stats, err := o.weatherFetcher.FetchStatistics(ctx, query.Latitude, query.Longitude, bucket, season)
	if err != nil {
		o.logger.Warn("climatological statistics unavailable, similarity will use unnormalized differences", "error", err)
		return nil
	}
	return &stats
}

// elevationBucketMeters rounds to the nearest 100m per the stats cache
// key's elev_100m convention (§4.1). A nil elevation buckets to 0,
// matching an unknown-elevation query's own default.
func elevationBucketMeters(elevationMeters *float64) int {
	if elevationMeters == nil {
		return 0
	}
	return int(math.Round(*elevationMeters/100)) * 100
}

// seasonForMonth buckets a calendar month into one of the four
// meteorological (Northern Hemisphere) seasons used as the stats cache
// key's season component.
func seasonForMonth(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "fall"
	}
}

// filterCandidates retains accidents within localRadiusKM or whose
// route-type compatibility meets strictRouteTypeThreshold. Both bounds
// are inclusive per the specification's boundary test.
func (o *Orchestrator) filterCandidates(query types.RouteQuery, all []types.AccidentRecord) []types.AccidentRecord {
	candidates := make([]types.AccidentRecord, 0, len(all))
	for _, rec := range all {
		d := kernel.HaversineKM(query.Latitude, query.Longitude, rec.Latitude, rec.Longitude)
		r := o.kernelConfig.RouteType(query.RouteType, rec.RouteType)
		if d <= o.localRadiusKM || r >= o.strictRouteTypeThreshold {
			candidates = append(candidates, rec)
		}
	}
	return candidates
}

// computeWeighted runs the weight kernels and the weather-similarity
// function for each candidate. This loop is purely CPU-bound: every
// input (route weather, accident weather windows) has already been
// resolved, so nothing here suspends.
func (o *Orchestrator) computeWeighted(query types.RouteQuery, candidates []types.AccidentRecord, routeWeather types.WeatherPattern, stats *types.Stats) []aggregator.Weighted {
	targetMonth := int(query.TargetDate.Month())
	weighted := make([]aggregator.Weighted, 0, len(candidates))

	for _, rec := range candidates {
		d := kernel.HaversineKM(query.Latitude, query.Longitude, rec.Latitude, rec.Longitude)
		daysElapsed := int(query.TargetDate.Sub(rec.AccidentDate).Hours() / 24)
		accidentMonth := int(rec.AccidentDate.Month())

		spatialW := o.kernelConfig.Spatial(query.RouteType, d)
		temporalW := o.kernelConfig.Temporal(query.RouteType, daysElapsed, targetMonth, accidentMonth)
		elevationW := o.kernelConfig.Elevation(query.RouteType, rec.ElevationMeters, query.ElevationMeters)
		routeTypeW := o.kernelConfig.RouteType(query.RouteType, rec.RouteType)
		severityW := o.kernelConfig.Severity(rec.Severity)

		accidentWeather := types.NewNeutralWeatherPattern()
		if rec.WeatherPattern != nil {
			accidentWeather = *rec.WeatherPattern
		}
		simResult := similarity.Compute(o.kernelConfig, routeWeather, accidentWeather, stats)

		weighted = append(weighted, aggregator.Weighted{
			AccidentID:        rec.ID,
			DistanceKM:        d,
			DaysElapsed:       daysElapsed,
			SpatialW:          spatialW,
			TemporalW:         temporalW,
			ElevationW:        elevationW,
			RouteTypeW:        routeTypeW,
			SeverityW:         severityW,
			WeatherSimilarity: simResult.Score,
			Severity:          rec.Severity,
		})
	}

	return weighted
}

// aggregate selects between the scalar and vectorized implementations
// per configuration, optionally cross-checking them against each other
// when verifyAggregator is enabled.
func (o *Orchestrator) aggregate(weighted []aggregator.Weighted) aggregator.Result {
	if !o.useVectorized {
		return o.scalarAggregator.Aggregate(weighted)
	}

	result := o.vectorAggregator.Aggregate(weighted)

	if o.verifyAggregator {
		reference := o.scalarAggregator.Aggregate(weighted)
		if math.Abs(reference.RiskScore-result.RiskScore) > 1e-6 {
			o.logger.Warn("scalar/vectorized aggregator disagreement",
				"scalar_risk_score", reference.RiskScore,
				"vectorized_risk_score", result.RiskScore)
		}
	}

	return result
}

// loadAllWithRetry retries a single time on failure, per §7's
// ResourceUnavailable policy, before surfacing the error.
func (o *Orchestrator) loadAllWithRetry(ctx context.Context) ([]types.AccidentRecord, error) {
	records, err := o.accidentLoader.LoadAll(ctx)
	if err == nil {
		return records, nil
	}

	o.logger.Warn("accident load failed, retrying once", "error", err)
	records, err = o.accidentLoader.LoadAll(ctx)
	if err != nil {
		return nil, types.NewResourceUnavailable("accident store unavailable after retry", err)
	}
	return records, nil
}

func (o *Orchestrator) attachWeatherWithRetry(ctx context.Context, candidates []types.AccidentRecord) error {
	err := o.accidentLoader.AttachWeatherWindows(ctx, candidates)
	if err == nil {
		return nil
	}

	o.logger.Warn("weather window attach failed, retrying once", "error", err)
	if err := o.accidentLoader.AttachWeatherWindows(ctx, candidates); err != nil {
		return types.NewResourceUnavailable("accident weather windows unavailable after retry", err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toContributors(infs []types.Influence) []types.Contributor {
	out := make([]types.Contributor, len(infs))
	for i, inf := range infs {
		out[i] = types.Contributor{
			AccidentID:     inf.AccidentID,
			DistanceKM:     round2(inf.DistanceKM),
			DaysAgo:        inf.DaysElapsed,
			TotalInfluence: round2(inf.TotalInfluence),
			Severity:       string(inf.Severity),
		}
	}
	return out
}
