// Package kernel implements the five weight kernels (C4): spatial,
// temporal, elevation, route-type matrix, and severity booster. Each
// kernel is a small pure function of its inputs and the read-only
// Config built once at process startup.
package kernel

import "github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"

// SeasonalBoost is the multiplier applied to the temporal weight when
// the target and accident months are within one of each other
// (modular). Fixed at 1.5 per the specification's Open Question
// resolution.
const SeasonalBoost = 1.5

// Config is the read-only, per-route-type physical-constant table
// described by the "enumerated config" design note: spatial bandwidths,
// temporal decay factors, elevation decay constants, the route-type
// matrix, severity boosters, and similarity variable weights. It is
// built once (NewDefaultConfig) and shared across every concurrent
// request — nothing here is mutated after construction.
type Config struct {
	// SpatialBandwidthKM is sigma in the Gaussian spatial kernel, by
	// planned route type.
	SpatialBandwidthKM map[types.RouteType]float64

	// TemporalDecay is the daily decay factor lambda, by planned route
	// type.
	TemporalDecay map[types.RouteType]float64

	// ElevationDecayM is the decay constant D (meters), by planned
	// route type.
	ElevationDecayM map[types.RouteType]float64

	// SeverityBooster maps accident severity to its [1.0, 1.3] booster.
	SeverityBooster map[types.Severity]float64

	// RouteTypeMatrix is the 7x7 (planned, accident) compatibility
	// table, loaded from data/route_type_matrix.yaml.
	RouteTypeMatrix RouteTypeMatrix

	// SimilarityWeights are the per-variable weights used by the
	// weather similarity function (C2): precipitation, wind,
	// temperature, cloud cover, visibility.
	SimilarityWeights map[string]float64
}

// defaultFor looks up a per-route-type table entry, falling back to the
// table's "default" bucket for any route type not explicitly listed
// (notably RouteUnknown).
func defaultFor(table map[types.RouteType]float64, rt types.RouteType) float64 {
	if v, ok := table[rt]; ok {
		return v
	}
	return table[types.RouteUnknown]
}

// NewDefaultConfig builds the Config with the constants named in
// spec §4.4, loading the route-type matrix from matrixPath.
func NewDefaultConfig(matrixPath string) (*Config, error) {
	matrix, err := LoadRouteTypeMatrix(matrixPath)
	if err != nil {
		return nil, err
	}

	return &Config{
		SpatialBandwidthKM: map[types.RouteType]float64{
			types.RouteAlpine:  75,
			types.RouteIce:     75,
			types.RouteMixed:   75,
			types.RouteTrad:    50,
			types.RouteAid:     50,
			types.RouteSport:   30,
			types.RouteBoulder: 20,
			types.RouteUnknown: 50,
		},
		TemporalDecay: map[types.RouteType]float64{
			types.RouteAlpine:  0.9995,
			types.RouteIce:     0.9995,
			types.RouteMixed:   0.9995,
			types.RouteTrad:    0.9990,
			types.RouteAid:     0.9990,
			types.RouteSport:   0.9990,
			types.RouteBoulder: 0.9985,
			types.RouteUnknown: 0.9990,
		},
		ElevationDecayM: map[types.RouteType]float64{
			types.RouteAlpine:  800,
			types.RouteIce:     800,
			types.RouteMixed:   800,
			types.RouteTrad:    1200,
			types.RouteAid:     1200,
			types.RouteSport:   1800,
			types.RouteBoulder: 3000,
			types.RouteUnknown: 1200,
		},
		SeverityBooster: map[types.Severity]float64{
			types.SeverityFatal:    1.30,
			types.SeveritySerious:  1.20,
			types.SeverityModerate: 1.10,
			types.SeverityMinor:    1.00,
			types.SeverityUnknown:  1.00,
		},
		RouteTypeMatrix: matrix,
		SimilarityWeights: map[string]float64{
			"precipitation": 0.30,
			"wind":          0.25,
			"temperature":   0.20,
			"cloud_cover":   0.15,
			"visibility":    0.10,
		},
	}, nil
}
