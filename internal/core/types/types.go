// Package types holds the data model shared across every core component:
// weather observations, accident records, the inbound query, and the
// outbound prediction.
package types

import "time"

// RouteType is the closed enum of climbing discipline a route or an
// accident can be classified under.
type RouteType string

const (
	RouteAlpine  RouteType = "alpine"
	RouteIce     RouteType = "ice"
	RouteMixed   RouteType = "mixed"
	RouteTrad    RouteType = "trad"
	RouteAid     RouteType = "aid"
	RouteSport   RouteType = "sport"
	RouteBoulder RouteType = "boulder"
	RouteUnknown RouteType = "unknown"
)

// ValidRouteTypes enumerates every accepted value for inbound validation.
var ValidRouteTypes = map[RouteType]bool{
	RouteAlpine:  true,
	RouteIce:     true,
	RouteMixed:   true,
	RouteTrad:    true,
	RouteAid:     true,
	RouteSport:   true,
	RouteBoulder: true,
	RouteUnknown: true,
}

// Severity is the closed enum of accident severity.
type Severity string

const (
	SeverityFatal    Severity = "fatal"
	SeveritySerious  Severity = "serious"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
	SeverityUnknown  Severity = "unknown"
)

// DailyObservation is one day of a WeatherPattern window. Pointer fields
// are nil when the source did not report that variable; similarity
// treats a nil field as neutral rather than zero.
type DailyObservation struct {
	TemperatureAvg     *float64
	TemperatureMin     *float64
	TemperatureMax     *float64
	WindSpeedAvg       *float64
	WindSpeedMax       *float64
	PrecipitationTotal *float64
	CloudCoverAvg      *float64
	VisibilityAvg      *float64
}

// IsEmpty reports whether every field of the observation is absent.
func (d DailyObservation) IsEmpty() bool {
	return d.TemperatureAvg == nil && d.TemperatureMin == nil && d.TemperatureMax == nil &&
		d.WindSpeedAvg == nil && d.WindSpeedMax == nil && d.PrecipitationTotal == nil &&
		d.CloudCoverAvg == nil && d.VisibilityAvg == nil
}

// WeatherPattern is a 7-day window of daily observations, index 0 being
// six days before the anchor date and index 6 being the anchor date
// itself. A neutral pattern (every day empty) stands in for a window
// that could not be retrieved.
type WeatherPattern struct {
	Days [7]DailyObservation
}

// NewNeutralWeatherPattern returns a WeatherPattern with every field
// absent — the placeholder used on upstream failure.
func NewNeutralWeatherPattern() WeatherPattern {
	return WeatherPattern{}
}

// IsNeutral reports whether every day in the window carries no data.
func (w WeatherPattern) IsNeutral() bool {
	for _, d := range w.Days {
		if !d.IsEmpty() {
			return false
		}
	}
	return true
}

// VariableStats holds the climatological mean and standard deviation for
// one weather variable; the similarity function divides that variable's
// day-to-day difference by StdDev when it is positive.
type VariableStats struct {
	Mean   float64
	StdDev float64
}

// Stats is the climatological statistics returned by fetch_statistics,
// keyed by variable name ("temperature", "wind", "precipitation",
// "cloud_cover", "visibility").
type Stats struct {
	Variables map[string]VariableStats
}

// AccidentRecord is immutable for the lifetime of one request.
type AccidentRecord struct {
	ID              int64
	Latitude        float64
	Longitude       float64
	ElevationMeters *float64
	AccidentDate    time.Time
	RouteType       RouteType
	Severity        Severity
	WeatherPattern  *WeatherPattern
}

// RouteQuery is the inbound prediction request payload.
type RouteQuery struct {
	Latitude        float64
	Longitude       float64
	ElevationMeters *float64
	RouteType       RouteType
	TargetDate      time.Time
	SearchRadiusKM  *float64
}

// Influence is the per-accident scoring record produced by the
// aggregator (C5) from the weight kernels (C4) and weather similarity
// (C2).
type Influence struct {
	AccidentID        int64
	DistanceKM        float64
	DaysElapsed        int
	SpatialW          float64
	TemporalW         float64
	ElevationW        float64
	RouteTypeW        float64
	SeverityW         float64
	WeatherSimilarity float64
	TotalInfluence    float64
	Severity          Severity
}

// Contributor is the externally-visible, rounded view of an Influence
// selected into a Prediction's top-contributors list.
type Contributor struct {
	AccidentID     int64   `json:"accident_id"`
	DistanceKM     float64 `json:"distance_km"`
	DaysAgo        int     `json:"days_ago"`
	TotalInfluence float64 `json:"total_influence"`
	Severity       string  `json:"severity"`
}

// Metadata carries the degradation and provenance flags surfaced with
// every Prediction.
type Metadata struct {
	RouteType  string `json:"route_type"`
	TargetDate string `json:"target_date"`
	Vectorized bool   `json:"vectorized"`
	Degraded   bool   `json:"degraded"`
}

// Prediction is the outbound response (§6).
type Prediction struct {
	RiskScore                float64       `json:"risk_score"`
	Confidence                float64       `json:"confidence"`
	NumContributingAccidents int           `json:"num_contributing_accidents"`
	TopContributingAccidents []Contributor `json:"top_contributing_accidents"`
	Metadata                  Metadata      `json:"metadata"`
}
