package kernel

import (
	"math"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

// monthsApart returns the modular distance between two months (1-12),
// so that December and January are one month apart, not eleven.
func monthsApart(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > 6 {
		d = 12 - d
	}
	return d
}

// Temporal computes w_time = lambda^n * s, where n is days elapsed
// (clamped to >= 0) and s is the seasonal boost when target and
// accident months fall within one of each other, modularly.
func (c *Config) Temporal(plannedRouteType types.RouteType, daysElapsed int, targetMonth, accidentMonth int) float64 {
	if daysElapsed < 0 {
		daysElapsed = 0
	}
	lambda := defaultFor(c.TemporalDecay, plannedRouteType)

	s := 1.0
	if monthsApart(targetMonth, accidentMonth) <= 1 {
		s = SeasonalBoost
	}

	return math.Pow(lambda, float64(daysElapsed)) * s
}
