package kernel

import (
	"math"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

// Elevation computes the asymmetric elevation weight. An accident at or
// below the route's elevation (Delta <= 0) always yields the maximum
// weight; one above decays with Gaussian falloff over the route type's
// elevation decay distance, since rockfall and similar hazards above a
// route threaten it in a way hazards below it do not.
func (c *Config) Elevation(plannedRouteType types.RouteType, accidentElevM, routeElevM *float64) float64 {
	if accidentElevM == nil || routeElevM == nil {
		return 1.0
	}

	delta := *accidentElevM - *routeElevM
	if delta <= 0 {
		return 1.0
	}

	d := defaultFor(c.ElevationDecayM, plannedRouteType)
	if d <= 0 {
		return 1.0
	}

	ratio := delta / d
	return math.Exp(-(ratio * ratio))
}
