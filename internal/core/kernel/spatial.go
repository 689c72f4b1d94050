package kernel

import (
	"math"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

const earthRadiusKM = 6371.0088

// HaversineKM returns the great-circle distance in kilometers between
// two WGS84 points.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

// Spatial computes the Gaussian spatial weight w_space = exp(-d^2 /
// (2*sigma^2)) where sigma is the planned route type's bandwidth.
func (c *Config) Spatial(plannedRouteType types.RouteType, distanceKM float64) float64 {
	sigma := defaultFor(c.SpatialBandwidthKM, plannedRouteType)
	if sigma <= 0 {
		return 0
	}
	return math.Exp(-(distanceKM * distanceKM) / (2 * sigma * sigma))
}
