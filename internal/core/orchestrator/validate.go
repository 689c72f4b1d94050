package orchestrator

import (
	"fmt"
	"time"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

const (
	minSearchRadiusKM = 10.0
	maxSearchRadiusKM = 500.0
	defaultSearchRadiusKM = 50.0
)

// ValidateQuery checks a RouteQuery's bounds and returns an
// InvalidInput error naming the offending field, or nil if the query
// is well formed. It does not mutate query except to apply the legacy
// default search radius when the field is absent.
func ValidateQuery(query *types.RouteQuery) error {
	if query.Latitude < -90 || query.Latitude > 90 {
		return types.NewInvalidInput("latitude", fmt.Sprintf("latitude %v out of range [-90,90]", query.Latitude))
	}
	if query.Longitude < -180 || query.Longitude > 180 {
		return types.NewInvalidInput("longitude", fmt.Sprintf("longitude %v out of range [-180,180]", query.Longitude))
	}
	if !types.ValidRouteTypes[query.RouteType] {
		return types.NewInvalidInput("route_type", fmt.Sprintf("unrecognized route_type %q", query.RouteType))
	}
	if query.TargetDate.IsZero() {
		return types.NewInvalidInput("target_date", "target_date is required and must be an ISO YYYY-MM-DD date")
	}
	if query.SearchRadiusKM != nil {
		r := *query.SearchRadiusKM
		if r < minSearchRadiusKM || r > maxSearchRadiusKM {
			return types.NewInvalidInput("search_radius_km", fmt.Sprintf("search_radius_km %v out of range [%v,%v]", r, minSearchRadiusKM, maxSearchRadiusKM))
		}
	} else {
		r := defaultSearchRadiusKM
		query.SearchRadiusKM = &r
	}
	return nil
}

// parseTargetDate parses the inbound ISO date string, returning
// InvalidInput on a malformed value.
func parseTargetDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, types.NewInvalidInput("target_date", fmt.Sprintf("target_date %q is not a valid YYYY-MM-DD date", raw))
	}
	return t, nil
}
