package cachelayer

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	h3 "github.com/uber/h3-go/v4"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
	pkgcache "github.com/sebastianfrazier26/safeascent-predictor/pkg/cache"
)

// forecastResolution buckets forecast keys at roughly 1 km (H3
// resolution 7 edge length ~1.22 km), matching the spatial kernel's
// smallest bandwidth (boulder, 20 km) closely enough that two requests
// within the same cell are indistinguishable to the kernel.
const forecastResolution = 7

// statsResolution buckets climatological-stats keys at roughly 10 km
// (H3 resolution 5 edge length ~8.5 km).
const statsResolution = 5

// cellString returns the H3 cell index for (lat, lon) at res, as a
// hex string suitable for use in a cache key.
func cellString(lat, lon float64, res int) string {
	cell := h3.LatLngToCell(h3.NewLatLng(lat, lon), res)
	return cell.String()
}

// ForecastKey returns the bucketed forecast cache key for (lat, lon, date).
func ForecastKey(lat, lon float64, date time.Time) string {
	cell := cellString(lat, lon, forecastResolution)
	return pkgcache.ForecastKey(cell, date.Format("2006-01-02"))
}

// StatsKey returns the bucketed climatological-stats cache key.
func StatsKey(lat, lon float64, elevationBucketM int, season string) string {
	cell := cellString(lat, lon, statsResolution)
	return pkgcache.StatsKey(cell, elevationBucketM, season)
}

// Fingerprint hashes a RouteQuery into a stable key for the optional
// prediction-result cache tier (§3: "optionally cached by a request
// fingerprint in a higher tier").
func Fingerprint(q types.RouteQuery) uint64 {
	h := xxhash.New()
	fmt.Fprintf(h, "%.6f|%.6f|%s|%s", q.Latitude, q.Longitude, q.RouteType, q.TargetDate.Format("2006-01-02"))
	if q.ElevationMeters != nil {
		fmt.Fprintf(h, "|%.1f", *q.ElevationMeters)
	}
	return h.Sum64()
}

// PredictionKey returns the cache key for a fingerprinted prediction result.
func PredictionKey(q types.RouteQuery) string {
	return pkgcache.PredictionKey(Fingerprint(q))
}
