package cache

import "fmt"

// Key construction helpers for the two-tier cache layer (C6). Spatial
// components are pre-bucketed (H3 cell string, or a fixed-precision
// decimal string) by the caller before these are invoked, so the
// bucketing policy lives in internal/core/cachelayer, not here.

// ForecastKey returns the key for a cached weather forecast.
// Pattern: forecast:{cell}:{date}
func ForecastKey(cell, date string) string {
	return fmt.Sprintf("forecast:%s:%s", cell, date)
}

// StatsKey returns the key for cached climatological statistics.
// Pattern: stats:{cell}:{elevationBand}:{season}
func StatsKey(cell string, elevationBand int, season string) string {
	return fmt.Sprintf("stats:%s:%d:%s", cell, elevationBand, season)
}

// PredictionKey returns the key for an optional cached prediction result,
// keyed by a request fingerprint rather than raw coordinates.
// Pattern: prediction:{fingerprint}
func PredictionKey(fingerprint uint64) string {
	return fmt.Sprintf("prediction:%x", fingerprint)
}

// PrefixPattern returns a Keys()-compatible glob for clearing every key
// under a given namespace ("forecast", "stats", "prediction").
func PrefixPattern(prefix string) string {
	return fmt.Sprintf("%s:*", prefix)
}
