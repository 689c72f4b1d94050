package kernel

import "github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"

// Severity returns the [1.0, 1.3] severity booster for an accident.
func (c *Config) Severity(severity types.Severity) float64 {
	if v, ok := c.SeverityBooster[severity]; ok {
		return v
	}
	return c.SeverityBooster[types.SeverityUnknown]
}
