// Package elevation implements the outbound elevation point lookup
// named in §6. Failure is always non-fatal: the Orchestrator proceeds
// with a nil elevation rather than aborting, so this package makes a
// single attempt and never retries.
package elevation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Resolver looks up ground elevation for a point.
type Resolver interface {
	Resolve(ctx context.Context, lat, lon float64) (*float64, error)
}

// HTTPResolver is the production Resolver: a single HTTPS JSON point
// lookup with no retry, matching §7's "Elevation UpstreamUnavailable is
// always recovered locally" policy.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPResolver builds an HTTPResolver.
func NewHTTPResolver(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type elevationResponse struct {
	ElevationMeters *float64 `json:"elevation_meters"`
}

// Resolve performs one HTTPS point lookup. Any failure — transport
// error, non-200 status, or decode error — is returned so the caller
// can log it, but is never retried here.
func (r *HTTPResolver) Resolve(ctx context.Context, lat, lon float64) (*float64, error) {
	url := fmt.Sprintf("%s/elevation?lat=%f&lon=%f", r.baseURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building elevation request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevation request transport error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevation provider returned status %d", resp.StatusCode)
	}

	var out elevationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding elevation response: %w", err)
	}

	return out.ElevationMeters, nil
}

// ResolveOrNil calls Resolve and swallows any error, logging it and
// returning nil so the caller can proceed unconditionally.
func ResolveOrNil(ctx context.Context, r Resolver, lat, lon float64, logger *slog.Logger) *float64 {
	if logger == nil {
		logger = slog.Default()
	}
	elev, err := r.Resolve(ctx, lat, lon)
	if err != nil {
		logger.Warn("elevation lookup failed, proceeding without elevation", "error", err)
		return nil
	}
	return elev
}
