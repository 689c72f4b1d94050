package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sebastianfrazier26/safeascent-predictor/pkg/cache"
	"github.com/sebastianfrazier26/safeascent-predictor/pkg/postgres"
)

// Checker provides health check functionality for the prediction service.
type Checker struct {
	postgres       postgres.Client
	cache          cache.Client
	weatherBreaker *gobreaker.CircuitBreaker
	logger         *slog.Logger
}

// NewChecker creates a new health checker with the given dependencies.
// weatherBreaker may be nil if the circuit breaker is disabled.
func NewChecker(pg postgres.Client, c cache.Client, weatherBreaker *gobreaker.CircuitBreaker, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		postgres:       pg,
		cache:          c,
		weatherBreaker: weatherBreaker,
		logger:         logger,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp string    `json:"timestamp"`
	Services  *Services `json:"services,omitempty"`
}

// Services represents the status of external dependencies.
type Services struct {
	Postgres      string `json:"postgres"`
	Cache         string `json:"cache"`
	WeatherBreaker string `json:"weather_breaker"`
}

// HandlerFunc returns a fast liveness handler: 200 if the process is
// alive, without checking any dependency. Keeps the probe cheap for
// orchestrators that poll it frequently.
func (h *Checker) HandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("failed to encode health response", "error", err)
		}
	}
}

// DetailedHandlerFunc returns a readiness handler that checks Postgres,
// the cache, and the weather circuit breaker. An open breaker is folded
// into "degraded" rather than "unhealthy": the service can still answer
// requests using cached and climatological data with the breaker open.
func (h *Checker) DetailedHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := &Services{
			Postgres:       "unknown",
			Cache:          "unknown",
			WeatherBreaker: "unknown",
		}

		status := "healthy"
		statusCode := http.StatusOK

		if h.postgres != nil {
			if _, err := h.postgres.HealthCheck(ctx); err != nil {
				services.Postgres = "disconnected"
			} else {
				services.Postgres = "connected"
			}
		}
		if services.Postgres == "disconnected" {
			status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		}

		if h.cache != nil {
			if err := h.cache.Ping(ctx); err != nil {
				services.Cache = "disconnected"
				if status == "healthy" {
					status = "degraded"
					statusCode = http.StatusOK
				}
			} else {
				services.Cache = "connected"
			}
		}

		if h.weatherBreaker != nil {
			state := h.weatherBreaker.State()
			services.WeatherBreaker = state.String()
			if state == gobreaker.StateOpen && status == "healthy" {
				status = "degraded"
			}
		}

		response := HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Services:  services,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("failed to encode health response", "error", err)
		}
	}
}
