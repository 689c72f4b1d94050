// Package httpapi implements the inbound JSON prediction surface (§6):
// a single entry point that validates, delegates to the orchestrator,
// and maps error kinds onto HTTP status codes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

// Predictor is the subset of the orchestrator the HTTP layer depends
// on, declared consumer-side so handler tests can substitute a fake.
type Predictor interface {
	Predict(ctx context.Context, query types.RouteQuery) (*types.Prediction, error)
}

// NewRouter builds the chi router serving the prediction endpoint.
func NewRouter(predictor Predictor, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	h := &handler{predictor: predictor, logger: logger}
	r.Post("/v1/predictions", h.predict)

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, req)
			logger.Info("request handled",
				"method", req.Method,
				"path", req.URL.Path,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(req.Context()))
		})
	}
}
