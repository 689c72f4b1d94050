package httpapi

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

type handler struct {
	predictor Predictor
	logger    *slog.Logger
}

// predictionRequest is the inbound JSON payload (§6).
type predictionRequest struct {
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	ElevationMeters *float64 `json:"elevation_meters,omitempty"`
	RouteType       string   `json:"route_type"`
	TargetDate      string   `json:"target_date"`
	SearchRadiusKM  *float64 `json:"search_radius_km,omitempty"`
}

// predictionResponse is the outbound JSON payload (§6), with every
// floating value rounded to two decimals at the boundary.
type predictionResponse struct {
	RiskScore                float64       `json:"risk_score"`
	Confidence                float64       `json:"confidence"`
	NumContributingAccidents int           `json:"num_contributing_accidents"`
	TopContributingAccidents []contributor `json:"top_contributing_accidents"`
	Metadata                  metadata      `json:"metadata"`
}

type contributor struct {
	AccidentID     int64   `json:"accident_id"`
	DistanceKM     float64 `json:"distance_km"`
	DaysAgo        int     `json:"days_ago"`
	TotalInfluence float64 `json:"total_influence"`
	Severity       string  `json:"severity"`
}

type metadata struct {
	RouteType  string `json:"route_type"`
	TargetDate string `json:"target_date"`
	Vectorized bool   `json:"vectorized"`
	Degraded   bool   `json:"degraded"`
}

// fieldError is one entry in a validationErrorResponse.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationErrorResponse struct {
	Errors []fieldError `json:"errors"`
}

type genericErrorResponse struct {
	Error string `json:"error"`
}

func (h *handler) predict(w http.ResponseWriter, r *http.Request) {
	var req predictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "body", "request body is not valid JSON")
		return
	}

	targetDate, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		writeValidationError(w, "target_date", "target_date must be an ISO YYYY-MM-DD date")
		return
	}

	query := types.RouteQuery{
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		ElevationMeters: req.ElevationMeters,
		RouteType:       types.RouteType(req.RouteType),
		TargetDate:      targetDate,
		SearchRadiusKM:  req.SearchRadiusKM,
	}

	prediction, err := h.predictor.Predict(r.Context(), query)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(prediction))
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	var coreErr *types.Error
	if !types.IsKind(err, types.KindInvalidInput) &&
		!types.IsKind(err, types.KindUpstreamUnavailable) &&
		!types.IsKind(err, types.KindResourceUnavailable) &&
		!types.IsKind(err, types.KindTimeout) &&
		!types.IsKind(err, types.KindInternalInconsistency) {
		h.logger.Error("unexpected prediction error", "error", err)
		writeJSON(w, http.StatusInternalServerError, genericErrorResponse{Error: "internal error"})
		return
	}

	coreErr, _ = err.(*types.Error)
	switch {
	case coreErr != nil && coreErr.Kind == types.KindInvalidInput:
		writeValidationError(w, coreErr.Field, coreErr.Message)
	case coreErr != nil && (coreErr.Kind == types.KindUpstreamUnavailable || coreErr.Kind == types.KindResourceUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, genericErrorResponse{Error: coreErr.Message})
	case coreErr != nil && coreErr.Kind == types.KindTimeout:
		writeJSON(w, http.StatusGatewayTimeout, genericErrorResponse{Error: coreErr.Message})
	default:
		h.logger.Error("unexpected prediction error", "error", err)
		writeJSON(w, http.StatusInternalServerError, genericErrorResponse{Error: "internal error"})
	}
}

func writeValidationError(w http.ResponseWriter, field, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, validationErrorResponse{
		Errors: []fieldError{{Field: field, Message: message}},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func toResponse(p *types.Prediction) predictionResponse {
	contributors := make([]contributor, len(p.TopContributingAccidents))
	for i, c := range p.TopContributingAccidents {
		contributors[i] = contributor{
			AccidentID:     c.AccidentID,
			DistanceKM:     round2(c.DistanceKM),
			DaysAgo:        c.DaysAgo,
			TotalInfluence: round2(c.TotalInfluence),
			Severity:       c.Severity,
		}
	}

	return predictionResponse{
		RiskScore:                 round2(p.RiskScore),
		Confidence:                round2(p.Confidence),
		NumContributingAccidents:  p.NumContributingAccidents,
		TopContributingAccidents:  contributors,
		Metadata: metadata{
			RouteType:  p.Metadata.RouteType,
			TargetDate: p.Metadata.TargetDate,
			Vectorized: p.Metadata.Vectorized,
			Degraded:   p.Metadata.Degraded,
		},
	}
}
