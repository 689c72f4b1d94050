package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
)

type fakePredictor struct {
	prediction *types.Prediction
	err        error
}

func (f *fakePredictor) Predict(ctx context.Context, query types.RouteQuery) (*types.Prediction, error) {
	return f.prediction, f.err
}

func doRequest(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/predictions", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPredictValidationErrorOnMalformedDate(t *testing.T) {
	router := NewRouter(&fakePredictor{}, nil)
	rec := doRequest(t, router, `{"latitude":40,"longitude":-105,"route_type":"alpine","target_date":"not-a-date"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body validationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)
	require.Equal(t, "target_date", body.Errors[0].Field)
}

func TestPredictSurfacesOrchestratorInvalidInput(t *testing.T) {
	fake := &fakePredictor{err: types.NewInvalidInput("latitude", "latitude 95 out of range [-90,90]")}
	router := NewRouter(fake, nil)

	rec := doRequest(t, router, `{"latitude":95,"longitude":-105,"route_type":"alpine","target_date":"2026-07-15"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body validationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "latitude", body.Errors[0].Field)
}

func TestPredictMapsUpstreamUnavailableToServiceUnavailable(t *testing.T) {
	fake := &fakePredictor{err: types.NewUpstreamUnavailable("weather provider exhausted retries", nil)}
	router := NewRouter(fake, nil)

	rec := doRequest(t, router, `{"latitude":40,"longitude":-105,"route_type":"alpine","target_date":"2026-07-15"}`)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPredictMapsTimeoutToGatewayTimeout(t *testing.T) {
	fake := &fakePredictor{err: types.NewTimeout("request deadline exceeded")}
	router := NewRouter(fake, nil)

	rec := doRequest(t, router, `{"latitude":40,"longitude":-105,"route_type":"alpine","target_date":"2026-07-15"}`)

	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestPredictSuccessReturnsRoundedResponse(t *testing.T) {
	fake := &fakePredictor{prediction: &types.Prediction{
		RiskScore:                 42.12345,
		Confidence:                60.987,
		NumContributingAccidents:  3,
		TopContributingAccidents:  []types.Contributor{{AccidentID: 1, DistanceKM: 1.2345, DaysAgo: 5, TotalInfluence: 0.98765, Severity: "serious"}},
		Metadata: types.Metadata{RouteType: "alpine", TargetDate: "2026-07-15", Vectorized: true, Degraded: false},
	}}
	router := NewRouter(fake, nil)

	rec := doRequest(t, router, `{"latitude":40,"longitude":-105,"route_type":"alpine","target_date":"2026-07-15"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body predictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 42.12, body.RiskScore)
	require.Equal(t, 60.99, body.Confidence)
	require.Equal(t, 1.23, body.TopContributingAccidents[0].DistanceKM)
}
