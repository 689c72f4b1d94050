package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
	"github.com/sebastianfrazier26/safeascent-predictor/pkg/metrics"
)

// HTTPProviderConfig holds the tunables for the production HTTP-backed
// provider, lifted from the shared service Config at construction time
// so the provider itself carries only what it needs.
type HTTPProviderConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	RetryMax     int
	RetryBase    time.Duration
	RetryMaxWait time.Duration
	BreakerOn    bool
}

// HTTPProvider fetches forecast and climatological data from an HTTPS
// JSON weather provider, retrying transient failures with exponential
// backoff and tripping a circuit breaker when the provider is
// consistently unavailable.
type HTTPProvider struct {
	cfg     HTTPProviderConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Collectors
	logger  *slog.Logger
}

// NewHTTPProvider builds a production Provider. breaker may be nil when
// cfg.BreakerOn is false.
func NewHTTPProvider(cfg HTTPProviderConfig, m *metrics.Collectors, logger *slog.Logger) *HTTPProvider {
	if logger == nil {
		logger = slog.Default()
	}

	p := &HTTPProvider{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		metrics: m,
		logger:  logger,
	}

	if cfg.BreakerOn {
		p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "weather-provider",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("weather circuit breaker state change", "from", from, "to", to)
				if to == gobreaker.StateOpen && m != nil {
					m.BreakerOpens.Inc()
				}
			},
		})
	}

	return p
}

// Breaker returns the provider's circuit breaker, or nil if the breaker
// is disabled (the health checker then reports its state as "unknown").
func (p *HTTPProvider) Breaker() *gobreaker.CircuitBreaker {
	return p.breaker
}

type forecastResponse struct {
	Days []dayPayload `json:"days"`
}

type statisticsResponse struct {
	Variables map[string]struct {
		Mean   float64 `json:"mean"`
		StdDev float64 `json:"stddev"`
	} `json:"variables"`
}

type dayPayload struct {
	TemperatureAvg     *float64 `json:"temperature_avg"`
	TemperatureMin     *float64 `json:"temperature_min"`
	TemperatureMax     *float64 `json:"temperature_max"`
	WindSpeedAvg       *float64 `json:"wind_speed_avg"`
	WindSpeedMax       *float64 `json:"wind_speed_max"`
	PrecipitationTotal *float64 `json:"precipitation_total"`
	CloudCoverAvg      *float64 `json:"cloud_cover_avg"`
	VisibilityAvg      *float64 `json:"visibility_avg"`
}

// FetchForecast returns the 7-day window ending at date, retrying
// transient upstream failures before surfacing UpstreamUnavailable.
func (p *HTTPProvider) FetchForecast(ctx context.Context, lat, lon float64, date time.Time) (types.WeatherPattern, error) {
	url := fmt.Sprintf("%s/forecast?lat=%f&lon=%f&date=%s", p.cfg.BaseURL, lat, lon, date.Format("2006-01-02"))

	var resp forecastResponse
	if err := p.doWithRetry(ctx, url, &resp); err != nil {
		return types.WeatherPattern{}, err
	}

	var wp types.WeatherPattern
	for i := 0; i < 7 && i < len(resp.Days); i++ {
		d := resp.Days[i]
		wp.Days[i] = types.DailyObservation{
			TemperatureAvg:     d.TemperatureAvg,
			TemperatureMin:     d.TemperatureMin,
			TemperatureMax:     d.TemperatureMax,
			WindSpeedAvg:       d.WindSpeedAvg,
			WindSpeedMax:       d.WindSpeedMax,
			PrecipitationTotal: d.PrecipitationTotal,
			CloudCoverAvg:      d.CloudCoverAvg,
			VisibilityAvg:      d.VisibilityAvg,
		}
	}
	return wp, nil
}

// FetchStatistics returns climatological means and standard deviations for the given
// location bucket and season.
func (p *HTTPProvider) FetchStatistics(ctx context.Context, lat, lon float64, elevationBucketM int, season string) (types.Stats, error) {
	url := fmt.Sprintf("%s/statistics?lat=%f&lon=%f&elevation_bucket=%d&season=%s",
		p.cfg.BaseURL, lat, lon, elevationBucketM, season)

	var resp statisticsResponse
	if err := p.doWithRetry(ctx, url, &resp); err != nil {
		return types.Stats{}, err
	}

	stats := types.Stats{Variables: make(map[string]types.VariableStats, len(resp.Variables))}
	for name, v := range resp.Variables {
		stats.Variables[name] = types.VariableStats{Mean: v.Mean, StdDev: v.StdDev}
	}
	return stats, nil
}

// doWithRetry issues the GET, retrying on 429/5xx/transport errors with
// exponential backoff up to cfg.RetryMax additional attempts, and
// routing the whole attempt sequence through the circuit breaker when
// enabled.
func (p *HTTPProvider) doWithRetry(ctx context.Context, url string, out interface{}) error {
	attempt := func() error {
		var lastErr error
		for i := 0; i <= p.cfg.RetryMax; i++ {
			if i > 0 {
				wait := p.backoff(i)
				if p.metrics != nil {
					p.metrics.WeatherRetries.Inc()
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
			}

			err := p.doOnce(ctx, url, out)
			if err == nil {
				return nil
			}
			lastErr = err
			if !isRetryable(err) {
				return err
			}
			p.logger.Warn("weather provider call failed, retrying", "attempt", i+1, "error", err)
		}
		if p.metrics != nil {
			p.metrics.WeatherFailures.Inc()
		}
		return lastErr
	}

	if p.breaker == nil {
		if err := attempt(); err != nil {
			return types.NewUpstreamUnavailable("weather provider request failed", err)
		}
		return nil
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, attempt()
	})
	if err != nil {
		return types.NewUpstreamUnavailable("weather provider request failed", err)
	}
	return nil
}

func (p *HTTPProvider) doOnce(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building weather request: %w", err)
	}
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return &retryableErr{err: fmt.Errorf("weather request transport error: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &retryableErr{err: fmt.Errorf("weather provider returned status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding weather response: %w", err)
	}
	return nil
}

// retryableErr marks an error as worth retrying (transport failure,
// 429, or 5xx), distinguishing it from a permanent 4xx the retry loop
// should not waste attempts on.
type retryableErr struct{ err error }

func (r *retryableErr) Error() string { return r.err.Error() }
func (r *retryableErr) Unwrap() error { return r.err }

func isRetryable(err error) bool {
	_, ok := err.(*retryableErr)
	return ok
}

// backoff returns exponential backoff with jitter, capped at RetryMaxWait.
func (p *HTTPProvider) backoff(attempt int) time.Duration {
	base := float64(p.cfg.RetryBase)
	wait := base * math.Pow(2, float64(attempt-1))
	if max := float64(p.cfg.RetryMaxWait); wait > max {
		wait = max
	}
	jitter := wait * (0.5 + rand.Float64()*0.5)
	return time.Duration(jitter)
}
