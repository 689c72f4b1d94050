// Package accidents implements the Accident Store (C3): bulk retrieval
// of historical accident records and the weather windows leading up to
// each one.
package accidents

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
	"github.com/sebastianfrazier26/safeascent-predictor/pkg/postgres"
)

// weatherObservationRow is an accident weather window row as returned by
// the join in AttachWeatherWindows.
type weatherObservationRow struct {
	accidentID int64
	obsDate    time.Time
	obs        types.DailyObservation
}

// Store loads accident history and the weather windows attached to it.
type Store struct {
	db     postgres.Client
	logger *slog.Logger
}

// NewStore builds a Store backed by the given Postgres client.
func NewStore(db postgres.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// LoadAll returns every accident record in the database, without
// weather windows attached. Callers that need weather data call
// AttachWeatherWindows on the result.
func (s *Store) LoadAll(ctx context.Context) ([]types.AccidentRecord, error) {
	const query = `
		SELECT id, latitude, longitude, elevation_meters, accident_date, route_type, severity
		FROM accidents
		ORDER BY id ASC
	`

	records, err := postgres.ScanRows(ctx, s.db, query, func(rows *sql.Rows) (types.AccidentRecord, error) {
		var rec types.AccidentRecord
		var elevation *float64
		var routeType, severity string

		if err := rows.Scan(&rec.ID, &rec.Latitude, &rec.Longitude, &elevation, &rec.AccidentDate, &routeType, &severity); err != nil {
			return types.AccidentRecord{}, err
		}

		rec.ElevationMeters = elevation
		rec.RouteType = types.RouteType(routeType)
		rec.Severity = types.Severity(severity)
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading accidents: %w", err)
	}

	return records, nil
}

// AttachWeatherWindows fills in the WeatherPattern field of each
// accident in place, using a single bulk query keyed by accident ID
// rather than one round trip per accident.
func (s *Store) AttachWeatherWindows(ctx context.Context, records []types.AccidentRecord) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]int64, len(records))
	indexByID := make(map[int64]int, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		indexByID[rec.ID] = i
	}

	const query = `
		SELECT w.accident_id, w.observation_date,
			w.temperature_avg, w.temperature_min, w.temperature_max,
			w.wind_speed_avg, w.wind_speed_max,
			w.precipitation_total, w.cloud_cover_avg, w.visibility_avg
		FROM accident_weather_observations w
		JOIN accidents a ON a.id = w.accident_id
		WHERE w.accident_id = ANY($1)
			AND w.observation_date BETWEEN a.accident_date - INTERVAL '6 days' AND a.accident_date
		ORDER BY w.accident_id, w.observation_date ASC
	`

	obsRows, err := postgres.ScanRows(ctx, s.db, query, func(rows *sql.Rows) (weatherObservationRow, error) {
		var r weatherObservationRow
		if err := rows.Scan(&r.accidentID, &r.obsDate,
			&r.obs.TemperatureAvg, &r.obs.TemperatureMin, &r.obs.TemperatureMax,
			&r.obs.WindSpeedAvg, &r.obs.WindSpeedMax,
			&r.obs.PrecipitationTotal, &r.obs.CloudCoverAvg, &r.obs.VisibilityAvg,
		); err != nil {
			return weatherObservationRow{}, err
		}
		return r, nil
	}, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("querying accident weather windows: %w", err)
	}

	windows := make(map[int64]*types.WeatherPattern, len(records))

	for _, r := range obsRows {
		idx, ok := indexByID[r.accidentID]
		if !ok {
			continue
		}

		wp, ok := windows[r.accidentID]
		if !ok {
			neutral := types.NewNeutralWeatherPattern()
			wp = &neutral
			windows[r.accidentID] = wp
		}

		dayOffset := int(r.obsDate.Sub(records[idx].AccidentDate.AddDate(0, 0, -6)).Hours() / 24)
		if dayOffset < 0 || dayOffset > 6 {
			s.logger.Warn("weather observation outside expected window, dropping", "accident_id", r.accidentID, "observation_date", r.obsDate)
			continue
		}
		wp.Days[dayOffset] = r.obs
	}

	for id, wp := range windows {
		idx := indexByID[id]
		records[idx].WeatherPattern = wp
	}

	return nil
}
