package accidents

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/sebastianfrazier26/safeascent-predictor/internal/core/types"
	"github.com/sebastianfrazier26/safeascent-predictor/pkg/postgres"
)

// testClient adapts a *sql.DB from sqlmock to the postgres.Client
// interface without pulling in a real connection.
type testClient struct {
	db *sql.DB
}

func (c *testClient) Connect(ctx context.Context) error { return nil }
func (c *testClient) Disconnect() error                 { return c.db.Close() }
func (c *testClient) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}
func (c *testClient) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}
func (c *testClient) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.db.QueryRowContext(ctx, query, args...)
}
func (c *testClient) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
func (c *testClient) HealthCheck(ctx context.Context) (*postgres.HealthStatus, error) {
	return &postgres.HealthStatus{Connected: true}, nil
}

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	client := &testClient{db: db}
	return NewStore(client, nil), mock, func() { db.Close() }
}

func TestLoadAllScansRows(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	elevation := 2800.0
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "latitude", "longitude", "elevation_meters", "accident_date", "route_type", "severity"}).
		AddRow(int64(1), 40.25, -105.62, &elevation, date, "alpine", "serious").
		AddRow(int64(2), 39.1, -106.3, nil, date, "sport", "minor")

	mock.ExpectQuery("SELECT id, latitude, longitude").WillReturnRows(rows)

	records, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, int64(1), records[0].ID)
	require.NotNil(t, records[0].ElevationMeters)
	require.Equal(t, elevation, *records[0].ElevationMeters)
	require.Nil(t, records[1].ElevationMeters)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachWeatherWindowsEmptyInputNoQuery(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	err := store.AttachWeatherWindows(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachWeatherWindowsPopulatesDays(t *testing.T) {
	store, mock, cleanup := newTestStore(t)
	defer cleanup()

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	recs := []types.AccidentRecord{{ID: 7, AccidentDate: date}}

	temp := -5.0
	obsDate := date

	rows := sqlmock.NewRows([]string{
		"accident_id", "observation_date",
		"temperature_avg", "temperature_min", "temperature_max",
		"wind_speed_avg", "wind_speed_max",
		"precipitation_total", "cloud_cover_avg", "visibility_avg",
	}).AddRow(int64(7), obsDate, &temp, nil, nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery("SELECT w.accident_id").WillReturnRows(rows)

	err := store.AttachWeatherWindows(context.Background(), recs)
	require.NoError(t, err)
	require.NotNil(t, recs[0].WeatherPattern)
	require.NotNil(t, recs[0].WeatherPattern.Days[6].TemperatureAvg)
	require.Equal(t, temp, *recs[0].WeatherPattern.Days[6].TemperatureAvg)
	require.NoError(t, mock.ExpectationsWereMet())
}
