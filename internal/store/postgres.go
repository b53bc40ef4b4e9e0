package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no data is available for a given date
	// and location.
	ErrNotFound = errors.New("no weather data for location")
)

// ForecastRow is one day's forecast for a coordinate, keyed by
// (date, latitude, longitude).
type ForecastRow struct {
	Date         time.Time `json:"date"`
	HighTempF    float64   `json:"high_temp"`
	LowTempF     float64   `json:"low_temp"`
	LocationName string    `json:"location_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
}

// ForecastStore persists daily forecast rows in Postgres.
type ForecastStore struct {
	pool *pgxpool.Pool
}

// NewForecastStore creates a ForecastStore on the given pool.
func NewForecastStore(pool *pgxpool.Pool) *ForecastStore {
	return &ForecastStore{pool: pool}
}

// EnsureSchema creates the weather_data table and its indexes if absent.
func (s *ForecastStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS weather_data (
			id BIGSERIAL PRIMARY KEY,
			date DATE NOT NULL,
			high_temp_f DOUBLE PRECISION NOT NULL,
			low_temp_f DOUBLE PRECISION NOT NULL,
			location_name VARCHAR(128) NOT NULL,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			CONSTRAINT uq_weather_data_date_coords UNIQUE (date, latitude, longitude)
		)`,
		`CREATE INDEX IF NOT EXISTS ix_weather_data_date ON weather_data (date)`,
		`CREATE INDEX IF NOT EXISTS ix_weather_data_location_name ON weather_data (location_name)`,
		`CREATE INDEX IF NOT EXISTS ix_weather_data_coords ON weather_data (latitude, longitude)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring weather_data schema: %w", err)
		}
	}
	return nil
}

// Upsert inserts or updates the forecast for the row's (date, latitude,
// longitude) key. Existing rows get fresh temperatures and location name.
func (s *ForecastStore) Upsert(ctx context.Context, row ForecastRow) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO weather_data (date, high_temp_f, low_temp_f, location_name, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date, latitude, longitude)
		DO UPDATE SET high_temp_f = EXCLUDED.high_temp_f,
		              low_temp_f = EXCLUDED.low_temp_f,
		              location_name = EXCLUDED.location_name`,
		row.Date, row.HighTempF, row.LowTempF, row.LocationName, row.Latitude, row.Longitude)
	if err != nil {
		return fmt.Errorf("upserting forecast for %s: %w", row.Date.Format("2006-01-02"), err)
	}
	return nil
}

// GetByDateAndLocation returns the forecast row for an exact (date, lat,
// lon) key, or ErrNotFound.
func (s *ForecastStore) GetByDateAndLocation(ctx context.Context, date time.Time, lat, lon float64) (ForecastRow, error) {
	var row ForecastRow
	err := s.pool.QueryRow(ctx, `
		SELECT date, high_temp_f, low_temp_f, location_name, latitude, longitude
		FROM weather_data
		WHERE date = $1 AND latitude = $2 AND longitude = $3`,
		date, lat, lon,
	).Scan(&row.Date, &row.HighTempF, &row.LowTempF, &row.LocationName, &row.Latitude, &row.Longitude)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ForecastRow{}, ErrNotFound
		}
		return ForecastRow{}, fmt.Errorf("querying forecast: %w", err)
	}
	return row, nil
}

// Ping verifies database connectivity, for readiness checks.
func (s *ForecastStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
