package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-predictor/internal/weather"
)

// schema.sql creates the observations table, keyed by location and day.
//
//go:embed schema.sql
var schemaSQL string

// SQLiteStore persists observations in a SQLite database. It satisfies the
// same contract as MemoryStore.
type SQLiteStore struct {
	db         *sql.DB
	maxHistory int
	maxAge     time.Duration

	now func() time.Time
}

var _ weather.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and applies the
// schema. Use ":memory:" for a throwaway database. maxHistory <= 0 and
// maxAge <= 0 disable the respective retention rule.
func NewSQLiteStore(path string, maxHistory int, maxAge time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Printf("INFO: initialized observation database at %s", path)
	return &SQLiteStore{db: db, maxHistory: maxHistory, maxAge: maxAge, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save upserts obs for its location and day.
func (s *SQLiteStore) Save(ctx context.Context, obs weather.Observation) error {
	query := `
		INSERT INTO observations (id, location, name, lat, lon, day, meantemp, humidity, wind_speed, meanpressure, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (location, day) DO UPDATE SET
			id = excluded.id,
			name = excluded.name,
			lat = excluded.lat,
			lon = excluded.lon,
			meantemp = excluded.meantemp,
			humidity = excluded.humidity,
			wind_speed = excluded.wind_speed,
			meanpressure = excluded.meanpressure,
			source = excluded.source,
			updated_at = UNIXEPOCH()
	`
	key := obs.Location.Key()
	_, err := s.db.ExecContext(ctx, query,
		obs.ID, key, obs.Location.Name, obs.Location.Lat, obs.Location.Lon,
		weather.Day(obs.Date).Format(weather.DateLayout),
		obs.TemperatureC, obs.HumidityPct, obs.WindSpeedKmh, obs.PressureHpa, obs.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to insert observation: %w", err)
	}

	if s.maxHistory > 0 {
		_, err = s.db.ExecContext(ctx, `
			DELETE FROM observations
			WHERE location = ? AND day NOT IN (
				SELECT day FROM observations WHERE location = ? ORDER BY day DESC LIMIT ?
			)
		`, key, key, s.maxHistory)
		if err != nil {
			return fmt.Errorf("failed to enforce retention: %w", err)
		}
	}

	if s.maxAge > 0 {
		cutoff := weather.Day(s.now().Add(-s.maxAge)).Format(weather.DateLayout)
		_, err = s.db.ExecContext(ctx, `DELETE FROM observations WHERE location = ? AND day < ?`, key, cutoff)
		if err != nil {
			return fmt.Errorf("failed to enforce max age: %w", err)
		}
	}
	return nil
}

const selectColumns = `id, name, lat, lon, day, meantemp, humidity, wind_speed, meanpressure, source`

// Latest returns the most recent observation for a location.
func (s *SQLiteStore) Latest(ctx context.Context, loc weather.Location) (weather.Observation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM observations WHERE location = ? ORDER BY day DESC LIMIT 1`,
		loc.Key())
	obs, err := scanObservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Observation{}, ErrNotFound
	}
	return obs, err
}

// Range returns all observations for a location between from and to (inclusive).
func (s *SQLiteStore) Range(ctx context.Context, loc weather.Location, from, to time.Time) ([]weather.Observation, error) {
	// Whole days only; a partial first day is excluded like in MemoryStore.
	first := weather.Day(from)
	if first.Before(from) {
		first = first.AddDate(0, 0, 1)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM observations WHERE location = ? AND day >= ? AND day <= ? ORDER BY day`,
		loc.Key(), first.Format(weather.DateLayout), to.UTC().Format(weather.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	result, err := scanObservations(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Recent returns up to n of the newest observations, oldest first.
func (s *SQLiteStore) Recent(ctx context.Context, loc weather.Location, n int) ([]weather.Observation, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+` FROM (
			SELECT * FROM observations WHERE location = ? ORDER BY day DESC LIMIT ?
		) ORDER BY day`,
		loc.Key(), n)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	return scanObservations(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanObservation(sc scanner) (weather.Observation, error) {
	var (
		obs weather.Observation
		day string
	)
	err := sc.Scan(&obs.ID, &obs.Location.Name, &obs.Location.Lat, &obs.Location.Lon, &day,
		&obs.TemperatureC, &obs.HumidityPct, &obs.WindSpeedKmh, &obs.PressureHpa, &obs.Source)
	if err != nil {
		return weather.Observation{}, err
	}
	obs.Date, err = weather.ParseDay(day)
	if err != nil {
		return weather.Observation{}, err
	}
	return obs, nil
}

func scanObservations(rows *sql.Rows) ([]weather.Observation, error) {
	defer rows.Close()

	var out []weather.Observation
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		out = append(out, obs)
	}
	return out, rows.Err()
}
