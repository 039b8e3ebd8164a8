package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-predictor/internal/weather"
)

var delhi = weather.Location{Name: "delhi", Lat: 28.61, Lon: 77.21}

func day(s string) time.Time {
	d, err := weather.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func obs(loc weather.Location, date string, temp float64) weather.Observation {
	return weather.Observation{
		ID:           "id-" + date,
		Location:     loc,
		Date:         day(date),
		TemperatureC: temp,
		HumidityPct:  60,
		WindSpeedKmh: 5,
		PressureHpa:  1012,
		Source:       "test",
	}
}

func stores(t *testing.T, maxHistory int, maxAge time.Duration, now func() time.Time) map[string]weather.Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(":memory:", maxHistory, maxAge)
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	memory := NewMemoryStore(maxHistory, maxAge)
	if now != nil {
		memory.now = now
		sqlite.now = now
	}
	return map[string]weather.Store{
		"memory": memory,
		"sqlite": sqlite,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t, 0, 0, nil) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Latest(ctx, delhi)
			assert.ErrorIs(t, err, ErrNotFound)

			recent, err := s.Recent(ctx, delhi, 5)
			require.NoError(t, err)
			assert.Empty(t, recent)

			// out of order on purpose
			for _, o := range []weather.Observation{
				obs(delhi, "2017-01-03", 13),
				obs(delhi, "2017-01-01", 11),
				obs(delhi, "2017-01-02", 12),
			} {
				require.NoError(t, s.Save(ctx, o))
			}

			latest, err := s.Latest(ctx, delhi)
			require.NoError(t, err)
			assert.Equal(t, day("2017-01-03"), latest.Date)
			assert.Equal(t, 13.0, latest.TemperatureC)
			assert.Equal(t, delhi, latest.Location)
			assert.Equal(t, "id-2017-01-03", latest.ID)

			// same day replaces
			require.NoError(t, s.Save(ctx, obs(delhi, "2017-01-02", 22)))

			recent, err = s.Recent(ctx, delhi, 2)
			require.NoError(t, err)
			require.Len(t, recent, 2)
			assert.Equal(t, day("2017-01-02"), recent[0].Date)
			assert.Equal(t, 22.0, recent[0].TemperatureC)
			assert.Equal(t, day("2017-01-03"), recent[1].Date)

			all, err := s.Recent(ctx, delhi, 10)
			require.NoError(t, err)
			assert.Len(t, all, 3)

			rng, err := s.Range(ctx, delhi, day("2017-01-01"), day("2017-01-02"))
			require.NoError(t, err)
			require.Len(t, rng, 2)
			assert.Equal(t, 11.0, rng[0].TemperatureC)

			_, err = s.Range(ctx, delhi, day("2018-01-01"), day("2018-02-01"))
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.Latest(ctx, weather.Location{Name: "mumbai"})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreRetentionByCount(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t, 2, 0, nil) {
		t.Run(name, func(t *testing.T) {
			for i, d := range []string{"2017-01-01", "2017-01-02", "2017-01-03"} {
				require.NoError(t, s.Save(ctx, obs(delhi, d, float64(i))))
			}
			recent, err := s.Recent(ctx, delhi, 10)
			require.NoError(t, err)
			require.Len(t, recent, 2)
			assert.Equal(t, day("2017-01-02"), recent[0].Date)
		})
	}
}

func TestStoreRetentionByAge(t *testing.T) {
	ctx := context.Background()
	now := func() time.Time { return day("2017-01-10").Add(12 * time.Hour) }
	for name, s := range stores(t, 0, 48*time.Hour, now) {
		t.Run(name, func(t *testing.T) {
			for _, d := range []string{"2017-01-01", "2017-01-08", "2017-01-09", "2017-01-10"} {
				require.NoError(t, s.Save(ctx, obs(delhi, d, 1)))
			}
			recent, err := s.Recent(ctx, delhi, 10)
			require.NoError(t, err)
			require.Len(t, recent, 3)
			assert.Equal(t, day("2017-01-08"), recent[0].Date)

			// a year-old day alone is dropped on save
			require.NoError(t, s.Save(ctx, obs(weather.Location{Name: "mumbai"}, "2016-01-10", 1)))
			_, err = s.Latest(ctx, weather.Location{Name: "mumbai"})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "weather.db")

	s, err := NewSQLiteStore(path, 0, 0)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, obs(delhi, "2017-01-01", 15)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path, 0, 0)
	require.NoError(t, err)
	defer s.Close()

	latest, err := s.Latest(ctx, delhi)
	require.NoError(t, err)
	assert.Equal(t, 15.0, latest.TemperatureC)
}
