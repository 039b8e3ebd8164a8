package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's daily means for one day.
type ProviderReading struct {
	ProviderName string
	Date         time.Time

	TemperatureC float64
	HumidityPct  float64
	WindSpeedKmh float64
	PressureHpa  float64
}

// Provider abstracts a source of daily observations (e.g. Open-Meteo).
type Provider interface {
	Name() string
	FetchDay(ctx context.Context, loc Location, day time.Time) (ProviderReading, error)
}

// Store is the contract the in-memory and SQLite stores satisfy. One
// observation is kept per location and day; saving the same day again
// replaces it.
type Store interface {
	Save(ctx context.Context, obs Observation) error
	Latest(ctx context.Context, loc Location) (Observation, error)
	Range(ctx context.Context, loc Location, from, to time.Time) ([]Observation, error)
	// Recent returns up to n of the most recent observations, oldest first.
	Recent(ctx context.Context, loc Location, n int) ([]Observation, error)
}
