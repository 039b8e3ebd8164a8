package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-predictor/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
)

// history holds a date-ordered list of observations for a location.
type history struct {
	days []weather.Observation
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: history
	data map[string]*history

	// retention configuration
	maxHistory int           // max number of days per location
	maxAge     time.Duration // optional max age measured from today

	now func() time.Time
}

var _ weather.Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*history),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save inserts obs in date order, replacing an existing observation for the
// same day, and enforces retention.
func (s *MemoryStore) Save(_ context.Context, obs weather.Observation) error {
	key := obs.Location.Key()
	obs.Date = weather.Day(obs.Date)

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.data[key]
	if !ok {
		h = &history{}
		s.data[key] = h
	}

	i := sort.Search(len(h.days), func(i int) bool { return !h.days[i].Date.Before(obs.Date) })
	switch {
	case i < len(h.days) && h.days[i].Date.Equal(obs.Date):
		h.days[i] = obs
	default:
		h.days = append(h.days, weather.Observation{})
		copy(h.days[i+1:], h.days[i:])
		h.days[i] = obs
	}

	// Enforce retention by count.
	if s.maxHistory > 0 && len(h.days) > s.maxHistory {
		over := len(h.days) - s.maxHistory
		h.days = h.days[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := weather.Day(s.now().Add(-s.maxAge))
		i := sort.Search(len(h.days), func(i int) bool { return !h.days[i].Date.Before(cutoff) })
		h.days = h.days[i:]
	}
	return nil
}

// Latest returns the most recent observation for a location.
func (s *MemoryStore) Latest(_ context.Context, loc weather.Location) (weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[loc.Key()]
	if !ok || len(h.days) == 0 {
		return weather.Observation{}, ErrNotFound
	}
	return h.days[len(h.days)-1], nil
}

// Range returns all observations for a location between from and to (inclusive).
func (s *MemoryStore) Range(_ context.Context, loc weather.Location, from, to time.Time) ([]weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[loc.Key()]
	if !ok || len(h.days) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Observation
	for _, o := range h.days {
		if !o.Date.Before(from) && !o.Date.After(to) {
			result = append(result, o)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Recent returns up to n of the newest observations, oldest first. An unknown
// location yields an empty slice.
func (s *MemoryStore) Recent(_ context.Context, loc weather.Location, n int) ([]weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[loc.Key()]
	if !ok || n <= 0 {
		return nil, nil
	}
	days := h.days
	if len(days) > n {
		days = days[len(days)-n:]
	}
	out := make([]weather.Observation, len(days))
	copy(out, days)
	return out, nil
}
