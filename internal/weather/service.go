package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-predictor/internal/scaling"
	"github.com/i474232898/weather-predictor/internal/shape"
	"github.com/i474232898/weather-predictor/internal/window"
)

var (
	ErrNoProviders = errors.New("no weather providers configured")
	ErrNoReadings  = errors.New("no successful provider readings")
)

// Service orchestrates fetching from providers, persisting daily observations
// and keeping the model's history window in sync with the store for the
// primary location.
type Service struct {
	store     Store
	providers []Provider
	primary   Location
	params    scaling.Params
	window    *window.Window

	// rebuildMu orders Recent+Replace so an older snapshot never replaces a
	// newer one.
	rebuildMu sync.Mutex

	now func() time.Time
}

// NewService creates a new Service. The window tracks primary and is scaled
// with params.
func NewService(store Store, providers []Provider, primary Location, params scaling.Params) *Service {
	return &Service{
		store:     store,
		providers: providers,
		primary:   primary,
		params:    params,
		window:    window.New(),
		now:       time.Now,
	}
}

// Primary returns the location whose history feeds the model.
func (s *Service) Primary() Location {
	return s.primary
}

// Scaling returns the parameters applied to every row.
func (s *Service) Scaling() scaling.Params {
	return s.params
}

// FetchAndStore fetches yesterday's daily means from all providers
// concurrently, aggregates the successful readings and ingests them. When
// every provider fails the stored history is left untouched.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	if len(s.providers) == 0 {
		log.Printf("ERROR: No providers available to fetch weather data for %s", loc.Key())
		return ErrNoProviders
	}

	day := Day(s.now()).AddDate(0, 0, -1)
	log.Printf("DEBUG: FetchAndStore called for %s on %s with %d providers", loc.Key(), day.Format(DateLayout), len(s.providers))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
	)
	for _, p := range s.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()

			r, err := p.FetchDay(ctx, loc, day)
			if err != nil {
				// partial success is fine
				log.Printf("provider %s fetch failed for %s: %v", p.Name(), loc.Key(), err)
				return
			}

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	if len(readings) == 0 {
		return fmt.Errorf("%w for %s on %s", ErrNoReadings, loc.Key(), day.Format(DateLayout))
	}

	_, err := s.Ingest(ctx, AggregateReadings(loc, day, readings))
	return err
}

// Ingest stores obs and, if it belongs to the primary location, rebuilds the
// history window. A missing location defaults to the primary one and a
// missing ID is generated. The stored observation is returned.
func (s *Service) Ingest(ctx context.Context, obs Observation) (Observation, error) {
	if obs.Location == (Location{}) {
		obs.Location = s.primary
	}
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}
	obs.Date = Day(obs.Date)
	if err := obs.Validate(); err != nil {
		return Observation{}, err
	}

	if err := s.store.Save(ctx, obs); err != nil {
		return Observation{}, fmt.Errorf("failed to save observation: %w", err)
	}
	if obs.Location.Key() != s.primary.Key() {
		return obs, nil
	}
	if err := s.Rebuild(ctx); err != nil {
		return obs, err
	}
	return obs, nil
}

// Rebuild refills the window from the most recent shape.HistoryDays stored
// days of the primary location. Missing days are not filled in.
func (s *Service) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	recent, err := s.store.Recent(ctx, s.primary, shape.HistoryDays)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	rows := make([]window.Row, 0, len(recent))
	for i, o := range recent {
		if i > 0 {
			if gap := o.Date.Sub(recent[i-1].Date); gap != 24*time.Hour {
				log.Printf("WARN: history for %s has a %s gap before %s", s.primary.Key(), gap, o.Date.Format(DateLayout))
			}
		}
		rows = append(rows, window.RowOf(s.params.Transform(o.Features())))
	}
	s.window.Replace(rows)
	return nil
}

// InputTensor scales current and appends it to the history window, returning
// one flattened model input of shape.Default.InputLen() values.
func (s *Service) InputTensor(current []Observation) ([]float32, error) {
	rows := make([]window.Row, 0, len(current))
	for _, o := range current {
		if err := o.Validate(); err != nil {
			return nil, err
		}
		rows = append(rows, window.RowOf(s.params.Transform(o.Features())))
	}
	return s.window.Sequence(rows)
}

// WindowStatus reports how full the history window is.
func (s *Service) WindowStatus() window.Status {
	return s.window.Status()
}

// History returns up to n of the most recent observations for loc, oldest first.
func (s *Service) History(ctx context.Context, loc Location, n int) ([]Observation, error) {
	return s.store.Recent(ctx, loc, n)
}

// Latest delegates to the underlying store.
func (s *Service) Latest(ctx context.Context, loc Location) (Observation, error) {
	return s.store.Latest(ctx, loc)
}

// Range delegates to the underlying store.
func (s *Service) Range(ctx context.Context, loc Location, from, to time.Time) ([]Observation, error) {
	return s.store.Range(ctx, loc, from, to)
}
