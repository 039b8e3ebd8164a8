package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-predictor/internal/weather"
)

// DefaultFetchAt is the UTC time of day the daily fetch runs.
const DefaultFetchAt = "00:30"

// Scheduler fetches the previous day's observations once a day for the
// configured locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	locations []weather.Location
	at        string
	timeout   time.Duration
}

// New creates a new Scheduler running daily at at ("HH:MM", UTC).
func New(locations []weather.Location, at string, service *weather.Service) *Scheduler {
	if at == "" {
		at = DefaultFetchAt
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		locations: locations,
		at:        at,
		timeout:   30 * time.Second,
	}
}

// Start schedules the daily job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		log.Println("scheduler: no locations configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(1).Day().At(s.at).SingletonMode().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	if _, next := s.scheduler.NextRun(); !next.IsZero() {
		log.Printf("scheduler: next weather fetch at %s", next.Format(time.RFC3339))
	}
	return nil
}

// RunOnce fetches every location concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	log.Println("scheduler: running weather fetch job")

	var wg sync.WaitGroup
	for _, loc := range s.locations {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			if err := s.service.FetchAndStore(ctx, loc); err != nil {
				log.Printf("scheduler: fetch failed for %s: %v", loc.Key(), err)
			}
		}(loc)
	}
	wg.Wait()
	log.Println("scheduler: completed weather fetch job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
