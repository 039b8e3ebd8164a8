package cmd

import (
	"fmt"
	"log"

	"github.com/i474232898/weather-predictor/internal/config"
	"github.com/i474232898/weather-predictor/internal/dataset"
	"github.com/i474232898/weather-predictor/internal/scaling"
	"github.com/i474232898/weather-predictor/internal/store"
	"github.com/i474232898/weather-predictor/internal/weather"
)

const defaultDataset = "data/DailyDelhiClimateTrain.csv"

// loadScaling reads saved params from scalingPath, or fits them on the
// dataset when no params file is given.
func loadScaling(scalingPath, datasetPath string) (scaling.Params, error) {
	if scalingPath != "" {
		p, err := scaling.Load(scalingPath)
		if err != nil {
			return scaling.Params{}, err
		}
		log.Printf("INFO: loaded scaling params from %s", scalingPath)
		return p, nil
	}

	ds, err := dataset.LoadFile(datasetPath)
	if err != nil {
		return scaling.Params{}, fmt.Errorf("no scaling params file and dataset unusable: %w", err)
	}
	p, err := scaling.Fit(ds.Features())
	if err != nil {
		return scaling.Params{}, err
	}
	log.Printf("INFO: fitted scaling params on %d rows of %s", ds.Len(), datasetPath)
	return p, nil
}

// openStore returns the SQLite store when a database path is configured and
// the in-memory store otherwise. The returned func releases it.
func openStore(cfg *config.AppConfig) (weather.Store, func(), error) {
	if cfg.DBPath == "" {
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge), func() {}, nil
	}
	s, err := store.NewSQLiteStore(cfg.DBPath, cfg.StoreMaxHistory, cfg.StoreMaxAge)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			log.Printf("ERROR: closing database: %v", err)
		}
	}, nil
}
