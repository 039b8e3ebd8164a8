package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-predictor/internal/api/http"
	"github.com/i474232898/weather-predictor/internal/config"
	"github.com/i474232898/weather-predictor/internal/dataset"
	"github.com/i474232898/weather-predictor/internal/model"
	"github.com/i474232898/weather-predictor/internal/scheduler"
	"github.com/i474232898/weather-predictor/internal/serialmon"
	"github.com/i474232898/weather-predictor/internal/shape"
	"github.com/i474232898/weather-predictor/internal/weather"
	"github.com/i474232898/weather-predictor/internal/weather/providers"
)

var (
	servePort string
	serveSeed bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the daily fetch scheduler",
	Long: `Load and validate the model, rebuild the history window from the store,
schedule the daily Open-Meteo fetch and serve the HTTP API. When SERIAL_PORT
is set, data events from the board are ingested as well.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP port (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "Seed an empty store with the last days of the dataset")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	m, err := model.Load(model.Options{Path: cfg.ModelPath, ManifestPath: cfg.ModelManifestPath})
	if err != nil {
		return err
	}

	params, err := loadScaling(cfg.ScalingPath, cfg.DatasetPath)
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	provs := []weather.Provider{providers.NewOpenMeteoProvider(httpClient)}

	service := weather.NewService(st, provs, cfg.Location, params)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveSeed {
		if err := seedFromDataset(ctx, service, cfg.DatasetPath); err != nil {
			return err
		}
	}
	if err := service.Rebuild(ctx); err != nil {
		return err
	}
	status := service.WindowStatus()
	log.Printf("INFO: history window for %s holds %d/%d days", cfg.Location.Key(), status.Days, status.Capacity)

	sched := scheduler.New([]weather.Location{cfg.Location}, cfg.FetchAt, service)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	if cfg.SerialPort != "" {
		go ingestSerial(ctx, service, cfg.SerialPort, serialmon.PortOptions{BaudRate: cfg.SerialBaud})
	}

	app := httpapi.NewApp(service, m)
	err = listenAndServe(ctx, app, ":"+cfg.Port)
	stop()
	return err
}

// listenAndServe runs app until ctx ends, then shuts it down. A listener
// that fails to start is returned as an error.
func listenAndServe(ctx context.Context, app *fiber.App, addr string) error {
	errc := make(chan error, 1)
	go func() {
		errc <- app.Listen(addr)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("fiber server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return nil
}

// seedFromDataset ingests the last shape.HistoryDays rows of the dataset when
// the primary location has no history yet.
func seedFromDataset(ctx context.Context, service *weather.Service, path string) error {
	if _, err := service.Latest(ctx, service.Primary()); err == nil {
		log.Printf("INFO: store already has history for %s; skipping seed", service.Primary().Key())
		return nil
	}

	ds, err := dataset.LoadFile(path)
	if err != nil {
		return err
	}
	rows := ds.Tail(shape.HistoryDays)
	for _, obs := range rows {
		if obs.Date.IsZero() {
			return errors.New("dataset has no date column; cannot seed")
		}
		if _, err := service.Ingest(ctx, obs); err != nil {
			return fmt.Errorf("seed %s: %w", obs.Date.Format(weather.DateLayout), err)
		}
	}
	log.Printf("INFO: seeded %d days from %s", len(rows), path)
	return nil
}

// ingestSerial stores every observation the board reports until ctx ends.
func ingestSerial(ctx context.Context, service *weather.Service, path string, opts serialmon.PortOptions) {
	port, err := serialmon.Open(path, opts)
	if err != nil {
		log.Printf("ERROR: serialmon: %v", err)
		return
	}
	defer port.Close()

	err = serialmon.NewMonitor(port).Run(ctx, func(ev serialmon.Event) {
		if ev.Kind != serialmon.KindData {
			return
		}
		obs, err := ev.Observation(time.Now())
		if err != nil {
			log.Printf("DEBUG: serialmon: ignoring data event: %v", err)
			return
		}
		if _, err := service.Ingest(ctx, obs); err != nil {
			log.Printf("ERROR: serialmon: ingest failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("ERROR: serialmon: %v", err)
	}
}
