package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-predictor/internal/weather"
)

type AppConfig struct {
	Port string `validate:"required,numeric"`

	// ModelPath overrides the embedded model; ModelManifestPath defaults to
	// ModelPath with a .json extension.
	ModelPath         string
	ModelManifestPath string

	// ScalingPath points at params written by `scale --out`. When empty the
	// params are fitted on DatasetPath.
	ScalingPath string
	DatasetPath string

	// DBPath selects the SQLite store; empty keeps observations in memory.
	DBPath string

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // max days per location (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max age of days (0 = unlimited)

	HTTPTimeout time.Duration `validate:"gt=0"`

	// FetchAt is the UTC time of day for the daily fetch.
	FetchAt string `validate:"required"`

	// Location is the primary location; its history feeds the model.
	Location weather.Location

	SerialPort string
	SerialBaud int `validate:"gte=0"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		ModelPath:         os.Getenv("MODEL_PATH"),
		ModelManifestPath: os.Getenv("MODEL_MANIFEST_PATH"),
		ScalingPath:       os.Getenv("SCALING_PATH"),
		DatasetPath:       getenvDefault("DATASET_PATH", "data/DailyDelhiClimateTrain.csv"),
		DBPath:            os.Getenv("DB_PATH"),
		StoreMaxHistory:   getenvInt("STORE_MAX_HISTORY", 366),
		FetchAt:           getenvDefault("FETCH_AT", "00:30"),
		SerialPort:        os.Getenv("SERIAL_PORT"),
		SerialBaud:        getenvInt("SERIAL_BAUD", 115200),
	}

	var err error
	if cfg.StoreMaxAge, err = time.ParseDuration(getenvDefault("STORE_MAX_AGE", "0s")); err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	if cfg.HTTPTimeout, err = time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	loc, err := loadPrimaryLocation()
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.Parse("15:04", c.FetchAt); err != nil {
		return fmt.Errorf("invalid FETCH_AT %q: expected HH:MM", c.FetchAt)
	}
	return nil
}

// loadPrimaryLocation defaults to New Delhi, where the training data was
// recorded.
func loadPrimaryLocation() (weather.Location, error) {
	loc := weather.Location{
		Name: getenvDefault("WEATHER_LOCATION_NAME", "delhi"),
		Lat:  28.6139,
		Lon:  77.2090,
	}
	if v := os.Getenv("WEATHER_LOCATION_LAT"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil || lat < -90 || lat > 90 {
			return loc, fmt.Errorf("invalid WEATHER_LOCATION_LAT %q", v)
		}
		loc.Lat = lat
	}
	if v := os.Getenv("WEATHER_LOCATION_LON"); v != "" {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil || lon < -180 || lon > 180 {
			return loc, fmt.Errorf("invalid WEATHER_LOCATION_LON %q", v)
		}
		loc.Lon = lon
	}
	return loc, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
