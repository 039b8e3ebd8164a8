package weather

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/i474232898/weather-predictor/internal/shape"
)

// Observation carries exactly the four model features; these checks break
// the build if NumFeatures changes without updating Features below.
const observationFeatures = 4

const (
	_ = uint(shape.NumFeatures - observationFeatures)
	_ = uint(observationFeatures - shape.NumFeatures)
)

// Location represents a logical place for which we track weather.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	if l.Name != "" {
		return l.Name
	}
	return fmt.Sprintf("%.4f,%.4f", l.Lat, l.Lon)
}

// Observation is one day of measurements for a location, the unit the model
// consumes. Field names follow the training dataset columns.
type Observation struct {
	ID           string    `json:"id"`
	Location     Location  `json:"location"`
	Date         time.Time `json:"date"` // midnight UTC
	TemperatureC float64   `json:"meantemp"`
	HumidityPct  float64   `json:"humidity"`
	WindSpeedKmh float64   `json:"wind_speed"`
	PressureHpa  float64   `json:"meanpressure"`
	Source       string    `json:"source,omitempty"`
}

// Features returns the observation in tensor column order.
func (o Observation) Features() shape.Features {
	return shape.Features{o.TemperatureC, o.HumidityPct, o.WindSpeedKmh, o.PressureHpa}
}

// Plausible ranges for a daily mean.
const (
	MinTemperatureC = -90.0
	MaxTemperatureC = 60.0
	MaxHumidityPct  = 100.0
)

// ErrInvalidObservation is returned for observations the model cannot use.
var ErrInvalidObservation = errors.New("invalid observation")

// Validate rejects observations the model cannot use.
func (o Observation) Validate() error {
	if o.Date.IsZero() {
		return fmt.Errorf("%w: no date", ErrInvalidObservation)
	}
	date := o.Date.Format(DateLayout)
	for i, v := range o.Features() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w %s: %s is not a finite number", ErrInvalidObservation, date, shape.FeatureNames[i])
		}
	}
	switch {
	case o.TemperatureC < MinTemperatureC || o.TemperatureC > MaxTemperatureC:
		return fmt.Errorf("%w %s: meantemp %.1f out of range", ErrInvalidObservation, date, o.TemperatureC)
	case o.HumidityPct < 0 || o.HumidityPct > MaxHumidityPct:
		return fmt.Errorf("%w %s: humidity %.1f out of range", ErrInvalidObservation, date, o.HumidityPct)
	case o.WindSpeedKmh < 0:
		return fmt.Errorf("%w %s: wind_speed %.1f is negative", ErrInvalidObservation, date, o.WindSpeedKmh)
	case o.PressureHpa <= 0:
		return fmt.Errorf("%w %s: meanpressure %.1f must be positive", ErrInvalidObservation, date, o.PressureHpa)
	}
	return nil
}

// DateLayout is the day format used by the dataset and the API.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
