package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-predictor/internal/shape"
	"github.com/i474232898/weather-predictor/internal/weather"
)

// Open-Meteo daily variables, in shape.FeatureNames order.
var openMeteoDaily = [shape.NumFeatures]string{
	"temperature_2m_mean",
	"relative_humidity_2m_mean",
	"wind_speed_10m_mean",
	"pressure_msl_mean",
}

var errMissingDay = errors.New("day missing from response")

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// FetchDay returns the daily means for day at loc. Wind speed is in km/h and
// pressure is reduced to mean sea level, matching the training data.
func (p *OpenMeteoProvider) FetchDay(ctx context.Context, loc weather.Location, day time.Time) (weather.ProviderReading, error) {
	date := weather.Day(day).Format(weather.DateLayout)

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", loc.Lat))
		values.Set("longitude", fmt.Sprintf("%f", loc.Lon))
		values.Set("start_date", date)
		values.Set("end_date", date)
		values.Set("timezone", "UTC")
		values.Set("wind_speed_unit", "kmh")
		for _, v := range openMeteoDaily {
			values.Add("daily", v)
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.ProviderReading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Daily map[string]json.RawMessage `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.ProviderReading{}, err
	}

	var times []string
	if err := json.Unmarshal(payload.Daily["time"], &times); err != nil {
		return weather.ProviderReading{}, fmt.Errorf("openmeteo: invalid daily.time: %w", err)
	}
	idx := -1
	for i, t := range times {
		if t == date {
			idx = i
			break
		}
	}
	if idx < 0 {
		return weather.ProviderReading{}, fmt.Errorf("openmeteo: %w: %s", errMissingDay, date)
	}

	var vals shape.Features
	for i, name := range openMeteoDaily {
		var series []*float64
		if err := json.Unmarshal(payload.Daily[name], &series); err != nil {
			return weather.ProviderReading{}, fmt.Errorf("openmeteo: invalid daily.%s: %w", name, err)
		}
		if idx >= len(series) || series[idx] == nil {
			return weather.ProviderReading{}, fmt.Errorf("openmeteo: no %s for %s", name, date)
		}
		vals[i] = *series[idx]
	}

	return weather.ProviderReading{
		ProviderName: p.name,
		Date:         weather.Day(day),
		TemperatureC: vals[0],
		HumidityPct:  vals[1],
		WindSpeedKmh: vals[2],
		PressureHpa:  vals[3],
	}, nil
}
