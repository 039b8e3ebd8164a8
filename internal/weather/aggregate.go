package weather

import (
	"sort"
	"strings"
	"time"
)

// AggregateReadings combines provider readings for the same day into one
// Observation. Numeric fields are averaged; Source lists the providers.
func AggregateReadings(loc Location, day time.Time, readings []ProviderReading) Observation {
	obs := Observation{
		Location: loc,
		Date:     Day(day),
	}
	if len(readings) == 0 {
		return obs
	}

	var (
		sumTemp     float64
		sumHumidity float64
		sumWind     float64
		sumPressure float64
	)
	names := make([]string, 0, len(readings))

	for _, r := range readings {
		sumTemp += r.TemperatureC
		sumHumidity += r.HumidityPct
		sumWind += r.WindSpeedKmh
		sumPressure += r.PressureHpa
		names = append(names, r.ProviderName)
	}

	n := float64(len(readings))
	obs.TemperatureC = sumTemp / n
	obs.HumidityPct = sumHumidity / n
	obs.WindSpeedKmh = sumWind / n
	obs.PressureHpa = sumPressure / n
	sort.Strings(names)
	obs.Source = strings.Join(names, ",")
	return obs
}
