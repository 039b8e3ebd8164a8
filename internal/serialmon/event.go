package serialmon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/weather-predictor/internal/weather"
)

// Kind is the value of a line's "event" field.
type Kind string

const (
	KindMenu    Kind = "menu"
	KindState   Kind = "state"
	KindKeyword Kind = "keyword"
	KindSelect  Kind = "select"
	KindData    Kind = "data"
	KindError   Kind = "error"
	// KindRaw marks lines that are not JSON objects.
	KindRaw Kind = "raw"
)

var ErrNotObservation = errors.New("payload is not an observation")

// Event is one line received from the board.
type Event struct {
	Kind   Kind
	Line   string
	Fields map[string]json.RawMessage
}

// Decode parses one trimmed line. Anything that is not a JSON object becomes
// a KindRaw event; objects without an "event" field keep an empty Kind.
func Decode(line string) Event {
	ev := Event{Kind: KindRaw, Line: line}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &fields); err != nil || fields == nil {
		return ev
	}
	ev.Fields = fields
	ev.Kind = ""
	if raw, ok := fields["event"]; ok {
		var kind string
		if json.Unmarshal(raw, &kind) == nil {
			ev.Kind = Kind(kind)
		}
	}
	return ev
}

// Field renders a field for display: strings unquoted, everything else as
// compact JSON, "-" when absent.
func (e Event) Field(name string) string {
	raw, ok := e.Fields[name]
	if !ok {
		return "-"
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if json.Compact(&buf, raw) != nil {
		return string(raw)
	}
	return buf.String()
}

// Format renders the compact one-line view of ev.
func Format(ev Event) string {
	switch ev.Kind {
	case KindMenu:
		return "[MENU] selection=" + ev.Field("selection")
	case KindState:
		return "[STATE] " + ev.Field("state")
	case KindKeyword:
		return fmt.Sprintf("[KW] label=%s score=%s", ev.Field("label"), ev.Field("score"))
	case KindSelect:
		return "[SELECT] option=" + ev.Field("option")
	case KindData:
		return fmt.Sprintf("[DATA] option=%s payload=%s", ev.Field("option"), ev.Field("payload"))
	case KindError:
		return fmt.Sprintf("[ERROR@%s] %s", ev.Field("where"), ev.Field("msg"))
	default:
		return ev.Line
	}
}

// Observation decodes the payload of a data event. The payload carries the
// dataset columns and an optional "date"; fallback is used when the date is
// missing.
func (e Event) Observation(fallback time.Time) (weather.Observation, error) {
	if e.Kind != KindData {
		return weather.Observation{}, fmt.Errorf("%w: %s event", ErrNotObservation, e.Kind)
	}
	raw, ok := e.Fields["payload"]
	if !ok {
		return weather.Observation{}, fmt.Errorf("%w: no payload", ErrNotObservation)
	}

	var p struct {
		Date         string   `json:"date"`
		TemperatureC *float64 `json:"meantemp"`
		HumidityPct  *float64 `json:"humidity"`
		WindSpeedKmh *float64 `json:"wind_speed"`
		PressureHpa  *float64 `json:"meanpressure"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return weather.Observation{}, fmt.Errorf("%w: %v", ErrNotObservation, err)
	}
	if p.TemperatureC == nil || p.HumidityPct == nil || p.WindSpeedKmh == nil || p.PressureHpa == nil {
		return weather.Observation{}, fmt.Errorf("%w: missing feature", ErrNotObservation)
	}

	obs := weather.Observation{
		Date:         weather.Day(fallback),
		TemperatureC: *p.TemperatureC,
		HumidityPct:  *p.HumidityPct,
		WindSpeedKmh: *p.WindSpeedKmh,
		PressureHpa:  *p.PressureHpa,
		Source:       "serial",
	}
	if p.Date != "" {
		day, err := weather.ParseDay(p.Date)
		if err != nil {
			return weather.Observation{}, err
		}
		obs.Date = day
	}
	if opt := e.Field("option"); opt != "-" {
		obs.Source = "serial:" + opt
	}
	return obs, nil
}

