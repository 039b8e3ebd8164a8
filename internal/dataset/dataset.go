// Package dataset reads the daily climate CSV the model was trained on
// (date, meantemp, humidity, wind_speed, meanpressure).
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/i474232898/weather-predictor/internal/shape"
	"github.com/i474232898/weather-predictor/internal/weather"
)

// DateColumn holds the day of each row.
const DateColumn = "date"

var (
	ErrMissingColumn = errors.New("missing column")
	ErrEmpty         = errors.New("dataset has no rows")
)

// Dataset is the parsed CSV, one observation per row in file order.
type Dataset struct {
	Rows []weather.Observation
}

// LoadFile opens and parses path.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Load parses a CSV with a header row. Columns may appear in any order and
// unknown columns are ignored. A missing date column is allowed; rows then
// carry a zero Date.
func Load(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	var cols [shape.NumFeatures]int
	for i, name := range shape.FeatureNames {
		c, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		cols[i] = c
	}
	dateCol, hasDate := index[DateColumn]

	ds := &Dataset{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		var f shape.Features
		for i, c := range cols {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid %s %q", line, shape.FeatureNames[i], rec[c])
			}
			f[i] = v
		}

		obs := weather.Observation{
			TemperatureC: f[0],
			HumidityPct:  f[1],
			WindSpeedKmh: f[2],
			PressureHpa:  f[3],
			Source:       "dataset",
		}
		if hasDate {
			day, err := weather.ParseDay(strings.TrimSpace(rec[dateCol]))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			obs.Date = day
		}
		ds.Rows = append(ds.Rows, obs)
	}

	if len(ds.Rows) == 0 {
		return nil, ErrEmpty
	}
	return ds, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Tail returns the last n rows, or all rows if there are fewer.
func (d *Dataset) Tail(n int) []weather.Observation {
	if n >= len(d.Rows) {
		return d.Rows
	}
	return d.Rows[len(d.Rows)-n:]
}

// Features returns every row's feature vector in file order.
func (d *Dataset) Features() []shape.Features {
	out := make([]shape.Features, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Features()
	}
	return out
}
