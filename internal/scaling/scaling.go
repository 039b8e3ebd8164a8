// Package scaling implements the min/max feature scaling applied to every
// day before it enters the model. Parameters are fitted on the full training
// dataset and must be the same ones the model was trained with.
package scaling

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/i474232898/weather-predictor/internal/shape"
)

var ErrInvalidParams = errors.New("invalid scaling parameters")

// Params holds per-feature bounds in shape.FeatureNames order.
type Params struct {
	Features []string       `json:"features"`
	Min      shape.Features `json:"min"`
	Max      shape.Features `json:"max"`
}

// Fit computes the bounds of each feature over rows.
func Fit(rows []shape.Features) (Params, error) {
	if len(rows) == 0 {
		return Params{}, fmt.Errorf("%w: no rows to fit", ErrInvalidParams)
	}

	p := Params{Features: slices.Clone(shape.FeatureNames[:])}
	col := make([]float64, len(rows))
	for f := 0; f < shape.NumFeatures; f++ {
		for i, r := range rows {
			col[i] = r[f]
		}
		if floats.HasNaN(col) {
			return Params{}, fmt.Errorf("%w: %s contains NaN", ErrInvalidParams, shape.FeatureNames[f])
		}
		p.Min[f] = floats.Min(col)
		p.Max[f] = floats.Max(col)
	}
	return p, nil
}

// Validate rejects bounds that cannot scale anything.
func (p Params) Validate() error {
	if len(p.Features) > 0 && !slices.Equal(p.Features, shape.FeatureNames[:]) {
		return fmt.Errorf("%w: feature order %v, expected %v", ErrInvalidParams, p.Features, shape.FeatureNames)
	}
	for i := range p.Min {
		lo, hi := p.Min[i], p.Max[i]
		if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			return fmt.Errorf("%w: %s bounds are not finite", ErrInvalidParams, shape.FeatureNames[i])
		}
		if hi < lo {
			return fmt.Errorf("%w: %s max %.4f below min %.4f", ErrInvalidParams, shape.FeatureNames[i], hi, lo)
		}
	}
	return nil
}

// Transform maps raw features to (x-min)/(max-min). A feature with max ==
// min maps to 0. Values outside the fitted range are not clipped.
func (p Params) Transform(f shape.Features) shape.Features {
	var out shape.Features
	for i, v := range f {
		span := p.Max[i] - p.Min[i]
		if span == 0 {
			continue
		}
		out[i] = (v - p.Min[i]) / span
	}
	return out
}

// Inverse maps scaled features back to raw units.
func (p Params) Inverse(f shape.Features) shape.Features {
	var out shape.Features
	for i, v := range f {
		out[i] = p.InverseFeature(i, v)
	}
	return out
}

// InverseFeature un-scales a single value of feature i, e.g. a predicted
// temperature.
func (p Params) InverseFeature(i int, v float64) float64 {
	return v*(p.Max[i]-p.Min[i]) + p.Min[i]
}

// Load reads parameters previously written by Save.
func Load(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("failed to read scaling params: %w", err)
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Save writes p as indented JSON.
func (p Params) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
