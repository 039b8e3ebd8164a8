package scaling

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-predictor/internal/shape"
)

var rows = []shape.Features{
	{10, 80, 0, 1015},
	{20, 60, 5, 1010},
	{30, 40, 10, 1005},
}

func TestFit(t *testing.T) {
	p, err := Fit(rows)
	require.NoError(t, err)

	assert.Equal(t, shape.Features{10, 40, 0, 1005}, p.Min)
	assert.Equal(t, shape.Features{30, 80, 10, 1015}, p.Max)
	assert.Equal(t, shape.FeatureNames[:], p.Features)
	assert.NoError(t, p.Validate())
}

func TestFitErrors(t *testing.T) {
	_, err := Fit(nil)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = Fit([]shape.Features{{math.NaN(), 1, 1, 1}})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestTransformInverse(t *testing.T) {
	p, err := Fit(rows)
	require.NoError(t, err)

	scaled := p.Transform(rows[1])
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5, 0.5}, scaled[:], 1e-9)

	back := p.Inverse(scaled)
	assert.InDeltaSlice(t, rows[1][:], back[:], 1e-9)

	assert.InDelta(t, 25.0, p.InverseFeature(0, 0.75), 1e-9)
}

func TestTransformConstantFeature(t *testing.T) {
	p, err := Fit([]shape.Features{{5, 50, 3, 1000}, {7, 50, 3, 1000}})
	require.NoError(t, err)

	out := p.Transform(shape.Features{6, 50, 3, 1000})
	assert.Equal(t, shape.Features{0.5, 0, 0, 0}, out)
}

func TestValidate(t *testing.T) {
	p := Params{Min: shape.Features{0, 0, 0, 10}, Max: shape.Features{1, 1, 1, 5}}
	assert.ErrorIs(t, p.Validate(), ErrInvalidParams)

	p = Params{Max: shape.Features{math.Inf(1), 1, 1, 1}}
	assert.ErrorIs(t, p.Validate(), ErrInvalidParams)

	p = Params{Features: []string{"a", "b", "c", "d"}, Max: shape.Features{1, 1, 1, 1}}
	assert.ErrorIs(t, p.Validate(), ErrInvalidParams)
}

func TestSaveLoad(t *testing.T) {
	p, err := Fit(rows)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "scaling.json")
	require.NoError(t, p.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
