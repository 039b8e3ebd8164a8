package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-predictor/internal/model/tflite"
	"github.com/i474232898/weather-predictor/internal/shape"
)

func buildBlob(inputDims, outputDims []int) Blob {
	return NewBlob(tflite.Build(tflite.BuildSpec{
		Description: "temperature_cnn",
		InputName:   "serving_default_input:0",
		InputDims:   inputDims,
		OutputName:  "StatefulPartitionedCall:0",
		OutputDims:  outputDims,
	}))
}

func manifestFor(blob Blob, s shape.Shape) Manifest {
	return Manifest{
		Name:        "temperature_cnn",
		Format:      "tflite",
		HistoryDays: s.History,
		FutureDays:  s.Future,
		TotalDays:   s.Total(),
		NumFeatures: s.Features,
		Features:    shape.FeatureNames[:],
		Size:        blob.Len(),
		SHA256:      blob.SHA256(),
	}
}

func writeModel(t *testing.T, blob Blob, m Manifest) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "weather_model.tflite")
	require.NoError(t, os.WriteFile(path, blob.Bytes(), 0o600))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weather_model.json"), data, 0o600))
	return path
}

func TestLoadEmbedded(t *testing.T) {
	if !HasEmbedded() {
		t.Skip("built without embedded model")
	}

	m, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, SourceEmbedded, m.Source)
	assert.Equal(t, m.Manifest.Size, m.Blob.Len())
	assert.Equal(t, m.Manifest.SHA256, m.Blob.SHA256())
	assert.True(t, m.Shape().Equal(shape.Default))
	require.Len(t, m.Info.Inputs, 1)
	assert.Equal(t, []int{1, shape.TotalDays, shape.NumFeatures}, m.Info.Inputs[0].Dims)
}

func TestLoadWithoutEmbeddedModel(t *testing.T) {
	orig := hasEmbeddedModel
	hasEmbeddedModel = false
	t.Cleanup(func() { hasEmbeddedModel = orig })

	_, err := Load(Options{})
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestLoadFromPath(t *testing.T) {
	blob := buildBlob(shape.Default.InputDims(), shape.Default.OutputDims())
	path := writeModel(t, blob, manifestFor(blob, shape.Default))

	m, err := Load(Options{Path: path})
	require.NoError(t, err)
	assert.Equal(t, path, m.Source)
	assert.Equal(t, blob.Len(), m.Blob.Len())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(Options{Path: filepath.Join(t.TempDir(), "missing.tflite")})
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestLoadMissingManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.tflite")
	require.NoError(t, os.WriteFile(path, []byte("whatever"), 0o600))

	_, err := Load(Options{Path: path})
	assert.ErrorIs(t, err, ErrManifest)
}

func TestValidateLength(t *testing.T) {
	blob := buildBlob(shape.Default.InputDims(), shape.Default.OutputDims())
	m := manifestFor(blob, shape.Default)

	t.Run("declared length matches", func(t *testing.T) {
		_, err := Validate(blob, m, shape.Default)
		assert.NoError(t, err)
	})

	t.Run("declared length differs", func(t *testing.T) {
		bad := m
		bad.Size = 20480
		_, err := Validate(blob, bad, shape.Default)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("empty blob", func(t *testing.T) {
		_, err := Validate(Blob{}, Manifest{}, shape.Default)
		assert.ErrorIs(t, err, ErrNoModel)
	})
}

func TestValidateChecksum(t *testing.T) {
	blob := buildBlob(shape.Default.InputDims(), shape.Default.OutputDims())
	m := manifestFor(blob, shape.Default)
	m.SHA256 = NewBlob([]byte("something else")).SHA256()

	_, err := Validate(blob, m, shape.Default)
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	m.SHA256 = ""
	_, err = Validate(blob, m, shape.Default)
	assert.NoError(t, err)
}

func TestValidateShape(t *testing.T) {
	blob := buildBlob(shape.Default.InputDims(), shape.Default.OutputDims())

	tests := []struct {
		name   string
		mutate func(*Manifest)
	}{
		{"different window", func(m *Manifest) { m.HistoryDays = 30; m.TotalDays = 31 }},
		{"different features", func(m *Manifest) { m.NumFeatures = 3 }},
		{"total not derived", func(m *Manifest) { m.TotalDays = 61 }},
		{"zero future", func(m *Manifest) { m.FutureDays = 0; m.TotalDays = 59 }},
		{"feature order", func(m *Manifest) { m.Features = []string{"humidity", "meantemp", "wind_speed", "meanpressure"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := manifestFor(blob, shape.Default)
			tt.mutate(&m)
			_, err := Validate(blob, m, shape.Default)
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})
	}
}

// A manifest can claim the right geometry while the exported graph says
// otherwise; the flatbuffer dims win.
func TestValidateTensorDims(t *testing.T) {
	t.Run("input", func(t *testing.T) {
		blob := buildBlob([]int{1, 31, 4}, shape.Default.OutputDims())
		_, err := Validate(blob, manifestFor(blob, shape.Default), shape.Default)
		assert.ErrorIs(t, err, ErrShapeMismatch)
		assert.ErrorContains(t, err, "input tensor")
	})

	t.Run("output", func(t *testing.T) {
		blob := buildBlob(shape.Default.InputDims(), []int{1, 7})
		_, err := Validate(blob, manifestFor(blob, shape.Default), shape.Default)
		assert.ErrorIs(t, err, ErrShapeMismatch)
		assert.ErrorContains(t, err, "output tensor")
	})

	t.Run("no output", func(t *testing.T) {
		blob := buildBlob(shape.Default.InputDims(), nil)
		_, err := Validate(blob, manifestFor(blob, shape.Default), shape.Default)
		assert.ErrorIs(t, err, ErrShapeMismatch)
		assert.ErrorContains(t, err, "no output tensor")
	})
}

// A deployment compiled with different constants than the export used must
// be rejected.
func TestValidateRejectsOtherDeployment(t *testing.T) {
	exported := shape.Shape{History: 59, Future: 1, Features: 4}
	blob := buildBlob(exported.InputDims(), exported.OutputDims())
	m := manifestFor(blob, exported)

	_, err := Validate(blob, m, exported)
	require.NoError(t, err)

	_, err = Validate(blob, m, shape.Shape{History: 30, Future: 1, Features: 4})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestValidateNotTFLite(t *testing.T) {
	blob := NewBlob([]byte("definitely not a flatbuffer"))
	_, err := Validate(blob, manifestFor(blob, shape.Default), shape.Default)
	assert.ErrorIs(t, err, ErrNotTFLite)
}

func TestValidateFormat(t *testing.T) {
	blob := buildBlob(shape.Default.InputDims(), shape.Default.OutputDims())
	m := manifestFor(blob, shape.Default)
	m.Format = "onnx"
	_, err := Validate(blob, m, shape.Default)
	assert.ErrorIs(t, err, ErrManifest)
}

func TestBlobIsImmutable(t *testing.T) {
	src := []byte{1, 2, 3, 4}
	blob := NewBlob(src)
	src[0] = 9

	out := blob.Bytes()
	assert.Equal(t, []byte{1, 2, 3, 4}, out)
	out[1] = 9
	assert.Equal(t, []byte{1, 2, 3, 4}, blob.Bytes())
	assert.Equal(t, 4, blob.Len())
	assert.False(t, blob.IsZero())
	assert.True(t, Blob{}.IsZero())
}
