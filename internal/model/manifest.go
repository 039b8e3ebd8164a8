package model

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/i474232898/weather-predictor/internal/shape"
)

// Manifest is the metadata the export step writes next to a model file.
type Manifest struct {
	Name        string   `json:"name"`
	Format      string   `json:"format"`
	HistoryDays int      `json:"history_days"`
	FutureDays  int      `json:"future_days"`
	TotalDays   int      `json:"total_days"`
	NumFeatures int      `json:"num_features"`
	Features    []string `json:"features,omitempty"`
	Size        int      `json:"size"`
	SHA256      string   `json:"sha256,omitempty"`
}

// ParseManifest decodes a JSON manifest.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrManifest, err)
	}
	return m, nil
}

// ReadManifest reads and decodes the manifest at path.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrManifest, err)
	}
	return ParseManifest(data)
}

// Shape returns the geometry the manifest declares.
func (m Manifest) Shape() shape.Shape {
	return shape.Shape{History: m.HistoryDays, Future: m.FutureDays, Features: m.NumFeatures}
}

// CheckBlob verifies the declared size and digest against blob.
func (m Manifest) CheckBlob(blob Blob) error {
	if m.Size != blob.Len() {
		return fmt.Errorf("%w: manifest declares %d bytes, blob has %d", ErrLengthMismatch, m.Size, blob.Len())
	}
	if m.SHA256 != "" && m.SHA256 != blob.SHA256() {
		return fmt.Errorf("%w: manifest sha256 %s, blob sha256 %s", ErrChecksumMismatch, m.SHA256, blob.SHA256())
	}
	return nil
}

// CheckShape verifies the declared geometry against want.
func (m Manifest) CheckShape(want shape.Shape) error {
	got := m.Shape()
	if err := got.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if m.TotalDays != got.Total() {
		return fmt.Errorf("%w: manifest declares total_days=%d but history+future=%d",
			ErrShapeMismatch, m.TotalDays, got.Total())
	}
	if !got.Equal(want) {
		return fmt.Errorf("%w: model exported with %s, binary compiled for %s", ErrShapeMismatch, got, want)
	}
	if len(m.Features) > 0 && !slices.Equal(m.Features, shape.FeatureNames[:]) {
		return fmt.Errorf("%w: feature order %v, expected %v", ErrShapeMismatch, m.Features, shape.FeatureNames)
	}
	return nil
}
