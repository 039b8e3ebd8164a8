// Package model owns the serialized weather model and the checks that run
// before anything is allowed to feed it data. A model whose declared size,
// digest or tensor geometry disagrees with the compiled shape constants is
// rejected at load time.
package model

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/i474232898/weather-predictor/internal/model/tflite"
	"github.com/i474232898/weather-predictor/internal/shape"
)

const (
	// SourceEmbedded marks a model compiled into the binary.
	SourceEmbedded = "embedded"

	formatTFLite = "tflite"
)

var (
	ErrNoModel          = errors.New("no model available")
	ErrManifest         = errors.New("invalid model manifest")
	ErrLengthMismatch   = errors.New("model length mismatch")
	ErrChecksumMismatch = errors.New("model checksum mismatch")
	ErrShapeMismatch    = errors.New("model shape mismatch")
	ErrNotTFLite        = tflite.ErrNotTFLite
)

// Options selects where the model comes from. With an empty Path the
// embedded model is used.
type Options struct {
	Path string
	// ManifestPath defaults to Path with its extension replaced by .json.
	ManifestPath string
}

// Model is a validated model blob together with its metadata.
type Model struct {
	Blob     Blob        `json:"-"`
	Manifest Manifest    `json:"manifest"`
	Info     tflite.Info `json:"tensors"`
	Source   string      `json:"source"`
	LoadedAt time.Time   `json:"loaded_at"`
}

// Shape returns the geometry the model was validated against.
func (m *Model) Shape() shape.Shape {
	return m.Manifest.Shape()
}

// Load reads the model selected by opts and validates it against the
// compiled shape.
func Load(opts Options) (*Model, error) {
	blob, manifest, source, err := read(opts)
	if err != nil {
		return nil, err
	}

	info, err := Validate(blob, manifest, shape.Default)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", source, err)
	}

	log.Printf("INFO: loaded model %q from %s (%d bytes, %s)", manifest.Name, source, blob.Len(), shape.Default)

	return &Model{
		Blob:     blob,
		Manifest: manifest,
		Info:     info,
		Source:   source,
		LoadedAt: time.Now().UTC(),
	}, nil
}

// HasEmbedded reports whether this binary was built with a model inside.
func HasEmbedded() bool {
	return hasEmbeddedModel && len(embeddedModel) > 0
}

func read(opts Options) (Blob, Manifest, string, error) {
	if opts.Path == "" {
		if !HasEmbedded() {
			return Blob{}, Manifest{}, "", fmt.Errorf("%w: binary built without embedded model and no model path configured", ErrNoModel)
		}
		manifest, err := ParseManifest(embeddedManifest)
		if err != nil {
			return Blob{}, Manifest{}, "", err
		}
		return Blob{data: embeddedModel}, manifest, SourceEmbedded, nil
	}

	data, err := os.ReadFile(opts.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Blob{}, Manifest{}, "", fmt.Errorf("%w: %s does not exist", ErrNoModel, opts.Path)
		}
		return Blob{}, Manifest{}, "", fmt.Errorf("failed to read model %s: %w", opts.Path, err)
	}

	manifestPath := opts.ManifestPath
	if manifestPath == "" {
		manifestPath = strings.TrimSuffix(opts.Path, filepath.Ext(opts.Path)) + ".json"
	}
	manifest, err := ReadManifest(manifestPath)
	if err != nil {
		return Blob{}, Manifest{}, "", err
	}

	return NewBlob(data), manifest, opts.Path, nil
}

// Validate checks blob and manifest against want: non-empty blob, declared
// length and digest, declared shape, and the tensor dims recorded inside the
// flatbuffer itself.
func Validate(blob Blob, manifest Manifest, want shape.Shape) (tflite.Info, error) {
	if blob.IsZero() {
		return tflite.Info{}, fmt.Errorf("%w: blob is empty", ErrNoModel)
	}
	if err := manifest.CheckBlob(blob); err != nil {
		return tflite.Info{}, err
	}
	if err := manifest.CheckShape(want); err != nil {
		return tflite.Info{}, err
	}
	if manifest.Format != "" && manifest.Format != formatTFLite {
		return tflite.Info{}, fmt.Errorf("%w: unsupported format %q", ErrManifest, manifest.Format)
	}

	info, err := tflite.Inspect(blob.Bytes())
	if err != nil {
		return tflite.Info{}, err
	}

	in := info.Inputs[0]
	if !slices.Equal(in.Dims, want.InputDims()) {
		return tflite.Info{}, fmt.Errorf("%w: input tensor %q has dims %v, expected %v",
			ErrShapeMismatch, in.Name, in.Dims, want.InputDims())
	}
	if len(info.Outputs) == 0 {
		return tflite.Info{}, fmt.Errorf("%w: model declares no output tensor, expected %v",
			ErrShapeMismatch, want.OutputDims())
	}
	out := info.Outputs[0]
	if !slices.Equal(out.Dims, want.OutputDims()) {
		return tflite.Info{}, fmt.Errorf("%w: output tensor %q has dims %v, expected %v",
			ErrShapeMismatch, out.Name, out.Dims, want.OutputDims())
	}

	return info, nil
}
