//go:build !noembed

package model

import (
	_ "embed" // Embedding the exported model into the binary.
)

// Exported TensorFlow Lite model and the manifest written next to it by the
// export step. Built with -tags noembed the binary carries neither and
// MODEL_PATH must point at a model file.
//
//go:embed data/weather_model.tflite
var embeddedModel string

//go:embed data/weather_model.json
var embeddedManifest []byte

// hasEmbeddedModel is a var so tests can override it.
var hasEmbeddedModel = true
