//go:build noembed

package model

// Built with -tags noembed: no model in the binary, it must be loaded from
// MODEL_PATH.

var embeddedModel string

var embeddedManifest []byte

var hasEmbeddedModel = false
