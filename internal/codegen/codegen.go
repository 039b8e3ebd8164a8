// Package codegen renders scaling parameters and the scaled history block as
// source code, either for the firmware sketch or as a Go file.
package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"io"
	"strings"
	"text/template"

	"github.com/i474232898/weather-predictor/internal/scaling"
	"github.com/i474232898/weather-predictor/internal/shape"
)

// Target selects the output language.
type Target string

const (
	TargetArduino Target = "arduino"
	TargetGo      Target = "go"
)

var (
	ErrShortHistory  = errors.New("not enough history rows")
	ErrUnknownTarget = errors.New("unknown target")
)

// constantSuffix names each feature's MIN_/MAX_ constant in the sketch.
var constantSuffix = [shape.NumFeatures]string{"TEMP", "HUMIDITY", "WIND_SPEED", "PRESSURE"}

// Options configures Generate.
type Options struct {
	Target Target
	// Package is the Go package name; defaults to "fixtures".
	Package string
}

type bound struct {
	Name string
	Min  string
	Max  string
}

type templateData struct {
	Package string
	Bounds  []bound
	Min     string
	Max     string
	Rows    []string
}

// Generate writes the last shape.HistoryDays rows of history, scaled with
// params, plus the params themselves.
func Generate(w io.Writer, opts Options, params scaling.Params, history []shape.Features) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if len(history) < shape.HistoryDays {
		return fmt.Errorf("%w: have %d, need %d", ErrShortHistory, len(history), shape.HistoryDays)
	}
	history = history[len(history)-shape.HistoryDays:]

	data := templateData{
		Package: opts.Package,
		Min:     join(params.Min[:]),
		Max:     join(params.Max[:]),
	}
	if data.Package == "" {
		data.Package = "fixtures"
	}
	for i, suffix := range constantSuffix {
		data.Bounds = append(data.Bounds, bound{
			Name: suffix,
			Min:  fmt.Sprintf("%.4f", params.Min[i]),
			Max:  fmt.Sprintf("%.4f", params.Max[i]),
		})
	}
	for _, row := range history {
		scaled := params.Transform(row)
		data.Rows = append(data.Rows, join(scaled[:]))
	}

	switch opts.Target {
	case TargetArduino, "":
		return arduinoTemplate.Execute(w, data)
	case TargetGo:
		var buf bytes.Buffer
		if err := goTemplate.Execute(&buf, data); err != nil {
			return err
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return fmt.Errorf("failed to format generated source: %w", err)
		}
		_, err = w.Write(src)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTarget, opts.Target)
	}
}

func join(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%.4f", v)
	}
	return strings.Join(parts, ", ")
}

var arduinoTemplate = template.Must(template.New("arduino").Parse(`// SCALING PARAMETERS (auto-generated)
{{- range .Bounds}}
const float MIN_{{.Name}} = {{.Min}};
const float MAX_{{.Name}} = {{.Max}};
{{- end}}

// HISTORICAL DATA (auto-generated and scaled)
const float historicalData[kHistoryDays][kNumFeatures] = {
{{- range .Rows}}
  { {{- .}}},
{{- end}}
};
`))

var goTemplate = template.Must(template.New("go").Parse(`// Code generated by weather-predictor generate; DO NOT EDIT.

package {{.Package}}

import "github.com/i474232898/weather-predictor/internal/shape"

// ScalingMin and ScalingMax are the per-feature bounds used to scale HistoricalData.
var (
	ScalingMin = shape.Features{ {{- .Min -}} }
	ScalingMax = shape.Features{ {{- .Max -}} }
)

// HistoricalData holds the most recent shape.HistoryDays scaled rows.
var HistoricalData = [shape.HistoryDays][shape.NumFeatures]float32{
{{- range .Rows}}
	{ {{- .}}},
{{- end}}
}
`))
