package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-predictor/internal/model"
	"github.com/i474232898/weather-predictor/internal/shape"
)

var (
	modelPath     string
	modelManifest string
	modelJSON     bool
	modelExport   string
)

var shapeCmd = &cobra.Command{
	Use:   "shape",
	Short: "Print the compiled shape constants",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "HistoryDays = %d\n", shape.HistoryDays)
		fmt.Fprintf(out, "FutureDays  = %d\n", shape.FutureDays)
		fmt.Fprintf(out, "TotalDays   = %d\n", shape.TotalDays)
		fmt.Fprintf(out, "NumFeatures = %d %v\n", shape.NumFeatures, shape.FeatureNames)
		fmt.Fprintf(out, "input %v output %v\n", shape.Default.InputDims(), shape.Default.OutputDims())
	},
}

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Validate the model against the compiled shape and describe it",
	Long: `Load the embedded model (or --path), check its size, digest, manifest and
tensor dimensions against the compiled shape constants, and describe it.
Exits non-zero when the model does not match.`,
	RunE: runModel,
}

func init() {
	rootCmd.AddCommand(shapeCmd)
	rootCmd.AddCommand(modelCmd)

	modelCmd.Flags().StringVarP(&modelPath, "path", "p", "", "Model file (default: embedded model)")
	modelCmd.Flags().StringVar(&modelManifest, "manifest", "", "Manifest file (default: model path with .json extension)")
	modelCmd.Flags().BoolVar(&modelJSON, "json", false, "Print the description as JSON")
	modelCmd.Flags().StringVar(&modelExport, "export", "", "Write the validated model bytes to this file")
}

func runModel(cmd *cobra.Command, args []string) error {
	m, err := model.Load(model.Options{Path: modelPath, ManifestPath: modelManifest})
	if err != nil {
		return err
	}

	if modelExport != "" {
		if err := exportModel(m, modelExport); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if modelJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}

	fmt.Fprintf(out, "model:    %s (%s, from %s)\n", m.Manifest.Name, m.Manifest.Format, m.Source)
	fmt.Fprintf(out, "size:     %d bytes\n", m.Blob.Len())
	fmt.Fprintf(out, "sha256:   %s\n", m.Blob.SHA256())
	fmt.Fprintf(out, "shape:    %s\n", m.Shape())
	fmt.Fprintf(out, "version:  %d\n", m.Info.Version)
	for _, t := range m.Info.Inputs {
		fmt.Fprintf(out, "input:    %s %s %v\n", t.Name, t.Type, t.Dims)
	}
	for _, t := range m.Info.Outputs {
		fmt.Fprintf(out, "output:   %s %s %v\n", t.Name, t.Type, t.Dims)
	}
	fmt.Fprintln(out, "OK")
	return nil
}

func exportModel(m *model.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := m.Blob.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
