package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-predictor/internal/codegen"
	"github.com/i474232898/weather-predictor/internal/dataset"
	"github.com/i474232898/weather-predictor/internal/scaling"
	"github.com/i474232898/weather-predictor/internal/shape"
)

var (
	scaleData string
	scaleOut  string

	generateData    string
	generateScaling string
	generateTarget  string
	generatePackage string
	generateOut     string
)

var scaleCmd = &cobra.Command{
	Use:   "scale",
	Short: "Fit min/max scaling parameters on the dataset",
	Long: `Print per-feature min/max bounds of the training dataset and, with --out,
save them as JSON for serve (SCALING_PATH) and generate (--scaling).`,
	RunE: runScale,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate scaled history data for the firmware",
	Long: `Render the scaling constants and the last HistoryDays scaled rows of the
dataset, either as the C++ block pasted into the sketch (--target arduino) or
as a Go source file (--target go).`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(scaleCmd)
	rootCmd.AddCommand(generateCmd)

	scaleCmd.Flags().StringVarP(&scaleData, "data", "d", defaultDataset, "Dataset CSV")
	scaleCmd.Flags().StringVarP(&scaleOut, "out", "o", "", "Write params JSON to this file")

	generateCmd.Flags().StringVarP(&generateData, "data", "d", defaultDataset, "Dataset CSV")
	generateCmd.Flags().StringVar(&generateScaling, "scaling", "", "Params JSON (default: fit on --data)")
	generateCmd.Flags().StringVarP(&generateTarget, "target", "t", string(codegen.TargetArduino), "Output language: arduino or go")
	generateCmd.Flags().StringVar(&generatePackage, "package", "", "Package name for --target go")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Output file (default: stdout)")
}

func runScale(cmd *cobra.Command, args []string) error {
	ds, err := dataset.LoadFile(scaleData)
	if err != nil {
		return err
	}
	params, err := scaling.Fit(ds.Features())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dataset: %s (%d rows)\n", scaleData, ds.Len())
	for i, name := range shape.FeatureNames {
		fmt.Fprintf(out, "  %-13s min=%10.4f max=%10.4f\n", name, params.Min[i], params.Max[i])
	}

	if scaleOut != "" {
		if err := params.Save(scaleOut); err != nil {
			return fmt.Errorf("failed to write %s: %w", scaleOut, err)
		}
		fmt.Fprintf(out, "Saved to %s\n", scaleOut)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ds, err := dataset.LoadFile(generateData)
	if err != nil {
		return err
	}
	params, err := loadScaling(generateScaling, generateData)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if generateOut != "" {
		f, err := os.Create(generateOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	opts := codegen.Options{Target: codegen.Target(generateTarget), Package: generatePackage}
	return codegen.Generate(w, opts, params, ds.Features())
}
