package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "weather-predictor",
	Short: "Feeds daily weather observations to the temperature model",
	Long: `weather-predictor keeps a rolling window of daily weather observations,
validates the deployed model against the compiled shape constants and prepares
the scaled input sequence the model consumes. It also generates firmware data
and monitors the board's serial output.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = false
}
