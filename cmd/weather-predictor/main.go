package main

import "github.com/i474232898/weather-predictor/internal/cmd"

func main() {
	cmd.Execute()
}
