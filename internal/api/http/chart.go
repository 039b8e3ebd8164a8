package httpapi

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/i474232898/weather-predictor/internal/weather"
)

// renderReadingsChart writes an HTML line chart of daily temperature on the
// left axis and humidity on the right axis.
func renderReadingsChart(w io.Writer, loc weather.Location, history []weather.Observation) error {
	days := make([]string, 0, len(history))
	temps := make([]opts.LineData, 0, len(history))
	humidity := make([]opts.LineData, 0, len(history))
	for _, o := range history {
		days = append(days, o.Date.Format(weather.DateLayout))
		temps = append(temps, opts.LineData{Value: o.TemperatureC})
		humidity = append(humidity, opts.LineData{Value: o.HumidityPct})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Daily readings", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Daily readings", Subtitle: fmt.Sprintf("location=%s days=%d", loc.Key(), len(history))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Days", NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Temperature (°C)"}),
	)
	line.ExtendYAxis(opts.YAxis{Name: "Humidity (%)", Min: 0, Max: 100})

	line.SetXAxis(days).
		AddSeries("Temperature", temps, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)})).
		AddSeries("Humidity", humidity, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), YAxisIndex: 1}))

	return line.Render(w)
}
