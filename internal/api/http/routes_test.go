package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-predictor/internal/model"
	"github.com/i474232898/weather-predictor/internal/model/tflite"
	"github.com/i474232898/weather-predictor/internal/scaling"
	"github.com/i474232898/weather-predictor/internal/shape"
	"github.com/i474232898/weather-predictor/internal/store"
	"github.com/i474232898/weather-predictor/internal/weather"
)

var delhi = weather.Location{Name: "delhi", Lat: 28.61, Lon: 77.21}

func testModel(t *testing.T) *model.Model {
	t.Helper()
	buf := tflite.Build(tflite.BuildSpec{
		Description: "test",
		InputName:   "input",
		InputDims:   shape.Default.InputDims(),
		OutputName:  "output",
		OutputDims:  shape.Default.OutputDims(),
	})
	blob := model.NewBlob(buf)
	manifest := model.Manifest{
		Name:        "test",
		Format:      "tflite",
		HistoryDays: shape.HistoryDays,
		FutureDays:  shape.FutureDays,
		TotalDays:   shape.TotalDays,
		NumFeatures: shape.NumFeatures,
		Features:    shape.FeatureNames[:],
		Size:        blob.Len(),
		SHA256:      blob.SHA256(),
	}
	info, err := model.Validate(blob, manifest, shape.Default)
	require.NoError(t, err)
	return &model.Model{Blob: blob, Manifest: manifest, Info: info, Source: "test"}
}

func newTestApp(t *testing.T) (*fiber.App, *weather.Service) {
	t.Helper()
	params := scaling.Params{
		Features: shape.FeatureNames[:],
		Min:      shape.Features{0, 0, 0, 1000},
		Max:      shape.Features{40, 100, 20, 1040},
	}
	svc := weather.NewService(store.NewMemoryStore(0, 0), nil, delhi, params)
	return NewApp(svc, testModel(t)), svc
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func fill(t *testing.T, svc *weather.Service, days int) {
	t.Helper()
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		_, err := svc.Ingest(context.Background(), weather.Observation{
			Date: start.AddDate(0, 0, i), TemperatureC: 20, HumidityPct: 50, WindSpeedKmh: 10, PressureHpa: 1020,
		})
		require.NoError(t, err)
	}
}

func TestHealthAndModel(t *testing.T) {
	app, _ := newTestApp(t)

	code, body := do(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["ready"])

	code, body = do(t, app, http.MethodGet, "/api/v1/model", "")
	require.Equal(t, http.StatusOK, code)
	sh := body["shape"].(map[string]any)
	assert.EqualValues(t, 59, sh["history_days"])
	assert.EqualValues(t, 1, sh["future_days"])
	assert.EqualValues(t, 60, sh["total_days"])
	assert.EqualValues(t, 4, sh["num_features"])
	assert.Equal(t, []any{1.0, 60.0, 4.0}, sh["input_dims"])
	assert.NotEmpty(t, body["sha256"])

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/model/blob", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	blob, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body["sha256"], resp.Header.Get("X-Model-Sha256"))
	assert.Equal(t, body["size"], float64(len(blob)))
	assert.Equal(t, "TFL3", string(blob[4:8]))
}

func TestModelBlobFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"temperature_cnn", "temperature_cnn.tflite"},
		{`cnn "v2"; x=y`, `cnn "v2"; x=y.tflite`},
		{"modèle", "modèle.tflite"},
		{"", "weather_model.tflite"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			_, params, err := mime.ParseMediaType(blobDisposition(tt.name))
			require.NoError(t, err)
			assert.Equal(t, tt.want, params["filename"])
			assert.Len(t, params, 1)
		})
	}

	app, _ := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/model/blob", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, `attachment; filename=test.tflite`, resp.Header.Get("Content-Disposition"))
}

func TestPostObservation(t *testing.T) {
	app, _ := newTestApp(t)

	code, body := do(t, app, http.MethodPost, "/api/v1/observations",
		`{"date":"2017-01-01","meantemp":15.9,"humidity":85.8,"wind_speed":2.7,"meanpressure":1018.3}`)
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, 15.9, body["meantemp"])
	assert.Equal(t, "api", body["source"])

	code, body = do(t, app, http.MethodGet, "/api/v1/window", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["window"].(map[string]any)["days"])

	tests := map[string]string{
		"missing field": `{"date":"2017-01-02","meantemp":15.9,"humidity":85.8,"wind_speed":2.7}`,
		"bad humidity":  `{"date":"2017-01-02","meantemp":15.9,"humidity":185.8,"wind_speed":2.7,"meanpressure":1018.3}`,
		"bad date":      `{"date":"02/01/2017","meantemp":15.9,"humidity":85.8,"wind_speed":2.7,"meanpressure":1018.3}`,
		"not json":      `meantemp=1`,
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			code, body := do(t, app, http.MethodPost, "/api/v1/observations", payload)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, true, body["error"])
		})
	}
}

func TestGetObservations(t *testing.T) {
	app, svc := newTestApp(t)
	fill(t, svc, 5)

	code, body := do(t, app, http.MethodGet, "/api/v1/observations?from=2017-01-02&to=2017-01-03T00:00:00Z", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["observations"], 2)

	code, _ = do(t, app, http.MethodGet, "/api/v1/observations?from=1483228800&to=1483315200", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, app, http.MethodGet, "/api/v1/observations?from=2018-01-01&to=2018-01-02", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, app, http.MethodGet, "/api/v1/observations?from=2017-01-03&to=2017-01-01", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, app, http.MethodGet, "/api/v1/observations?from=yesterday&to=2017-01-01", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, app, http.MethodGet, "/api/v1/observations", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestInput(t *testing.T) {
	app, svc := newTestApp(t)
	current := `{"current":[{"meantemp":20,"humidity":50,"wind_speed":10,"meanpressure":1020}]}`

	code, _ := do(t, app, http.MethodPost, "/api/v1/input", current)
	assert.Equal(t, http.StatusConflict, code)

	fill(t, svc, shape.HistoryDays)

	code, body := do(t, app, http.MethodPost, "/api/v1/input", current)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{1.0, 60.0, 4.0}, body["dims"])
	values := body["values"].([]any)
	require.Len(t, values, shape.Default.InputLen())
	for _, v := range values {
		assert.InDelta(t, 0.5, v, 1e-6)
	}

	code, _ = do(t, app, http.MethodPost, "/api/v1/input", `{"current":[]}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestReadingsChart(t *testing.T) {
	app, svc := newTestApp(t)
	fill(t, svc, 3)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/charts/readings?days=10", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	html, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(html), "2017-01-03")
	assert.Contains(t, string(html), "Temperature")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/charts/readings?days=0", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
