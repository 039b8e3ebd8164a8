package httpapi

import (
	"errors"
	"mime"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-predictor/internal/model"
	"github.com/i474232898/weather-predictor/internal/shape"
	"github.com/i474232898/weather-predictor/internal/store"
	"github.com/i474232898/weather-predictor/internal/weather"
	"github.com/i474232898/weather-predictor/internal/window"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, m *model.Model) {
	v1 := app.Group("/api/v1")

	v1.Get("/model", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"shape": fiber.Map{
				"history_days": shape.HistoryDays,
				"future_days":  shape.FutureDays,
				"total_days":   shape.TotalDays,
				"num_features": shape.NumFeatures,
				"features":     shape.FeatureNames,
				"input_dims":   shape.Default.InputDims(),
				"output_dims":  shape.Default.OutputDims(),
			},
			"model":  m,
			"size":   m.Blob.Len(),
			"sha256": m.Blob.SHA256(),
		})
	})

	v1.Get("/model/blob", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "application/octet-stream")
		c.Set(fiber.HeaderContentDisposition, blobDisposition(m.Manifest.Name))
		c.Set("X-Model-Sha256", m.Blob.SHA256())
		return c.SendStream(m.Blob.Reader(), m.Blob.Len())
	})

	v1.Get("/window", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"location": service.Primary(),
			"window":   service.WindowStatus(),
		})
	})

	v1.Post("/observations", func(c *fiber.Ctx) error {
		var req observationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		obs, err := req.toObservation()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		stored, err := service.Ingest(c.UserContext(), obs)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(stored)
	})

	v1.Get("/observations", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c, service.Primary()); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		observations, err := service.Range(c.UserContext(), req.Location, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no observations for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch observations")
		}

		return c.JSON(fiber.Map{
			"location":     req.Location,
			"from":         req.From,
			"to":           req.To,
			"observations": observations,
		})
	})

	v1.Post("/input", func(c *fiber.Ctx) error {
		var req inputRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		if len(req.Current) != shape.FutureDays {
			return fiber.NewError(fiber.StatusBadRequest, "current must hold exactly "+strconv.Itoa(shape.FutureDays)+" observation(s)")
		}

		today := weather.Day(time.Now())
		current := make([]weather.Observation, 0, len(req.Current))
		for _, r := range req.Current {
			if r.Date == "" {
				r.Date = today.Format(weather.DateLayout)
			}
			obs, err := r.toObservation()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			current = append(current, obs)
		}

		values, err := service.InputTensor(current)
		if err != nil {
			if errors.Is(err, window.ErrNotReady) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{
			"dims":   shape.Default.InputDims(),
			"values": values,
		})
	})

	app.Get("/charts/readings", func(c *fiber.Ctx) error {
		days := c.QueryInt("days", 90)
		if days <= 0 || days > 3660 {
			return fiber.NewError(fiber.StatusBadRequest, "days must be between 1 and 3660")
		}
		history, err := service.History(c.UserContext(), service.Primary(), days)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch observations")
		}

		c.Type("html")
		return renderReadingsChart(c, service.Primary(), history)
	})
}

// blobDisposition names the download after the manifest, quoting or
// RFC 2231 encoding the name as needed.
func blobDisposition(name string) string {
	if name == "" {
		name = "weather_model"
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name + ".tflite"}); v != "" {
		return v
	}
	return `attachment; filename="weather_model.tflite"`
}

// observationRequest is one day of measurements as posted by clients. Field
// names follow the dataset columns.
type observationRequest struct {
	Date         string   `json:"date" validate:"required,datetime=2006-01-02"`
	Location     string   `json:"location"`
	TemperatureC *float64 `json:"meantemp" validate:"required,gte=-90,lte=60"`
	HumidityPct  *float64 `json:"humidity" validate:"required,gte=0,lte=100"`
	WindSpeedKmh *float64 `json:"wind_speed" validate:"required,gte=0"`
	PressureHpa  *float64 `json:"meanpressure" validate:"required,gt=0"`
}

func (r observationRequest) toObservation() (weather.Observation, error) {
	if err := validate.Struct(r); err != nil {
		return weather.Observation{}, err
	}
	day, err := weather.ParseDay(r.Date)
	if err != nil {
		return weather.Observation{}, err
	}
	obs := weather.Observation{
		Date:         day,
		TemperatureC: *r.TemperatureC,
		HumidityPct:  *r.HumidityPct,
		WindSpeedKmh: *r.WindSpeedKmh,
		PressureHpa:  *r.PressureHpa,
		Source:       "api",
	}
	if r.Location != "" {
		obs.Location = weather.Location{Name: r.Location}
	}
	return obs, nil
}

// inputRequest carries the current day(s) appended after the history window.
type inputRequest struct {
	Current []observationRequest `json:"current"`
}

// historyQuery holds query parameters for the observations endpoint.
type historyQuery struct {
	Location weather.Location
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx, primary weather.Location) error {
	h.Location = primary
	if name := c.Query("location"); name != "" {
		h.Location = weather.Location{Name: name}
	}

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse a day, RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if day, err := weather.ParseDay(s); err == nil {
		return day, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use YYYY-MM-DD, RFC3339 or unix seconds")
}
