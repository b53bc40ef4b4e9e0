package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/austindatascientist/weather-graph/internal/graph"
	"github.com/austindatascientist/weather-graph/internal/location"
	"github.com/austindatascientist/weather-graph/internal/store"
	"github.com/austindatascientist/weather-graph/internal/weather/providers"
)

var validate = validator.New()

// GraphBuilder materializes a city graph from a build request.
type GraphBuilder interface {
	BuildCityGraphAt(ctx context.Context, req graph.BuildRequest) (graph.Summary, error)
}

// GraphStats reports node populations per label.
type GraphStats interface {
	NodeCounts(ctx context.Context, labels ...string) (map[string]int64, error)
}

// ForecastReader looks up stored daily forecast rows.
type ForecastReader interface {
	GetByDateAndLocation(ctx context.Context, date time.Time, lat, lon float64) (store.ForecastRow, error)
}

// Deps bundles what the HTTP handlers need.
type Deps struct {
	Builder   GraphBuilder
	Graph     GraphStats
	Forecasts ForecastReader
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Post("/graph/cities", func(c *fiber.Ctx) error {
		var req createCityGraphRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if req.Days == 0 {
			req.Days = 7
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		summary, err := deps.Builder.BuildCityGraphAt(c.Context(), graph.BuildRequest{
			CityName:  req.CityName,
			State:     req.State,
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		})
		if err != nil {
			return mapDomainError(err)
		}

		return c.JSON(summary)
	})

	v1.Get("/graph/stats", func(c *fiber.Ctx) error {
		counts, err := deps.Graph.NodeCounts(c.Context(),
			"Location", "Temperature", "Humidity", "WeatherReading")
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to count graph nodes")
		}
		return c.JSON(fiber.Map{"nodes": counts})
	})

	v1.Get("/weather/today", func(c *fiber.Ctx) error {
		lat, lon, err := parseCoordinates(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		today := time.Now().UTC().Truncate(24 * time.Hour)
		row, err := deps.Forecasts.GetByDateAndLocation(c.Context(), today, lat, lon)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no data for today at this location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}
		return c.JSON(row)
	})

	v1.Get("/weather/:date", func(c *fiber.Ctx) error {
		date, err := time.Parse("2006-01-02", c.Params("date"))
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid date format, use YYYY-MM-DD")
		}
		lat, lon, err := parseCoordinates(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		row, err := deps.Forecasts.GetByDateAndLocation(c.Context(), date, lat, lon)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no data for that date at this location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}
		return c.JSON(row)
	})
}

// createCityGraphRequest mirrors the graph-build contract: geocode the city
// name unless explicit coordinates are given.
type createCityGraphRequest struct {
	CityName  string   `json:"city_name" validate:"required,min=1,max=100"`
	State     string   `json:"state" validate:"omitempty,len=2"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Days      int      `json:"days" validate:"gte=1,lte=30"`
}

func parseCoordinates(c *fiber.Ctx) (lat, lon float64, err error) {
	lat = c.QueryFloat("lat")
	lon = c.QueryFloat("lon")
	if c.Query("lat") == "" || c.Query("lon") == "" {
		return 0, 0, errors.New("lat and lon query parameters are required")
	}
	if err := location.ValidateCoordinates(lat, lon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// mapDomainError translates pipeline failures into HTTP statuses:
// permanent resolution/coverage misses are 404, bad input is 400, and
// transient upstream failures are 502.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, location.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "could not find location: "+err.Error())
	case errors.Is(err, providers.ErrOutsideCoverage):
		return fiber.NewError(fiber.StatusNotFound, "location outside forecast coverage: "+err.Error())
	case errors.Is(err, location.ErrOutOfRange):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, location.ErrUnavailable), errors.Is(err, providers.ErrService):
		return fiber.NewError(fiber.StatusBadGateway, "upstream service unavailable: "+err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create graph nodes: "+err.Error())
	}
}
