package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austindatascientist/weather-graph/internal/graph"
	"github.com/austindatascientist/weather-graph/internal/location"
	"github.com/austindatascientist/weather-graph/internal/store"
)

type fakeBuilder struct {
	lastReq graph.BuildRequest
	summary graph.Summary
	err     error
}

func (b *fakeBuilder) BuildCityGraphAt(ctx context.Context, req graph.BuildRequest) (graph.Summary, error) {
	b.lastReq = req
	return b.summary, b.err
}

type fakeStats struct {
	counts map[string]int64
	err    error
}

func (s fakeStats) NodeCounts(ctx context.Context, labels ...string) (map[string]int64, error) {
	return s.counts, s.err
}

type fakeForecasts struct {
	row store.ForecastRow
	err error
}

func (f fakeForecasts) GetByDateAndLocation(ctx context.Context, date time.Time, lat, lon float64) (store.ForecastRow, error) {
	return f.row, f.err
}

func newTestApp(deps Deps) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, deps)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCreateCityGraph(t *testing.T) {
	builder := &fakeBuilder{summary: graph.Summary{
		City:              "Denver",
		State:             "CO",
		Latitude:          39.7392,
		Longitude:         -104.9903,
		DistanceToCoastKM: 1350.2,
		NodesCreated:      map[string]int{"temperature_nodes": 7, "humidity_nodes": 7},
		EdgesCreated:      map[string]int64{"concurrent_temp_humidity": 7},
	}}
	app := newTestApp(Deps{Builder: builder})

	resp := postJSON(t, app, "/api/v1/graph/cities",
		`{"city_name": "Denver", "state": "CO", "latitude": 39.7392, "longitude": -104.9903}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got graph.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Denver", got.City)
	assert.Equal(t, 7, got.NodesCreated["temperature_nodes"])

	assert.Equal(t, "Denver", builder.lastReq.CityName)
	require.NotNil(t, builder.lastReq.Latitude)
	assert.InDelta(t, 39.7392, *builder.lastReq.Latitude, 0.0001)
}

func TestCreateCityGraphValidation(t *testing.T) {
	app := newTestApp(Deps{Builder: &fakeBuilder{}})

	cases := []struct {
		name string
		body string
	}{
		{"missing city_name", `{"state": "CO"}`},
		{"city_name too long", fmt.Sprintf(`{"city_name": %q}`, strings.Repeat("x", 101))},
		{"one-letter state", `{"city_name": "Denver", "state": "C"}`},
		{"latitude out of range", `{"city_name": "Denver", "latitude": 91, "longitude": 0}`},
		{"days out of range", `{"city_name": "Denver", "days": 99}`},
		{"malformed body", `{"city_name": `},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/v1/graph/cities", tc.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCreateCityGraphErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown place", fmt.Errorf("resolving: %w", location.ErrNotFound), fiber.StatusNotFound},
		{"geocoder down", fmt.Errorf("resolving: %w", location.ErrUnavailable), fiber.StatusBadGateway},
		{"bad coordinates", location.ErrOutOfRange, fiber.StatusBadRequest},
		{"storage failure", fmt.Errorf("merge failed"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(Deps{Builder: &fakeBuilder{err: tc.err}})
			resp := postJSON(t, app, "/api/v1/graph/cities", `{"city_name": "Denver"}`)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestGraphStats(t *testing.T) {
	app := newTestApp(Deps{Graph: fakeStats{counts: map[string]int64{"Location": 9, "Temperature": 63}}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/graph/stats", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes": {"Location": 9, "Temperature": 63}}`, string(body))
}

func TestGetWeatherByDate(t *testing.T) {
	row := store.ForecastRow{
		Date:         time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		HighTempF:    52,
		LowTempF:     34,
		LocationName: "Huntsville, AL",
		Latitude:     34.73,
		Longitude:    -86.59,
	}
	app := newTestApp(Deps{Forecasts: fakeForecasts{row: row}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/v1/weather/2025-12-01?lat=34.73&lon=-86.59", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got store.ForecastRow
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 52.0, got.HighTempF)
	assert.Equal(t, "Huntsville, AL", got.LocationName)
}

func TestGetWeatherByDateRejectsBadInput(t *testing.T) {
	app := newTestApp(Deps{Forecasts: fakeForecasts{}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/v1/weather/12-01-2025?lat=34.73&lon=-86.59", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, "wrong date layout")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet,
		"/api/v1/weather/2025-12-01?lat=34.73", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "missing lon")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet,
		"/api/v1/weather/2025-12-01?lat=95&lon=0", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "latitude out of range")
}

func TestGetWeatherNotFound(t *testing.T) {
	app := newTestApp(Deps{Forecasts: fakeForecasts{err: store.ErrNotFound}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/v1/weather/2025-12-01?lat=34.73&lon=-86.59", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetWeatherToday(t *testing.T) {
	app := newTestApp(Deps{Forecasts: fakeForecasts{err: store.ErrNotFound}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet,
		"/api/v1/weather/today?lat=34.73&lon=-86.59", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
