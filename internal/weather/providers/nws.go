package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/austindatascientist/weather-graph/internal/weather"
)

// DefaultNWSBaseURL is the National Weather Service API.
const DefaultNWSBaseURL = "https://api.weather.gov"

var (
	// ErrOutsideCoverage is returned when coordinates fall outside the
	// provider's territory (the NWS API only covers US locations). This is
	// permanent; retrying will not help.
	ErrOutsideCoverage = errors.New("location outside forecast coverage")

	// ErrService is returned for any other provider failure. Callers may
	// retry per their own policy.
	ErrService = errors.New("weather service error")
)

// PointMetadata names the forecast resources for a grid cell, as returned
// by the /points endpoint.
type PointMetadata struct {
	Forecast         string `json:"forecast"`
	ForecastGridData string `json:"forecastGridData"`
	ForecastHourly   string `json:"forecastHourly"`
}

// GridData holds the raw named properties of a forecastGridData response.
// Series properties are extracted lazily with ExtractSeries; non-series
// fields are simply never parsed.
type GridData map[string]json.RawMessage

// NWSClient talks to the weather.gov API. The API is a two-step flow:
// /points/{lat},{lon} returns per-cell metadata naming the forecast
// resources, which are then fetched directly.
//
// Point metadata is cached per client instance, keyed by coordinates
// rounded to 4 decimal places (about 11m — collisions at that precision
// land in the same grid cell anyway).
type NWSClient struct {
	baseURL   string
	userAgent string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker

	mu     sync.Mutex
	points map[string]PointMetadata
}

// NewNWSClient creates a weather.gov client. baseURL may be empty to use
// the production API. The NWS API requires a client-identifying User-Agent.
func NewNWSClient(client *http.Client, baseURL, userAgent string) *NWSClient {
	if baseURL == "" {
		baseURL = DefaultNWSBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nws",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &NWSClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
		points:  make(map[string]PointMetadata),
	}
}

func (c *NWSClient) getJSON(ctx context.Context, url string, out any) error {
	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/geo+json")
		return req, nil
	}

	resp, err := DoRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: the NWS API only covers US locations", ErrOutsideCoverage)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrService, err)
	}
	return nil
}

// GetPointMetadata returns the forecast resource URLs for the grid cell
// covering (lat, lon), fetching and caching them on first use.
func (c *NWSClient) GetPointMetadata(ctx context.Context, lat, lon float64) (PointMetadata, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)

	c.mu.Lock()
	meta, ok := c.points[key]
	c.mu.Unlock()
	if ok {
		return meta, nil
	}

	var payload struct {
		Properties PointMetadata `json:"properties"`
	}
	url := fmt.Sprintf("%s/points/%s", c.baseURL, key)
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return PointMetadata{}, err
	}

	c.mu.Lock()
	c.points[key] = payload.Properties
	c.mu.Unlock()

	return payload.Properties, nil
}

// GetDailyForecast fetches the multi-day forecast and pairs its alternating
// day/night periods into per-date high/low records. A date missing either
// the day or the night period is dropped entirely. Results are ordered by
// date ascending.
func (c *NWSClient) GetDailyForecast(ctx context.Context, lat, lon float64) ([]weather.DailyForecast, error) {
	meta, err := c.GetPointMetadata(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Properties struct {
			Periods []struct {
				StartTime   string  `json:"startTime"`
				Temperature float64 `json:"temperature"`
				IsDaytime   bool    `json:"isDaytime"`
			} `json:"periods"`
		} `json:"properties"`
	}
	if err := c.getJSON(ctx, meta.Forecast, &payload); err != nil {
		return nil, err
	}

	type dayTemps struct {
		high, low *float64
	}
	daily := make(map[string]*dayTemps)

	for _, period := range payload.Properties.Periods {
		if len(period.StartTime) < 10 {
			continue
		}
		dateStr := period.StartTime[:10]

		temps, ok := daily[dateStr]
		if !ok {
			temps = &dayTemps{}
			daily[dateStr] = temps
		}

		temp := period.Temperature
		if period.IsDaytime {
			temps.high = &temp
		} else {
			temps.low = &temp
		}
	}

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	result := make([]weather.DailyForecast, 0, len(dates))
	for _, dateStr := range dates {
		temps := daily[dateStr]
		if temps.high == nil || temps.low == nil {
			continue
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		result = append(result, weather.DailyForecast{
			Date: date.UTC(),
			High: *temps.high,
			Low:  *temps.low,
		})
	}

	return result, nil
}

// GetGridData fetches the detailed multi-property time series for the grid
// cell covering (lat, lon).
func (c *NWSClient) GetGridData(ctx context.Context, lat, lon float64) (GridData, error) {
	meta, err := c.GetPointMetadata(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Properties GridData `json:"properties"`
	}
	if err := c.getJSON(ctx, meta.ForecastGridData, &payload); err != nil {
		return nil, err
	}

	return payload.Properties, nil
}

// gridProperty is the wire shape of a single series property.
type gridProperty struct {
	UOM    string `json:"uom"`
	Values []struct {
		ValidTime string   `json:"validTime"`
		Value     *float64 `json:"value"`
	} `json:"values"`
}

// ExtractSeries pulls one named property out of grid data as an ordered
// sequence of (instant, value) samples. Each entry's validTime is an
// "start/duration" interval; only the start instant is retained. Entries
// with a missing value are skipped. When convertCelsius is set and the
// property's unit denotes Celsius, values are converted to Fahrenheit and
// rounded to 2 decimal places. Unknown property names yield an empty
// sequence, not an error.
func ExtractSeries(grid GridData, property string, convertCelsius bool) []weather.Sample {
	raw, ok := grid[property]
	if !ok {
		return nil
	}

	var prop gridProperty
	if err := json.Unmarshal(raw, &prop); err != nil {
		return nil
	}

	isCelsius := strings.Contains(prop.UOM, "degC")

	result := make([]weather.Sample, 0, len(prop.Values))
	for _, entry := range prop.Values {
		ts := entry.ValidTime
		if i := strings.Index(ts, "/"); i >= 0 {
			ts = ts[:i]
		}
		instant, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			continue
		}

		if entry.Value == nil {
			continue
		}
		value := *entry.Value
		if convertCelsius && isCelsius {
			value = value*9/5 + 32
		}

		result = append(result, weather.Sample{
			Time:  instant.UTC(),
			Value: math.Round(value*100) / 100,
		})
	}

	return result
}
