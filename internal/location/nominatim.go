package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/austindatascientist/weather-graph/internal/weather/providers"
)

// DefaultNominatimBaseURL is OpenStreetMap's public Nominatim instance.
const DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimProvider resolves free-text place names through OpenStreetMap's
// Nominatim search API. Nominatim requires a client-identifying User-Agent
// on every request.
type NominatimProvider struct {
	baseURL   string
	userAgent string
	httpCfg   providers.HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
}

// NewNominatimProvider creates a Nominatim-backed resolver. baseURL may be
// empty to use the public instance.
func NewNominatimProvider(client *http.Client, baseURL, userAgent string) *NominatimProvider {
	if baseURL == "" {
		baseURL = DefaultNominatimBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "nominatim",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &NominatimProvider{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpCfg: providers.HTTPClientConfig{
			Client: client,
			Backoff: providers.BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

// Resolve looks up placeName and returns the best match's coordinates and a
// parsed city/state. Returns ErrNotFound when the service has no match and
// ErrUnavailable when the service errors or times out.
func (p *NominatimProvider) Resolve(ctx context.Context, placeName string) (Info, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", placeName)
		values.Set("format", "json")
		values.Set("limit", "1")

		u := fmt.Sprintf("%s/search?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", p.userAgent)
		return req, nil
	}

	resp, err := providers.DoRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Info{}, fmt.Errorf("%w: %s", ErrNotFound, placeName)
	}

	var matches []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return Info{}, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}

	if len(matches) == 0 {
		return Info{}, fmt.Errorf("%w: %s", ErrNotFound, placeName)
	}

	best := matches[0]
	lat, err := strconv.ParseFloat(best.Lat, 64)
	if err != nil {
		return Info{}, fmt.Errorf("%w: invalid latitude %q", ErrUnavailable, best.Lat)
	}
	lon, err := strconv.ParseFloat(best.Lon, 64)
	if err != nil {
		return Info{}, fmt.Errorf("%w: invalid longitude %q", ErrUnavailable, best.Lon)
	}

	city, state := ParseAddress(best.DisplayName)
	if city == "" {
		city = placeName
	}

	return Info{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: best.DisplayName,
		City:        city,
		State:       state,
	}, nil
}
