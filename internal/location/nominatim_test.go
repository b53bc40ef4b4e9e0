package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimResolve(t *testing.T) {
	var gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Denver", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat": "39.7392364", "lon": "-104.9848623",
			"display_name": "Denver, Denver County, Colorado, United States"}]`))
	}))
	defer srv.Close()

	p := NewNominatimProvider(srv.Client(), srv.URL, "weather-graph-test")
	info, err := p.Resolve(context.Background(), "Denver")
	require.NoError(t, err)

	assert.Equal(t, "weather-graph-test", gotUserAgent)
	assert.InDelta(t, 39.7392, info.Latitude, 0.001)
	assert.InDelta(t, -104.9849, info.Longitude, 0.001)
	assert.Equal(t, "Denver", info.City)
	assert.Equal(t, "CO", info.State)
}

func TestNominatimResolveNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	p := NewNominatimProvider(srv.Client(), srv.URL, "weather-graph-test")
	_, err := p.Resolve(context.Background(), "Nowheresville Qxzy")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNominatimResolveServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewNominatimProvider(srv.Client(), srv.URL, "weather-graph-test")
	_, err := p.Resolve(context.Background(), "Denver")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound, "transient failures must stay distinct from no-match")
}

func TestNominatimResolveFallsBackToPlaceName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat": "10", "lon": "20", "display_name": ""}]`))
	}))
	defer srv.Close()

	p := NewNominatimProvider(srv.Client(), srv.URL, "weather-graph-test")
	info, err := p.Resolve(context.Background(), "Somewhere")
	require.NoError(t, err)
	assert.Equal(t, "Somewhere", info.City)
	assert.Empty(t, info.State)
}
