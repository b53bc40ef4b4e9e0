package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/austindatascientist/weather-graph/internal/graph"
	"github.com/austindatascientist/weather-graph/internal/location"
	"github.com/austindatascientist/weather-graph/internal/store"
	"github.com/austindatascientist/weather-graph/internal/weather"
)

// ForecastSource provides the daily high/low forecast for a coordinate.
type ForecastSource interface {
	GetDailyForecast(ctx context.Context, lat, lon float64) ([]weather.DailyForecast, error)
}

// RowStore persists daily forecast rows.
type RowStore interface {
	Upsert(ctx context.Context, row store.ForecastRow) error
}

// GraphBuilder materializes a city's weather graph.
type GraphBuilder interface {
	BuildCityGraph(ctx context.Context, placeName string) (graph.Summary, error)
}

// Service runs the full ingestion pipeline for a place name: geocode,
// fetch the daily forecast, upsert relational rows, then build the city's
// graph. A graph failure after a successful relational save is logged and
// reported but does not undo the saved rows.
type Service struct {
	resolver  location.Resolver
	forecasts ForecastSource
	rows      RowStore
	builder   GraphBuilder
}

// NewService wires an ingestion Service.
func NewService(resolver location.Resolver, forecasts ForecastSource, rows RowStore, builder GraphBuilder) *Service {
	return &Service{
		resolver:  resolver,
		forecasts: forecasts,
		rows:      rows,
		builder:   builder,
	}
}

// IngestLocation fetches and stores the forecast for one place name, then
// builds its graph.
func (s *Service) IngestLocation(ctx context.Context, placeName string) error {
	info, err := s.resolver.Resolve(ctx, placeName)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", placeName, err)
	}
	log.Info("ingesting location", "place", placeName, "display_name", info.DisplayName,
		"lat", info.Latitude, "lon", info.Longitude)

	forecast, err := s.forecasts.GetDailyForecast(ctx, info.Latitude, info.Longitude)
	if err != nil {
		return fmt.Errorf("fetching forecast for %q: %w", placeName, err)
	}

	for _, day := range forecast {
		row := store.ForecastRow{
			Date:         day.Date,
			HighTempF:    day.High,
			LowTempF:     day.Low,
			LocationName: placeName,
			Latitude:     info.Latitude,
			Longitude:    info.Longitude,
		}
		if err := s.rows.Upsert(ctx, row); err != nil {
			return fmt.Errorf("saving forecast for %q: %w", placeName, err)
		}
	}
	log.Info("saved forecast rows", "place", placeName, "days", len(forecast))

	// Forecast rows are already saved; a graph failure should not fail
	// the ingestion, only surface it.
	if _, err := s.builder.BuildCityGraph(ctx, placeName); err != nil {
		log.Warn("forecast saved but graph build failed", "place", placeName, "err", err)
	}

	return nil
}

// IngestAll runs IngestLocation for each place concurrently. Different
// cities are independent writers; failures are logged per place and the
// first error is returned.
func (s *Service) IngestAll(ctx context.Context, places []string) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, place := range places {
		place := place
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := s.IngestLocation(ctx, place); err != nil {
				log.Error("ingestion failed", "place", place, "err", err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return firstErr
}
