package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/austindatascientist/weather-graph/internal/geo"
	"github.com/austindatascientist/weather-graph/internal/location"
	"github.com/austindatascientist/weather-graph/internal/weather"
	"github.com/austindatascientist/weather-graph/internal/weather/providers"
)

// timestampLayout is the second-precision format stored on reading nodes.
const timestampLayout = "2006-01-02 15:04:05"

// DefaultNearThresholdKM bounds the NEAR relationship between locations.
const DefaultNearThresholdKM = 300

// Mutator is the graph mutation contract the builder works against. Atomic
// runs a batch of mutations that commit or roll back together.
type Mutator interface {
	UpsertNode(ctx context.Context, label string, key, updates map[string]any) error
	MergeNode(ctx context.Context, label string, key, updates map[string]any) error
	CreateNode(ctx context.Context, label string, props map[string]any) error
	MatchAndLink(ctx context.Context, link Link) error
	LinkConcurrentReadings(ctx context.Context, label1, label2, location string) (int64, error)
	Atomic(ctx context.Context, fn func(Mutator) error) error
}

// Atomic runs fn against a transaction-bound store.
func (s *Store) Atomic(ctx context.Context, fn func(Mutator) error) error {
	return s.InTx(ctx, func(tx *Store) error {
		return fn(tx)
	})
}

// GridSource provides the detailed forecast time series for a coordinate.
type GridSource interface {
	GetGridData(ctx context.Context, lat, lon float64) (providers.GridData, error)
}

// BuildRequest carries an explicit build target. Latitude/Longitude may be
// nil, in which case CityName is geocoded. State falls back to "US" when
// unresolved.
type BuildRequest struct {
	CityName  string
	State     string
	Latitude  *float64
	Longitude *float64
}

// Summary reports what a city build materialized.
type Summary struct {
	City              string           `json:"city"`
	State             string           `json:"state"`
	Latitude          float64          `json:"latitude"`
	Longitude         float64          `json:"longitude"`
	DistanceToCoastKM float64          `json:"distance_to_coast_km"`
	NodesCreated      map[string]int   `json:"nodes_created"`
	EdgesCreated      map[string]int64 `json:"edges_created"`
}

// Builder materializes a city's weather graph: it resolves the location,
// fetches the forecast time series, categorizes readings, and issues
// idempotent node/edge mutations through the store.
type Builder struct {
	resolver        location.Resolver
	grid            GridSource
	store           Mutator
	nearThresholdKM float64
}

// NewBuilder wires a Builder. A nearThresholdKM of 0 uses the default.
func NewBuilder(resolver location.Resolver, grid GridSource, store Mutator, nearThresholdKM float64) *Builder {
	if nearThresholdKM <= 0 {
		nearThresholdKM = DefaultNearThresholdKM
	}
	return &Builder{
		resolver:        resolver,
		grid:            grid,
		store:           store,
		nearThresholdKM: nearThresholdKM,
	}
}

// BuildCityGraph resolves a free-text place name and materializes its
// weather graph. Resolution or fetch failures abort the build before any
// graph state is written.
func (b *Builder) BuildCityGraph(ctx context.Context, placeName string) (Summary, error) {
	return b.BuildCityGraphAt(ctx, BuildRequest{CityName: placeName})
}

// BuildCityGraphAt materializes a city's graph from an explicit request,
// geocoding only when coordinates are absent.
func (b *Builder) BuildCityGraphAt(ctx context.Context, req BuildRequest) (Summary, error) {
	city := req.CityName
	state := req.State
	var lat, lon float64

	if req.Latitude != nil && req.Longitude != nil {
		lat, lon = *req.Latitude, *req.Longitude
		if err := location.ValidateCoordinates(lat, lon); err != nil {
			return Summary{}, err
		}
	} else {
		info, err := b.resolver.Resolve(ctx, req.CityName)
		if err != nil {
			return Summary{}, fmt.Errorf("resolving %q: %w", req.CityName, err)
		}
		lat, lon = info.Latitude, info.Longitude
		if info.City != "" {
			city = info.City
		}
		if state == "" {
			state = info.State
		}
		log.Info("resolved location", "place", req.CityName, "city", city,
			"state", state, "lat", lat, "lon", lon)
	}

	if len(state) != 2 {
		state = "US"
	}

	return b.build(ctx, weather.Location{
		Name:      city,
		State:     state,
		Latitude:  lat,
		Longitude: lon,
	})
}

func (b *Builder) build(ctx context.Context, loc weather.Location) (Summary, error) {
	// Fetch before mutating: a failed fetch must leave no partial graph.
	grid, err := b.grid.GetGridData(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return Summary{}, fmt.Errorf("fetching grid data for %s: %w", loc.Key(), err)
	}

	temperatures := providers.ExtractSeries(grid, "temperature", true)
	humidities := providers.ExtractSeries(grid, "relativeHumidity", false)
	log.Info("retrieved grid series", "city", loc.Name,
		"temperature_samples", len(temperatures), "humidity_samples", len(humidities))

	humidityAt := make(map[time.Time]float64, len(humidities))
	for _, h := range humidities {
		humidityAt[h.Time] = h.Value
	}

	distanceToCoast := geo.DistanceToCoast(loc.Latitude, loc.Longitude)

	var tempCount, humidityCount int
	var concurrentCount int64

	err = b.store.Atomic(ctx, func(tx Mutator) error {
		if err := tx.UpsertNode(ctx, "Location",
			map[string]any{"name": loc.Name, "state": loc.State},
			map[string]any{
				"latitude":             loc.Latitude,
				"longitude":            loc.Longitude,
				"distance_to_coast_km": distanceToCoast,
			}); err != nil {
			return err
		}

		for _, sample := range temperatures {
			ts := sample.Time.Format(timestampLayout)
			timeOfDay := weather.TimeOfDay(sample.Time.Hour())

			if err := tx.MergeNode(ctx, "Temperature",
				map[string]any{"location": loc.Name, "timestamp": ts},
				map[string]any{
					"value_f":       sample.Value,
					"time_of_day":   timeOfDay,
					"heat_category": weather.CategorizeTemperature(sample.Value),
				}); err != nil {
				return err
			}
			tempCount++

			humidity, ok := humidityAt[sample.Time]
			if !ok {
				continue
			}
			if err := tx.MergeNode(ctx, "Humidity",
				map[string]any{"location": loc.Name, "timestamp": ts},
				map[string]any{
					"value_percent": humidity,
					"time_of_day":   timeOfDay,
					"comfort_level": weather.CategorizeHumidity(humidity),
				}); err != nil {
				return err
			}
			humidityCount++
		}

		// Edges go in after every reading node for the city exists.
		n, err := tx.LinkConcurrentReadings(ctx, "Temperature", "Humidity", loc.Name)
		if err != nil {
			return err
		}
		concurrentCount = n
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	log.Info("materialized city graph", "city", loc.Name, "state", loc.State,
		"temperature_nodes", tempCount, "humidity_nodes", humidityCount,
		"concurrent_edges", concurrentCount, "distance_to_coast_km", distanceToCoast)

	return Summary{
		City:              loc.Name,
		State:             loc.State,
		Latitude:          loc.Latitude,
		Longitude:         loc.Longitude,
		DistanceToCoastKM: distanceToCoast,
		NodesCreated: map[string]int{
			"temperature_nodes": tempCount,
			"humidity_nodes":    humidityCount,
		},
		EdgesCreated: map[string]int64{
			"concurrent_temp_humidity": concurrentCount,
		},
	}, nil
}
