package graph

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/austindatascientist/weather-graph/internal/geo"
	"github.com/austindatascientist/weather-graph/internal/weather"
)

// DefaultSeedDays is how many days of synthetic readings the sample
// topology carries.
const DefaultSeedDays = 7

// sampleLocations is a mix of inland and coastal Southeast US cities used
// for the sample topology. Distance to coast is computed, not listed.
var sampleLocations = []weather.Location{
	// Inland cities
	{Name: "Huntsville", State: "AL", Latitude: 34.729847, Longitude: -86.5859011},
	{Name: "Nashville", State: "TN", Latitude: 36.1622767, Longitude: -86.7742984},
	{Name: "Birmingham", State: "AL", Latitude: 33.5206824, Longitude: -86.8024326},
	{Name: "Atlanta", State: "GA", Latitude: 33.7544657, Longitude: -84.3898151},
	{Name: "Chattanooga", State: "TN", Latitude: 35.0457219, Longitude: -85.3094883},
	{Name: "Memphis", State: "TN", Latitude: 35.1460249, Longitude: -90.0517638},
	// Coastal cities
	{Name: "Mobile", State: "AL", Latitude: 30.6913462, Longitude: -88.0437509},
	{Name: "Savannah", State: "GA", Latitude: 32.0790074, Longitude: -81.0921335},
	{Name: "Charleston", State: "SC", Latitude: 32.7884363, Longitude: -79.9399309},
}

// SeedSampleTopology populates the graph with the fixed sample cities,
// NEAR edges for every pair within the threshold, days of synthetic daily
// high/low readings keyed off latitude (informational sample data, not real
// forecasts), and NEXT_DAY links between consecutive days. Every mutation
// uses match-or-create, so re-seeding is a no-op on identity.
func (b *Builder) SeedSampleTopology(ctx context.Context, days int) error {
	if days <= 0 {
		days = DefaultSeedDays
	}

	return b.store.Atomic(ctx, func(tx Mutator) error {
		log.Info("seeding sample topology", "locations", len(sampleLocations), "days", days)

		for _, loc := range sampleLocations {
			distanceToCoast := geo.DistanceToCoast(loc.Latitude, loc.Longitude)
			err := tx.UpsertNode(ctx, "Location",
				map[string]any{"name": loc.Name, "state": loc.State},
				map[string]any{
					"latitude":             loc.Latitude,
					"longitude":            loc.Longitude,
					"distance_to_coast_km": distanceToCoast,
				})
			if err != nil {
				return err
			}
			log.Debug("seeded location", "city", loc.Name, "distance_to_coast_km", distanceToCoast)
		}

		// NEAR edges, checked once per unordered pair, written both ways.
		nearCount := 0
		for i, a := range sampleLocations {
			for _, c := range sampleLocations[i+1:] {
				distance := geo.Distance(a.Latitude, a.Longitude, c.Latitude, c.Longitude)
				if distance > b.nearThresholdKM {
					continue
				}
				err := tx.MatchAndLink(ctx, Link{
					FromLabel: "Location",
					FromKey:   map[string]any{"name": a.Name, "state": a.State},
					ToLabel:   "Location",
					ToKey:     map[string]any{"name": c.Name, "state": c.State},
					EdgeLabel: "NEAR",
					EdgeProps: map[string]any{"distance_km": geo.Round1(distance)},
					Symmetric: true,
					Merge:     true,
				})
				if err != nil {
					return err
				}
				nearCount++
			}
		}
		log.Info("seeded NEAR relationships", "pairs", nearCount)

		// Synthetic daily readings: cooler with increasing latitude, with a
		// small three-day cycle for variety.
		baseDate := time.Now().UTC().Truncate(24 * time.Hour)
		readingCount := 0
		for _, loc := range sampleLocations {
			baseHigh := 75 - (loc.Latitude-33)*2
			baseLow := baseHigh - 15

			for offset := 0; offset < days; offset++ {
				date := baseDate.AddDate(0, 0, offset).Format("2006-01-02")
				high := geo.Round1(baseHigh + float64(offset%3)*2)
				low := geo.Round1(baseLow + float64(offset%3))

				err := tx.MergeNode(ctx, "WeatherReading",
					map[string]any{"location": loc.Name, "date": date},
					map[string]any{"high_temp_f": high, "low_temp_f": low})
				if err != nil {
					return err
				}

				err = tx.MatchAndLink(ctx, Link{
					FromLabel: "Location",
					FromKey:   map[string]any{"name": loc.Name, "state": loc.State},
					ToLabel:   "WeatherReading",
					ToKey:     map[string]any{"location": loc.Name, "date": date},
					EdgeLabel: "HAS_WEATHER",
					Merge:     true,
				})
				if err != nil {
					return err
				}
				readingCount++
			}
		}
		log.Info("seeded weather readings", "count", readingCount)

		// NEXT_DAY chain per location.
		for _, loc := range sampleLocations {
			for offset := 0; offset < days-1; offset++ {
				d1 := baseDate.AddDate(0, 0, offset).Format("2006-01-02")
				d2 := baseDate.AddDate(0, 0, offset+1).Format("2006-01-02")

				err := tx.MatchAndLink(ctx, Link{
					FromLabel: "WeatherReading",
					FromKey:   map[string]any{"location": loc.Name, "date": d1},
					ToLabel:   "WeatherReading",
					ToKey:     map[string]any{"location": loc.Name, "date": d2},
					EdgeLabel: "NEXT_DAY",
					Merge:     true,
				})
				if err != nil {
					return err
				}
			}
		}

		return nil
	})
}
