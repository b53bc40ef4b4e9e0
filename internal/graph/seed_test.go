package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austindatascientist/weather-graph/internal/geo"
)

func seedLinks(store *fakeMutator, edgeLabel string) []Link {
	var out []Link
	for _, l := range store.links {
		if l.EdgeLabel == edgeLabel {
			out = append(out, l)
		}
	}
	return out
}

func TestSeedSampleTopology(t *testing.T) {
	store := newFakeMutator()
	b := NewBuilder(fakeResolver{}, fakeGrid{}, store, 0)

	require.NoError(t, b.SeedSampleTopology(context.Background(), 7))

	assert.Equal(t, len(sampleLocations), store.countLabel("Location"))
	assert.Equal(t, len(sampleLocations)*7, store.countLabel("WeatherReading"))

	// One HAS_WEATHER edge per reading, one NEXT_DAY per consecutive pair.
	assert.Len(t, seedLinks(store, "HAS_WEATHER"), len(sampleLocations)*7)
	assert.Len(t, seedLinks(store, "NEXT_DAY"), len(sampleLocations)*6)

	assert.Equal(t, 1, store.atomicCalls)
}

func TestSeedSampleTopologyNearEdges(t *testing.T) {
	store := newFakeMutator()
	b := NewBuilder(fakeResolver{}, fakeGrid{}, store, 0)

	require.NoError(t, b.SeedSampleTopology(context.Background(), 1))

	near := seedLinks(store, "NEAR")
	require.NotEmpty(t, near)

	pairs := make(map[string]Link)
	for _, l := range near {
		pairs[l.FromKey["name"].(string)+"-"+l.ToKey["name"].(string)] = l
		assert.True(t, l.Symmetric, "NEAR is written in both directions")
		assert.True(t, l.Merge, "re-seeding must not duplicate NEAR edges")
	}

	// Huntsville and Birmingham are well inside the default threshold;
	// Memphis and Charleston are far outside it.
	hb, ok := pairs["Huntsville-Birmingham"]
	require.True(t, ok)
	assert.InDelta(t, 135.9, hb.EdgeProps["distance_km"], 5)
	_, ok = pairs["Memphis-Charleston"]
	assert.False(t, ok)
	_, ok = pairs["Charleston-Memphis"]
	assert.False(t, ok)

	// Every NEAR edge respects the threshold.
	for _, l := range near {
		d, hasIt := l.EdgeProps["distance_km"].(float64)
		require.True(t, hasIt)
		assert.LessOrEqual(t, d, float64(DefaultNearThresholdKM))
	}
}

func TestSeedSampleTopologyDefaultsDays(t *testing.T) {
	store := newFakeMutator()
	b := NewBuilder(fakeResolver{}, fakeGrid{}, store, 0)

	require.NoError(t, b.SeedSampleTopology(context.Background(), 0))
	assert.Equal(t, len(sampleLocations)*DefaultSeedDays, store.countLabel("WeatherReading"))
}

func TestSeedSyntheticReadingsTrackLatitude(t *testing.T) {
	store := newFakeMutator()
	b := NewBuilder(fakeResolver{}, fakeGrid{}, store, 0)

	require.NoError(t, b.SeedSampleTopology(context.Background(), 1))

	highFor := func(city string) float64 {
		for _, op := range store.merged {
			if op.label == "WeatherReading" && op.key["location"] == city {
				return op.props["high_temp_f"].(float64)
			}
		}
		t.Fatalf("no reading seeded for %s", city)
		return 0
	}

	// Mobile sits south of Nashville, so its synthetic highs run warmer.
	assert.Greater(t, highFor("Mobile"), highFor("Nashville"))
}

func TestSeedDistanceToCoastOnLocations(t *testing.T) {
	store := newFakeMutator()
	b := NewBuilder(fakeResolver{}, fakeGrid{}, store, 0)

	require.NoError(t, b.SeedSampleTopology(context.Background(), 1))

	coastKM := func(city string) float64 {
		for _, op := range store.merged {
			if op.label == "Location" && op.key["name"] == city {
				return op.props["distance_to_coast_km"].(float64)
			}
		}
		t.Fatalf("no location seeded for %s", city)
		return 0
	}

	assert.Less(t, coastKM("Mobile"), 20.0)
	assert.Greater(t, coastKM("Nashville"), 300.0)

	// Sanity against the geo package directly.
	assert.Equal(t, geo.DistanceToCoast(30.6913462, -88.0437509), coastKM("Mobile"))
}
