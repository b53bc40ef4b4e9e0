package weather

import (
	"time"
)

// Location represents a resolved place for which we build weather graphs.
// Name and State form the natural key; State is a two-letter code, with "US"
// used when geocoding could not determine one.
type Location struct {
	Name      string  `json:"name"`
	State     string  `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Key returns a canonical string key for indexing this location.
func (l Location) Key() string {
	return l.Name + ":" + l.State
}

// Sample is a single instant/value pair extracted from a provider's grid
// time series. The provider reports intervals; only the start instant is kept.
type Sample struct {
	Time  time.Time
	Value float64
}

// DailyForecast is one calendar day's high/low from the daily forecast
// endpoint, both in Fahrenheit. Date is truncated to midnight UTC.
type DailyForecast struct {
	Date time.Time `json:"date"`
	High float64   `json:"high_temp_f"`
	Low  float64   `json:"low_temp_f"`
}

// TimeOfDay buckets an hour of day into the coarse label stored on reading
// nodes.
func TimeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "midday"
	case hour >= 17 && hour < 21:
		return "evening"
	default:
		return "night"
	}
}
