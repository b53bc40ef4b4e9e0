package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeTemperatureBoundaries(t *testing.T) {
	cases := []struct {
		tempF float64
		want  string
	}{
		{-10, "freezing"},
		{31.9, "freezing"},
		{32, "cold"},
		{49.9, "cold"},
		{50, "mild"},
		{69.9, "mild"},
		{70, "warm"},
		{84.9, "warm"},
		{85, "hot"},
		{120, "hot"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CategorizeTemperature(tc.tempF), "temp %v", tc.tempF)
	}
}

func TestCategorizeHumidityBoundaries(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{0, "dry"},
		{29.9, "dry"},
		{30, "comfortable"},
		{49.9, "comfortable"},
		{50, "humid"},
		{69.9, "humid"},
		{70, "very_humid"},
		{100, "very_humid"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CategorizeHumidity(tc.pct), "humidity %v", tc.pct)
	}
}

func TestTimeOfDay(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{0, "night"},
		{4, "night"},
		{5, "morning"},
		{11, "morning"},
		{12, "midday"},
		{16, "midday"},
		{17, "evening"},
		{20, "evening"},
		{21, "night"},
		{23, "night"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TimeOfDay(tc.hour), "hour %d", tc.hour)
	}
}

func TestLocationKey(t *testing.T) {
	loc := Location{Name: "Huntsville", State: "AL"}
	assert.Equal(t, "Huntsville:AL", loc.Key())
}
