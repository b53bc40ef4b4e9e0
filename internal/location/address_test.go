package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	cases := []struct {
		name      string
		display   string
		wantCity  string
		wantState string
	}{
		{
			name:      "full state name",
			display:   "Denver, Denver County, Colorado, United States",
			wantCity:  "Denver",
			wantState: "CO",
		},
		{
			name:      "two-letter code",
			display:   "Huntsville, AL, United States",
			wantCity:  "Huntsville",
			wantState: "AL",
		},
		{
			name:      "lowercase code still matches",
			display:   "Savannah, ga",
			wantCity:  "Savannah",
			wantState: "GA",
		},
		{
			name:      "no state resolvable",
			display:   "Paris, Île-de-France, France",
			wantCity:  "Paris",
			wantState: "",
		},
		{
			name:      "first match wins across segments",
			display:   "Kansas City, Jackson County, Missouri, United States",
			wantCity:  "Kansas City",
			wantState: "MO",
		},
		{
			name:      "district of columbia",
			display:   "Washington, District of Columbia, United States",
			wantCity:  "Washington",
			wantState: "DC",
		},
		{
			name:      "empty input",
			display:   "",
			wantCity:  "",
			wantState: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			city, state := ParseAddress(tc.display)
			assert.Equal(t, tc.wantCity, city)
			assert.Equal(t, tc.wantState, state)
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, ValidateCoordinates(39.7392, -104.9903))
	assert.NoError(t, ValidateCoordinates(-90, 180))

	assert.ErrorIs(t, ValidateCoordinates(91, 0), ErrOutOfRange)
	assert.ErrorIs(t, ValidateCoordinates(-91, 0), ErrOutOfRange)
	assert.ErrorIs(t, ValidateCoordinates(0, 181), ErrOutOfRange)
	assert.ErrorIs(t, ValidateCoordinates(0, -181), ErrOutOfRange)
}
