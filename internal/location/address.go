package location

import "strings"

// stateAbbrevs maps full US state names to their two-letter codes.
var stateAbbrevs = map[string]string{
	"Alabama": "AL", "Alaska": "AK", "Arizona": "AZ", "Arkansas": "AR",
	"California": "CA", "Colorado": "CO", "Connecticut": "CT", "Delaware": "DE",
	"Florida": "FL", "Georgia": "GA", "Hawaii": "HI", "Idaho": "ID",
	"Illinois": "IL", "Indiana": "IN", "Iowa": "IA", "Kansas": "KS",
	"Kentucky": "KY", "Louisiana": "LA", "Maine": "ME", "Maryland": "MD",
	"Massachusetts": "MA", "Michigan": "MI", "Minnesota": "MN", "Mississippi": "MS",
	"Missouri": "MO", "Montana": "MT", "Nebraska": "NE", "Nevada": "NV",
	"New Hampshire": "NH", "New Jersey": "NJ", "New Mexico": "NM", "New York": "NY",
	"North Carolina": "NC", "North Dakota": "ND", "Ohio": "OH", "Oklahoma": "OK",
	"Oregon": "OR", "Pennsylvania": "PA", "Rhode Island": "RI", "South Carolina": "SC",
	"South Dakota": "SD", "Tennessee": "TN", "Texas": "TX", "Utah": "UT",
	"Vermont": "VT", "Virginia": "VA", "Washington": "WA", "West Virginia": "WV",
	"Wisconsin": "WI", "Wyoming": "WY", "District of Columbia": "DC",
}

// validStateCodes is the reverse set of stateAbbrevs, for recognizing
// two-letter codes directly.
var validStateCodes = func() map[string]bool {
	codes := make(map[string]bool, len(stateAbbrevs))
	for _, code := range stateAbbrevs {
		codes[code] = true
	}
	return codes
}()

// ParseAddress extracts a best-effort city and two-letter state from a
// geocoder's free-text display address (typically "City, County, State,
// Country"). The first comma-separated segment is taken as the city. The
// state is the first segment that matches either an exact two-letter code
// or a full state name, with code matches taking precedence within each
// segment. State is empty when nothing matches.
func ParseAddress(displayName string) (city, state string) {
	parts := strings.Split(displayName, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) > 0 {
		city = parts[0]
	}

	for _, part := range parts {
		if len(part) == 2 && validStateCodes[strings.ToUpper(part)] {
			state = strings.ToUpper(part)
			return city, state
		}
		if code, ok := stateAbbrevs[part]; ok {
			state = code
			return city, state
		}
	}

	return city, ""
}
