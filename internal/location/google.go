package location

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"
)

// GoogleProvider resolves place names through the Google Geocoding API via
// the kelvins/geocoder library. It is used as an alternative to Nominatim
// when a Google API key is configured. The library does not accept a
// context, so cancellation is only honored between the forward and reverse
// lookups.
type GoogleProvider struct{}

// NewGoogleProvider configures the geocoder library with the given API key.
// The library keeps the key in package state.
func NewGoogleProvider(apiKey string) *GoogleProvider {
	geocoder.ApiKey = apiKey
	return &GoogleProvider{}
}

// Resolve geocodes placeName and reverse-geocodes the result to recover a
// structured city and state.
func (p *GoogleProvider) Resolve(ctx context.Context, placeName string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}

	addr := geocoder.Address{City: placeName}
	loc, err := geocoder.Geocoding(addr)
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return Info{}, fmt.Errorf("%w: %s", ErrNotFound, placeName)
		}
		return Info{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	info := Info{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		City:      placeName,
	}

	if err := ctx.Err(); err != nil {
		return Info{}, err
	}

	// Reverse geocode for a structured address; failure here is not fatal,
	// the coordinates are already resolved.
	addresses, err := geocoder.GeocodingReverse(loc)
	if err != nil || len(addresses) == 0 {
		return info, nil
	}

	best := addresses[0]
	info.DisplayName = best.FormatAddress()
	if best.City != "" {
		info.City = best.City
	}
	if code, ok := stateAbbrevs[best.State]; ok {
		info.State = code
	} else if len(best.State) == 2 && validStateCodes[strings.ToUpper(best.State)] {
		info.State = strings.ToUpper(best.State)
	}

	return info, nil
}
