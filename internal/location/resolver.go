package location

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the geocoding service has no match for
	// the requested place name. This is permanent; retrying will not help.
	ErrNotFound = errors.New("location not found")

	// ErrUnavailable is returned when the geocoding service times out or
	// fails. Callers may retry.
	ErrUnavailable = errors.New("geocoding service unavailable")

	// ErrOutOfRange is returned for coordinates outside the valid
	// latitude/longitude ranges.
	ErrOutOfRange = errors.New("coordinates out of range")
)

// Info is the structured result of resolving a free-text place name.
// City and State are best-effort extractions from the service's display
// address; State may be empty when no two-letter code or state name was
// recognized, in which case callers conventionally fall back to "US".
type Info struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
	City        string
	State       string
}

// Resolver converts a free-text place name into coordinates plus a
// normalized city/state.
type Resolver interface {
	Resolve(ctx context.Context, placeName string) (Info, error)
}

// ValidateCoordinates checks that latitude is within [-90, 90] and longitude
// within [-180, 180], returning ErrOutOfRange otherwise.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90, got %v", ErrOutOfRange, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180, got %v", ErrOutOfRange, lon)
	}
	return nil
}
