package geo

import (
	"errors"
	"math"
)

// earthRadiusKm is the Earth's mean radius used by the haversine formula.
const earthRadiusKm = 6371

// ErrNoReferencePoints is returned when a nearest-point lookup is attempted
// against an empty reference set.
var ErrNoReferencePoints = errors.New("reference point set is empty")

// Point is a coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle distance in kilometers between two
// coordinate pairs, computed with the haversine formula on a spherical
// Earth model. Inputs are decimal degrees; callers are responsible for
// passing coordinates within ±90/±180.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := radians(lat1)
	rlat2 := radians(lat2)
	dlat := radians(lat2 - lat1)
	dlon := radians(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceToNearest returns the minimum great-circle distance in kilometers
// from the given coordinates to any point in refs, rounded to one decimal
// place. Returns ErrNoReferencePoints if refs is empty.
func DistanceToNearest(lat, lon float64, refs []Point) (float64, error) {
	if len(refs) == 0 {
		return 0, ErrNoReferencePoints
	}

	min := math.Inf(1)
	for _, ref := range refs {
		d := Distance(lat, lon, ref.Lat, ref.Lon)
		if d < min {
			min = d
		}
	}

	return Round1(min), nil
}

// DistanceToCoast returns the approximate distance in kilometers from the
// given coordinates to the nearest US coastline, using the fixed coastal
// reference set. The result is a cached approximation, not survey data.
func DistanceToCoast(lat, lon float64) float64 {
	// CoastalReferences is never empty, so the error path is unreachable.
	d, _ := DistanceToNearest(lat, lon, CoastalReferences)
	return d
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
