package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// Zoom bounds for map clustering. Outside this range the grid degenerates
// into one global cell or per-property cells.
const (
	MinZoom = 1
	MaxZoom = 20
)

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// CellSizeDegrees returns the side length in degrees of a clustering grid
// cell at the given map zoom level. Each zoom increment halves the cell.
func CellSizeDegrees(zoom int) float64 {
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	return 360 / math.Exp2(float64(zoom))
}

// CellKey buckets a coordinate into its grid cell at the given zoom level.
// Every coordinate maps to exactly one cell.
func CellKey(lat, lon float64, zoom int) string {
	size := CellSizeDegrees(zoom)
	row := int(math.Floor(lat / size))
	col := int(math.Floor(lon / size))
	return fmt.Sprintf("%d:%d", row, col)
}
