package sdk

import (
	"time"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
)

// Property is a listing to index.
type Property struct {
	ID           string
	Title        string
	Price        float64
	Bedrooms     int
	Bathrooms    int
	PropertyType string
	City         string
	Latitude     float64
	Longitude    float64
	YearBuilt    int
	AreaSqft     float64
	Amenities    []string
	VastuScore   float64
	ClimateRisk  float64
	Views        int64
	Favorites    int64
	UpdatedAt    time.Time
}

// Location scopes a query to a city or a point with a radius. The zero value
// means no location scope.
type Location struct {
	city         string
	lat, lon     float64
	radiusMeters float64
	coordinates  bool
}

// City scopes a query to an exact city string.
func City(name string) Location {
	return Location{city: name}
}

// Near scopes a query to a radius around a point. A zero radius selects the
// client's default.
func Near(lat, lon, radiusMeters float64) Location {
	return Location{lat: lat, lon: lon, radiusMeters: radiusMeters, coordinates: true}
}

// Filters narrow a query. Nil pointers leave the criterion unconstrained.
type Filters struct {
	PriceMin       *float64
	PriceMax       *float64
	BedroomsMin    *int
	BathroomsMin   *int
	PropertyTypes  []string
	VastuScoreMin  *float64
	ClimateRiskMax *float64
	YearBuiltMin   *int
	Amenities      []string
}

// Query is a search request. Zero Page and Limit select the first page with
// the client's default size.
type Query struct {
	Location      *Location
	Filters       Filters
	SortBy        string // "price", "vastu_score", "climate_risk", "distance"
	SortDirection string // "asc" or "desc"
	Page          int
	Limit         int
}

// ClusterQuery is a map-clustering request. Zero Zoom selects the default
// zoom level.
type ClusterQuery struct {
	Location *Location
	Filters  Filters
	Zoom     int
}

// Result types mirror the HTTP API response shapes.
type (
	Page        = result.Page
	PropertyHit = result.PropertyHit
	Facets      = result.Facets
	Similar     = result.Similar
	Clusters    = result.Clusters
	Cluster     = result.Cluster
)

// BatchResult is the outcome of one property in a bulk index operation.
type BatchResult struct {
	ID  string
	OK  bool
	Err error
}

// HealthStatus is the aggregated component health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component name to "ok" or an error message
}
