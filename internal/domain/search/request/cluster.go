package request

import (
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/geo"
)

// DefaultClusterZoom is used when the caller omits a zoom level.
const DefaultClusterZoom = 10

// Cluster is a validated map-clustering request: the same filter shape as a
// search, without pagination, plus a map zoom level.
type Cluster struct {
	location *Location
	filters  Filters
	zoom     int
}

// NewCluster validates a clustering request. A zoom of 0 selects the default.
func NewCluster(location *Location, filters Filters, zoom int) (Cluster, error) {
	if err := filters.Validate(); err != nil {
		return Cluster{}, err
	}
	if zoom == 0 {
		zoom = DefaultClusterZoom
	}
	if zoom < geo.MinZoom || zoom > geo.MaxZoom {
		return Cluster{}, domain.NewValidationError("zoom", "out of range")
	}
	return Cluster{location: location, filters: filters, zoom: zoom}, nil
}

// Location returns the cluster scope location, or nil.
func (c Cluster) Location() *Location { return c.location }

// Filters returns the structured predicates.
func (c Cluster) Filters() Filters { return c.filters }

// Zoom returns the map zoom level.
func (c Cluster) Zoom() int { return c.zoom }
