package db

import "github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"

// GeoFilter restricts results to a radius around a point.
type GeoFilter struct {
	Lat          float64
	Lon          float64
	RadiusMeters float64
}

// SearchQuery is the input for a filtered, sorted, paginated search.
type SearchQuery struct {
	IndexName string
	Filters   filter.Expression
	Geo       *GeoFilter

	// SortBy names a sortable field; empty means store default order.
	SortBy   string
	SortDesc bool
	// SortByDistance orders by distance from the Geo point, ascending.
	// Requires Geo. Mutually exclusive with SortBy.
	SortByDistance bool

	Offset int
	Limit  int

	// ReturnFields limits the fields fetched per hit; empty fetches all.
	ReturnFields []string
}

// CountQuery counts documents matching a filter without fetching them.
type CountQuery struct {
	IndexName string
	Filters   filter.Expression
	Geo       *GeoFilter
}

// GroupCountQuery counts documents per distinct value of a tag field,
// within the filtered universe.
type GroupCountQuery struct {
	IndexName string
	Filters   filter.Expression
	Geo       *GeoFilter
	GroupBy   string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit.
type SearchEntry struct {
	Key    string
	Fields map[string]string

	// DistanceMeters is set when the query sorted or filtered by distance.
	DistanceMeters float64
	HasDistance    bool
}
