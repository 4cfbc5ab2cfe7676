package request

import (
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/geo"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
)

// Pagination and radius defaults. Limits above the maximum are rejected,
// not clamped; only omitted values receive defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Limits carries the configurable request bounds into validation.
type Limits struct {
	DefaultLimit        int
	MaxLimit            int
	DefaultRadiusMeters float64
}

// ApplyDefaults fills zero limits with package defaults.
func (l *Limits) ApplyDefaults() {
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = DefaultLimit
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = MaxLimit
	}
	if l.DefaultRadiusMeters <= 0 {
		l.DefaultRadiusMeters = 10_000
	}
}

// LocationKind discriminates city and coordinate searches.
type LocationKind string

const (
	// LocationCity matches the listing's city tag.
	LocationCity LocationKind = "city"
	// LocationCoordinates matches a geo radius around a point.
	LocationCoordinates LocationKind = "coordinates"
)

// Location is a validated search location.
type Location struct {
	kind         LocationKind
	city         string
	lat, lon     float64
	radiusMeters float64
}

// NewCityLocation creates a city-scoped location.
func NewCityLocation(city string) (Location, error) {
	if city == "" {
		return Location{}, domain.NewValidationError("location.value", "city must not be empty")
	}
	return Location{kind: LocationCity, city: city}, nil
}

// NewCoordinatesLocation creates a geo-radius location. A non-positive
// radius selects the configured default.
func NewCoordinatesLocation(lat, lon, radiusMeters, defaultRadiusMeters float64) (Location, error) {
	if !geo.ValidateCoordinates(lat, lon) {
		return Location{}, domain.NewValidationError("location.value", "coordinates out of range")
	}
	if radiusMeters < 0 {
		return Location{}, domain.NewValidationError("location.radius", "must be non-negative")
	}
	if radiusMeters == 0 {
		radiusMeters = defaultRadiusMeters
	}
	return Location{kind: LocationCoordinates, lat: lat, lon: lon, radiusMeters: radiusMeters}, nil
}

// Kind returns the location discriminator.
func (l Location) Kind() LocationKind { return l.kind }

// City returns the city value for city locations.
func (l Location) City() string { return l.city }

// Coordinates returns the lat/lon for coordinate locations.
func (l Location) Coordinates() (lat, lon float64) { return l.lat, l.lon }

// RadiusMeters returns the search radius for coordinate locations.
func (l Location) RadiusMeters() float64 { return l.radiusMeters }

// SortField enumerates sortable result orderings.
type SortField string

const (
	// SortPrice orders by listing price.
	SortPrice SortField = "price"
	// SortVastuScore orders by vastu score.
	SortVastuScore SortField = "vastu_score"
	// SortClimateRisk orders by climate risk score.
	SortClimateRisk SortField = "climate_risk"
	// SortDistance orders by distance from the query point, always ascending.
	SortDistance SortField = "distance"
)

// Sort is a validated result ordering.
type Sort struct {
	field      SortField
	descending bool
}

// NewSort validates a sort specification. Empty field defaults to price
// ascending. Distance sort is ascending only.
func NewSort(field, direction string) (Sort, error) {
	f := SortField(field)
	if field == "" {
		f = SortPrice
	}
	switch f {
	case SortPrice, SortVastuScore, SortClimateRisk, SortDistance:
	default:
		return Sort{}, domain.NewValidationError("sort.field", "unknown sort field "+field)
	}

	var desc bool
	switch direction {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return Sort{}, domain.NewValidationError("sort.direction", "must be \"asc\" or \"desc\"")
	}

	if f == SortDistance && desc {
		return Sort{}, domain.NewValidationError("sort.direction", "distance sort is ascending only")
	}
	return Sort{field: f, descending: desc}, nil
}

// Field returns the sort field.
func (s Sort) Field() SortField { return s.field }

// Descending reports whether the order is reversed.
func (s Sort) Descending() bool { return s.descending }

// Filters are the optional structured predicates of a search. Nil pointers
// and empty slices mean "no constraint".
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

// Validate checks every supplied predicate for range errors.
func (f Filters) Validate() error {
	if f.PriceMin != nil && *f.PriceMin < 0 {
		return domain.NewValidationError("filters.price_range.min", "must be non-negative")
	}
	if f.PriceMax != nil && *f.PriceMax < 0 {
		return domain.NewValidationError("filters.price_range.max", "must be non-negative")
	}
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		return domain.NewValidationError("filters.price_range", "min exceeds max")
	}
	if f.BedroomsMin != nil && (*f.BedroomsMin < 0 || *f.BedroomsMin > 50) {
		return domain.NewValidationError("filters.bedrooms_min", "must be between 0 and 50")
	}
	if f.BathroomsMin != nil && (*f.BathroomsMin < 0 || *f.BathroomsMin > 50) {
		return domain.NewValidationError("filters.bathrooms_min", "must be between 0 and 50")
	}
	for _, pt := range f.PropertyTypes {
		if pt == "" {
			return domain.NewValidationError("filters.property_type", "must not contain empty values")
		}
	}
	if f.VastuScoreMin != nil && (*f.VastuScoreMin < 0 || *f.VastuScoreMin > 100) {
		return domain.NewValidationError("filters.vastu_score_min", "must be between 0 and 100")
	}
	if f.ClimateRiskMax != nil && (*f.ClimateRiskMax < 0 || *f.ClimateRiskMax > 100) {
		return domain.NewValidationError("filters.climate_risk_max", "must be between 0 and 100")
	}
	if f.YearBuiltMin != nil && (*f.YearBuiltMin < 1500 || *f.YearBuiltMin > 2200) {
		return domain.NewValidationError("filters.year_built_min", "implausible year")
	}
	for _, a := range f.Amenities {
		if a == "" {
			return domain.NewValidationError("filters.amenities", "must not contain empty values")
		}
	}
	return nil
}

// Expression translates the validated filters into an index filter
// expression. Call Validate first.
func (f Filters) Expression() (filter.Expression, error) {
	expr, err := filter.NewExpression()
	if err != nil {
		return filter.Expression{}, err
	}

	if f.PriceMin != nil || f.PriceMax != nil {
		r, err := filter.NewRangeBounds(f.PriceMin, f.PriceMax)
		if err != nil {
			return filter.Expression{}, err
		}
		c, err := filter.NewRange(domain.FieldPrice, r)
		if err != nil {
			return filter.Expression{}, err
		}
		expr = expr.With(c)
	}
	if f.BedroomsMin != nil {
		min := float64(*f.BedroomsMin)
		expr, err = withRange(expr, domain.FieldBedrooms, &min, nil)
		if err != nil {
			return filter.Expression{}, err
		}
	}
	if f.BathroomsMin != nil {
		min := float64(*f.BathroomsMin)
		expr, err = withRange(expr, domain.FieldBathrooms, &min, nil)
		if err != nil {
			return filter.Expression{}, err
		}
	}
	if len(f.PropertyTypes) > 0 {
		c, err := filter.NewAnyOf(domain.FieldPropertyType, f.PropertyTypes)
		if err != nil {
			return filter.Expression{}, err
		}
		expr = expr.With(c)
	}
	if f.VastuScoreMin != nil {
		expr, err = withRange(expr, domain.FieldVastuScore, f.VastuScoreMin, nil)
		if err != nil {
			return filter.Expression{}, err
		}
	}
	if f.ClimateRiskMax != nil {
		expr, err = withRange(expr, domain.FieldClimateRisk, nil, f.ClimateRiskMax)
		if err != nil {
			return filter.Expression{}, err
		}
	}
	if f.YearBuiltMin != nil {
		min := float64(*f.YearBuiltMin)
		expr, err = withRange(expr, domain.FieldYearBuilt, &min, nil)
		if err != nil {
			return filter.Expression{}, err
		}
	}
	for _, a := range f.Amenities {
		c, err := filter.NewMatch(domain.FieldAmenities, a)
		if err != nil {
			return filter.Expression{}, err
		}
		expr = expr.With(c)
	}
	return expr, nil
}

func withRange(expr filter.Expression, key string, min, max *float64) (filter.Expression, error) {
	r, err := filter.NewRangeBounds(min, max)
	if err != nil {
		return filter.Expression{}, err
	}
	c, err := filter.NewRange(key, r)
	if err != nil {
		return filter.Expression{}, err
	}
	return expr.With(c), nil
}

// Request is a validated search query.
type Request struct {
	location *Location
	filters  Filters
	sort     Sort
	page     int
	limit    int
}

// New validates and normalizes a search request. page and limit of 0 select
// defaults; out-of-range values are rejected, never clamped.
func New(location *Location, filters Filters, sort Sort, page, limit int, limits Limits) (Request, error) {
	limits.ApplyDefaults()

	if err := filters.Validate(); err != nil {
		return Request{}, err
	}
	if sort.Field() == SortDistance && (location == nil || location.Kind() != LocationCoordinates) {
		return Request{}, domain.NewValidationError("sort.field", "distance sort requires a coordinates location")
	}
	if page == 0 {
		page = DefaultPage
	}
	if page < 1 {
		return Request{}, domain.NewValidationError("pagination.page", "pages are 1-indexed")
	}
	if limit == 0 {
		limit = limits.DefaultLimit
	}
	if limit < 1 || limit > limits.MaxLimit {
		return Request{}, domain.NewValidationError("pagination.limit", "out of range")
	}

	return Request{location: location, filters: filters, sort: sort, page: page, limit: limit}, nil
}

// Location returns the search location, or nil for an unscoped search.
func (r *Request) Location() *Location { return r.location }

// Filters returns the structured predicates.
func (r *Request) Filters() Filters { return r.filters }

// Sort returns the result ordering.
func (r *Request) Sort() Sort { return r.sort }

// Page returns the 1-indexed page number.
func (r *Request) Page() int { return r.page }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Offset returns the 0-indexed result offset.
func (r *Request) Offset() int { return (r.page - 1) * r.limit }
