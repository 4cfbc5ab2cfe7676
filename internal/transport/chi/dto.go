package chi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
)

// decodeStrict decodes a JSON body, rejecting unknown fields.
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

type geoPointDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// locationDTO is the polymorphic location of search and cluster requests:
// value is a city string or a lat/lon object depending on type.
type locationDTO struct {
	Type         string          `json:"type"`
	Value        json.RawMessage `json:"value"`
	RadiusMeters float64         `json:"radius_meters,omitempty"`
}

func (d *locationDTO) toDomain(limits request.Limits) (*request.Location, error) {
	if d == nil {
		return nil, nil
	}
	switch request.LocationKind(d.Type) {
	case request.LocationCity:
		var city string
		if err := json.Unmarshal(d.Value, &city); err != nil {
			return nil, domain.NewValidationError("location.value", "must be a city name string")
		}
		loc, err := request.NewCityLocation(city)
		if err != nil {
			return nil, err
		}
		return &loc, nil
	case request.LocationCoordinates:
		var pt geoPointDTO
		dec := json.NewDecoder(bytes.NewReader(d.Value))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&pt); err != nil {
			return nil, domain.NewValidationError("location.value", "must be a lat/lon object")
		}
		loc, err := request.NewCoordinatesLocation(pt.Lat, pt.Lon, d.RadiusMeters, limits.DefaultRadiusMeters)
		if err != nil {
			return nil, err
		}
		return &loc, nil
	default:
		return nil, domain.NewValidationError("location.type", `must be "city" or "coordinates"`)
	}
}

type rangeDTO struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

type filtersDTO struct {
	PriceRange     *rangeDTO `json:"price_range,omitempty"`
	BedroomsMin    *int      `json:"bedrooms_min,omitempty"`
	BathroomsMin   *int      `json:"bathrooms_min,omitempty"`
	PropertyType   []string  `json:"property_type,omitempty"`
	VastuScoreMin  *float64  `json:"vastu_score_min,omitempty"`
	ClimateRiskMax *float64  `json:"climate_risk_max,omitempty"`
	YearBuiltMin   *int      `json:"year_built_min,omitempty"`
	Amenities      []string  `json:"amenities,omitempty"`
}

func (d filtersDTO) toDomain() request.Filters {
	f := request.Filters{
		BedroomsMin:    d.BedroomsMin,
		BathroomsMin:   d.BathroomsMin,
		PropertyTypes:  d.PropertyType,
		VastuScoreMin:  d.VastuScoreMin,
		ClimateRiskMax: d.ClimateRiskMax,
		YearBuiltMin:   d.YearBuiltMin,
		Amenities:      d.Amenities,
	}
	if d.PriceRange != nil {
		f.PriceMin = d.PriceRange.Min
		f.PriceMax = d.PriceRange.Max
	}
	return f
}

type sortDTO struct {
	Field     string `json:"field,omitempty"`
	Direction string `json:"direction,omitempty"`
}

type paginationDTO struct {
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

type searchRequestDTO struct {
	Location   *locationDTO  `json:"location,omitempty"`
	Filters    filtersDTO    `json:"filters,omitempty"`
	Sort       sortDTO       `json:"sort,omitempty"`
	Pagination paginationDTO `json:"pagination,omitempty"`
}

func (d searchRequestDTO) toDomain(limits request.Limits) (request.Request, error) {
	loc, err := d.Location.toDomain(limits)
	if err != nil {
		return request.Request{}, err
	}
	sort, err := request.NewSort(d.Sort.Field, d.Sort.Direction)
	if err != nil {
		return request.Request{}, err
	}
	return request.New(loc, d.Filters.toDomain(), sort, d.Pagination.Page, d.Pagination.Limit, limits)
}

type similarRequestDTO struct {
	PropertyID string `json:"property_id"`
	Count      int    `json:"count,omitempty"`
}

func (d similarRequestDTO) toDomain() (request.Similar, error) {
	return request.NewSimilar(d.PropertyID, d.Count)
}

type clusterRequestDTO struct {
	Location *locationDTO `json:"location,omitempty"`
	Filters  filtersDTO   `json:"filters,omitempty"`
	Zoom     int          `json:"zoom,omitempty"`
}

func (d clusterRequestDTO) toDomain(limits request.Limits) (request.Cluster, error) {
	loc, err := d.Location.toDomain(limits)
	if err != nil {
		return request.Cluster{}, err
	}
	return request.NewCluster(loc, d.Filters.toDomain(), d.Zoom)
}
