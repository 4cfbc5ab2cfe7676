package result

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
)

// GeoPoint is a latitude/longitude pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BasicInfo holds the headline listing attributes.
type BasicInfo struct {
	Price        float64 `json:"price"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    int     `json:"bathrooms"`
	PropertyType string  `json:"property_type"`
}

// Address holds the listing location.
type Address struct {
	City     string   `json:"city"`
	Location GeoPoint `json:"location"`
}

// Scores holds domain and personalized scores. OverallMatch is present only
// for callers with a resolvable preference profile.
type Scores struct {
	VastuScore   float64  `json:"vastu_score"`
	OverallMatch *float64 `json:"overall_match,omitempty"`
}

// ClimateRisk holds the climate risk assessment summary.
type ClimateRisk struct {
	OverallScore float64 `json:"overall_score"`
}

// PropertyHit is a single search result.
type PropertyHit struct {
	PropertyID     string      `json:"property_id"`
	Title          string      `json:"title,omitempty"`
	BasicInfo      BasicInfo   `json:"basic_info"`
	Address        Address     `json:"address"`
	Scores         Scores      `json:"scores"`
	ClimateRisk    ClimateRisk `json:"climate_risk"`
	DistanceMeters *float64    `json:"distance_meters,omitempty"`

	// Engagement counters, used by the personalization scorer;
	// not serialized.
	Views     int64 `json:"-"`
	Favorites int64 `json:"-"`
}

// Facets are bucketed counts over the filtered (pre-pagination) result set.
type Facets struct {
	PriceRanges      map[string]int `json:"price_ranges"`
	PropertyTypes    map[string]int `json:"property_types"`
	VastuScoreRanges map[string]int `json:"vastu_score_ranges"`
}

// Page is a search response page.
type Page struct {
	TotalResults int           `json:"total_results"`
	Page         int           `json:"page"`
	TotalPages   int           `json:"total_pages"`
	Properties   []PropertyHit `json:"properties"`
	Facets       Facets        `json:"facets"`
	Cached       bool          `json:"cached,omitempty"`
}

// TotalPages computes ceil(total/limit) for a 1-indexed pagination scheme.
func TotalPages(totalResults, limit int) int {
	if limit <= 0 || totalResults <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalResults) / float64(limit)))
}

// SimilarProperty is a similarity candidate with its justification.
type SimilarProperty struct {
	PropertyID      string   `json:"property_id"`
	SimilarityScore float64  `json:"similarity_score"`
	Reasons         []string `json:"reasons"`
}

// Similar is a similar-properties response.
type Similar struct {
	ReferenceProperty PropertyHit       `json:"reference_property"`
	SimilarProperties []SimilarProperty `json:"similar_properties"`
}

// PriceRange is a min/max price span.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Cluster is a geo-bucketed aggregate of matching properties.
type Cluster struct {
	Location   GeoPoint   `json:"location"`
	Count      int        `json:"count"`
	AvgPrice   float64    `json:"avg_price"`
	PriceRange PriceRange `json:"price_range"`
}

// Clusters is a map-clustering response.
type Clusters struct {
	Clusters []Cluster `json:"clusters"`
}

// HitFromFields reconstructs a PropertyHit from raw index document fields.
func HitFromFields(id string, fields map[string]string) (PropertyHit, error) {
	lat, lon, err := domain.ParseGeoPoint(fields[domain.FieldLocation])
	if err != nil {
		return PropertyHit{}, fmt.Errorf("document %s: %w", id, err)
	}

	hit := PropertyHit{
		PropertyID: id,
		Title:      fields[domain.FieldTitle],
		BasicInfo: BasicInfo{
			Price:        parseFloat(fields[domain.FieldPrice]),
			Bedrooms:     parseInt(fields[domain.FieldBedrooms]),
			Bathrooms:    parseInt(fields[domain.FieldBathrooms]),
			PropertyType: fields[domain.FieldPropertyType],
		},
		Address: Address{
			City:     fields[domain.FieldCity],
			Location: GeoPoint{Lat: lat, Lon: lon},
		},
		Scores: Scores{
			VastuScore: parseFloat(fields[domain.FieldVastuScore]),
		},
		ClimateRisk: ClimateRisk{
			OverallScore: parseFloat(fields[domain.FieldClimateRisk]),
		},
		Views:     int64(parseInt(fields[domain.FieldViews])),
		Favorites: int64(parseInt(fields[domain.FieldFavorites])),
	}
	return hit, nil
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseInt(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}
