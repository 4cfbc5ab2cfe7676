package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Index document field names. Shared by the index schema, the writers and the
// search result parsers.
const (
	FieldTitle        = "title"
	FieldPrice        = "price"
	FieldBedrooms     = "bedrooms"
	FieldBathrooms    = "bathrooms"
	FieldPropertyType = "property_type"
	FieldCity         = "city"
	FieldLocation     = "location" // "lon,lat" geo point
	FieldYearBuilt    = "year_built"
	FieldAreaSqft     = "area_sqft"
	FieldAmenities    = "amenities" // comma-separated tags
	FieldVastuScore   = "vastu_score"
	FieldClimateRisk  = "climate_risk"
	FieldViews        = "views"
	FieldFavorites    = "favorites"
	FieldLastSyncedAt = "last_synced_at" // unix seconds
)

// IndexDocument is the denormalized projection of a Property stored in the
// search index. One document per property id.
type IndexDocument struct {
	ID     string
	Fields map[string]string
}

// NewIndexDocument projects a property into its index document.
// The projection is deterministic: the same property always yields an
// identical document, so re-indexing an unchanged property is idempotent.
// last_synced_at is derived from the property's own mutation timestamp,
// not wall-clock time.
func NewIndexDocument(p *Property) IndexDocument {
	return IndexDocument{
		ID: p.ID,
		Fields: map[string]string{
			FieldTitle:        p.Title,
			FieldPrice:        formatFloat(p.Price),
			FieldBedrooms:     strconv.Itoa(p.Bedrooms),
			FieldBathrooms:    strconv.Itoa(p.Bathrooms),
			FieldPropertyType: p.PropertyType,
			FieldCity:         p.City,
			FieldLocation:     FormatGeoPoint(p.Latitude, p.Longitude),
			FieldYearBuilt:    strconv.Itoa(p.YearBuilt),
			FieldAreaSqft:     formatFloat(p.AreaSqft),
			FieldAmenities:    strings.Join(p.Amenities, ","),
			FieldVastuScore:   formatFloat(p.VastuScore),
			FieldClimateRisk:  formatFloat(p.ClimateRiskScore),
			FieldViews:        strconv.FormatInt(p.Views, 10),
			FieldFavorites:    strconv.FormatInt(p.Favorites, 10),
			FieldLastSyncedAt: strconv.FormatInt(p.UpdatedAt.Unix(), 10),
		},
	}
}

// EngagementFields returns the partial-update field set for the engagement
// sync path. Only the counters change; the rest of the document is untouched.
func EngagementFields(p *Property) map[string]string {
	return map[string]string{
		FieldViews:     strconv.FormatInt(p.Views, 10),
		FieldFavorites: strconv.FormatInt(p.Favorites, 10),
	}
}

// FormatGeoPoint renders a lat/lon pair in the "lon,lat" geo field format.
func FormatGeoPoint(lat, lon float64) string {
	return fmt.Sprintf("%s,%s", formatFloat(lon), formatFloat(lat))
}

// ParseGeoPoint parses a "lon,lat" geo field value.
func ParseGeoPoint(s string) (lat, lon float64, err error) {
	lonStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("malformed geo point %q", s)
	}
	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed geo point %q: %w", s, err)
	}
	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed geo point %q: %w", s, err)
	}
	return lat, lon, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// LastSyncedAt extracts the sync watermark from an index document.
func (d IndexDocument) LastSyncedAt() time.Time {
	unix, err := strconv.ParseInt(d.Fields[FieldLastSyncedAt], 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}
