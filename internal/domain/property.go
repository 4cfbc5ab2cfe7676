package domain

import "time"

// Property is a canonical listing record owned by the external property store.
// Read-only to this service.
type Property struct {
	ID           string
	Title        string
	Price        float64
	Bedrooms     int
	Bathrooms    int
	PropertyType string // house, condo, apartment, villa, plot
	City         string
	Latitude     float64
	Longitude    float64
	YearBuilt    int
	AreaSqft     float64
	Amenities    []string

	// Domain scores computed by the analysis pipeline.
	VastuScore       float64 // 0-100, higher is better
	ClimateRiskScore float64 // 0-100, higher is worse

	// Engagement counters.
	Views     int64
	Favorites int64

	UpdatedAt        time.Time
	VastuAnalyzedAt  time.Time
	ReportExpiresAt  time.Time
	EngagementSyncAt time.Time
}
