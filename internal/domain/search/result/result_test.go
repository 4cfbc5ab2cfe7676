package result

import (
	"testing"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{4, 2, 2},
		{5, 2, 3},
		{1, 20, 1},
		{0, 20, 0},
		{20, 20, 1},
		{21, 20, 2},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestHitFromFields(t *testing.T) {
	fields := map[string]string{
		domain.FieldTitle:        "Lakeside villa",
		domain.FieldPrice:        "1200000",
		domain.FieldBedrooms:     "4",
		domain.FieldBathrooms:    "3",
		domain.FieldPropertyType: "villa",
		domain.FieldCity:         "Pune",
		domain.FieldLocation:     "73.8567,18.5204",
		domain.FieldVastuScore:   "88",
		domain.FieldClimateRisk:  "22.5",
		domain.FieldViews:        "340",
		domain.FieldFavorites:    "28",
	}

	hit, err := HitFromFields("prop-9", fields)
	if err != nil {
		t.Fatalf("HitFromFields: %v", err)
	}
	if hit.PropertyID != "prop-9" {
		t.Errorf("PropertyID = %q", hit.PropertyID)
	}
	if hit.BasicInfo.Price != 1_200_000 || hit.BasicInfo.Bedrooms != 4 {
		t.Errorf("BasicInfo = %+v", hit.BasicInfo)
	}
	if hit.Address.Location.Lat != 18.5204 || hit.Address.Location.Lon != 73.8567 {
		t.Errorf("Location = %+v", hit.Address.Location)
	}
	if hit.Scores.VastuScore != 88 || hit.Scores.OverallMatch != nil {
		t.Errorf("Scores = %+v", hit.Scores)
	}
	if hit.ClimateRisk.OverallScore != 22.5 {
		t.Errorf("ClimateRisk = %+v", hit.ClimateRisk)
	}
	if hit.Views != 340 || hit.Favorites != 28 {
		t.Errorf("engagement = %d/%d", hit.Views, hit.Favorites)
	}
}

func TestHitFromFields_MalformedLocation(t *testing.T) {
	if _, err := HitFromFields("x", map[string]string{domain.FieldLocation: "nope"}); err == nil {
		t.Error("expected error for malformed location")
	}
}
