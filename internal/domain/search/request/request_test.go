package request

import (
	"errors"
	"testing"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func defaultLimits() Limits {
	return Limits{DefaultLimit: 20, MaxLimit: 100, DefaultRadiusMeters: 10_000}
}

func TestNewCityLocation(t *testing.T) {
	if _, err := NewCityLocation(""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty city error = %v, want ErrValidation", err)
	}
	loc, err := NewCityLocation("Boulder, CO")
	if err != nil {
		t.Fatalf("NewCityLocation: %v", err)
	}
	if loc.Kind() != LocationCity || loc.City() != "Boulder, CO" {
		t.Errorf("location = %+v", loc)
	}
}

func TestNewCoordinatesLocation(t *testing.T) {
	tests := []struct {
		name             string
		lat, lon, radius float64
		wantErr          bool
		wantRadius       float64
	}{
		{"valid with radius", 40.0, -105.2, 5000, false, 5000},
		{"default radius", 40.0, -105.2, 0, false, 10_000},
		{"bad latitude", 95, 0, 0, true, 0},
		{"bad longitude", 0, 190, 0, true, 0},
		{"negative radius", 40, -105, -1, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := NewCoordinatesLocation(tt.lat, tt.lon, tt.radius, 10_000)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && loc.RadiusMeters() != tt.wantRadius {
				t.Errorf("radius = %v, want %v", loc.RadiusMeters(), tt.wantRadius)
			}
		})
	}
}

func TestNewSort(t *testing.T) {
	tests := []struct {
		name, field, direction string
		wantErr                bool
	}{
		{"default", "", "", false},
		{"price desc", "price", "desc", false},
		{"vastu asc", "vastu_score", "asc", false},
		{"distance asc", "distance", "asc", false},
		{"distance desc rejected", "distance", "desc", true},
		{"unknown field", "charm", "asc", true},
		{"unknown direction", "price", "sideways", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSort(tt.field, tt.direction)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSort(%q, %q) error = %v, wantErr %v", tt.field, tt.direction, err, tt.wantErr)
			}
		})
	}
}

func TestFiltersValidate(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		wantErr bool
	}{
		{"empty", Filters{}, false},
		{"price range", Filters{PriceMin: floatPtr(500_000), PriceMax: floatPtr(800_000)}, false},
		{"inverted price range", Filters{PriceMin: floatPtr(900_000), PriceMax: floatPtr(100_000)}, true},
		{"negative price", Filters{PriceMin: floatPtr(-5)}, true},
		{"vastu out of range", Filters{VastuScoreMin: floatPtr(150)}, true},
		{"climate out of range", Filters{ClimateRiskMax: floatPtr(-1)}, true},
		{"absurd bedrooms", Filters{BedroomsMin: intPtr(99)}, true},
		{"empty property type", Filters{PropertyTypes: []string{"house", ""}}, true},
		{"implausible year", Filters{YearBuiltMin: intPtr(123)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filters.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrValidation) {
				t.Errorf("error %v is not a validation error", err)
			}
		})
	}
}

func TestFiltersExpression(t *testing.T) {
	f := Filters{
		PriceMin:       floatPtr(500_000),
		PriceMax:       floatPtr(800_000),
		BedroomsMin:    intPtr(3),
		PropertyTypes:  []string{"house", "condo"},
		VastuScoreMin:  floatPtr(70),
		ClimateRiskMax: floatPtr(40),
		Amenities:      []string{"garage"},
	}
	expr, err := f.Expression()
	if err != nil {
		t.Fatalf("Expression: %v", err)
	}
	if got := len(expr.Conditions()); got != 6 {
		t.Errorf("conditions = %d, want 6", got)
	}
}

func TestNewRequest(t *testing.T) {
	city, _ := NewCityLocation("Boulder, CO")
	coords, _ := NewCoordinatesLocation(40, -105, 0, 10_000)
	distSort, _ := NewSort("distance", "asc")
	priceSort, _ := NewSort("price", "asc")

	tests := []struct {
		name        string
		loc         *Location
		sort        Sort
		page, limit int
		wantErr     bool
	}{
		{"defaults", &city, priceSort, 0, 0, false},
		{"explicit paging", &city, priceSort, 2, 50, false},
		{"page zero-indexed", &city, priceSort, -1, 10, true},
		{"limit above max", &city, priceSort, 1, 5000, true},
		{"distance sort with coordinates", &coords, distSort, 1, 10, false},
		{"distance sort without coordinates", &city, distSort, 1, 10, true},
		{"distance sort with no location", nil, distSort, 1, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := New(tt.loc, Filters{}, tt.sort, tt.page, tt.limit, defaultLimits())
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.page == 0 && req.Page() != 1 {
				t.Errorf("default page = %d, want 1", req.Page())
			}
			if err == nil && tt.limit == 0 && req.Limit() != 20 {
				t.Errorf("default limit = %d, want 20", req.Limit())
			}
		})
	}
}

func TestRequestOffset(t *testing.T) {
	city, _ := NewCityLocation("Pune")
	sort, _ := NewSort("", "")
	req, err := New(&city, Filters{}, sort, 3, 25, defaultLimits())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if req.Offset() != 50 {
		t.Errorf("Offset() = %d, want 50", req.Offset())
	}
}

func TestNewSimilar(t *testing.T) {
	if _, err := NewSimilar("", 5); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty id error = %v", err)
	}
	if _, err := NewSimilar("p1", 1000); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("oversized count error = %v", err)
	}
	s, err := NewSimilar("p1", 0)
	if err != nil {
		t.Fatalf("NewSimilar: %v", err)
	}
	if s.Count() != DefaultSimilarCount {
		t.Errorf("default count = %d, want %d", s.Count(), DefaultSimilarCount)
	}
}

func TestNewCluster(t *testing.T) {
	if _, err := NewCluster(nil, Filters{}, 99); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("oversized zoom error = %v", err)
	}
	c, err := NewCluster(nil, Filters{}, 0)
	if err != nil {
		t.Fatalf("NewCluster: %v", err)
	}
	if c.Zoom() != DefaultClusterZoom {
		t.Errorf("default zoom = %d, want %d", c.Zoom(), DefaultClusterZoom)
	}
}
