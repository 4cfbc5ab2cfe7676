package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
)

func testIndex(t *testing.T) *db.IndexDefinition {
	t.Helper()
	def, err := db.NewIndex("idx:test").
		Prefix("prop:").
		NumericSortable("price").
		Tag("city", "|").
		Tag("amenities", ",").
		Tag("property_type", ",").
		Geo("location").
		Build()
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	return def
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	docs := map[string]map[string]string{
		"prop:1": {
			"price": "300000", "city": "Boulder, CO", "property_type": "house",
			"amenities": "garage,garden", "location": "-105.27,40.01",
		},
		"prop:2": {
			"price": "550000", "city": "Boulder, CO", "property_type": "condo",
			"amenities": "gym", "location": "-105.25,40.02",
		},
		"prop:3": {
			"price": "800000", "city": "Denver, CO", "property_type": "house",
			"amenities": "garage", "location": "-104.99,39.74",
		},
		"other:1": {
			"price": "100", "city": "Boulder, CO", "property_type": "house",
			"location": "-105.27,40.01",
		},
	}
	for key, fields := range docs {
		if err := s.HSet(ctx, key, fields); err != nil {
			t.Fatalf("HSet(%s): %v", key, err)
		}
	}
	if err := s.CreateIndex(ctx, testIndex(t)); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
}

func TestRevisionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if _, err := s.GetRevision(ctx, "prop:x"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("GetRevision on missing doc: got %v, want ErrKeyNotFound", err)
	}

	if err := s.HSet(ctx, "prop:x", map[string]string{"price": "1"}); err != nil {
		t.Fatalf("HSet: %v", err)
	}
	rev, err := s.GetRevision(ctx, "prop:x")
	if err != nil {
		t.Fatalf("GetRevision: %v", err)
	}
	if rev != 1 {
		t.Fatalf("revision after first write = %d, want 1", rev)
	}

	if err := s.HSetCAS(ctx, "prop:x", rev, map[string]string{"price": "2"}); err != nil {
		t.Fatalf("HSetCAS with current revision: %v", err)
	}
	if err := s.HSetCAS(ctx, "prop:x", rev, map[string]string{"price": "3"}); !errors.Is(err, db.ErrRevisionMismatch) {
		t.Fatalf("HSetCAS with stale revision: got %v, want ErrRevisionMismatch", err)
	}

	fields, err := s.HGetAll(ctx, "prop:x")
	if err != nil {
		t.Fatalf("HGetAll: %v", err)
	}
	if fields["price"] != "2" {
		t.Errorf("price = %q, want %q (stale write must not apply)", fields["price"], "2")
	}
	if _, ok := fields[revField]; ok {
		t.Error("revision field leaked to reader")
	}
}

func TestHSetCASMissingDoc(t *testing.T) {
	s := NewStore()
	err := s.HSetCAS(context.Background(), "prop:gone", 1, map[string]string{"price": "1"})
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("got %v, want ErrKeyNotFound", err)
	}
}

func TestSearchFiltersAndPrefixes(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seed(t, s)

	city, _ := filter.NewMatch("city", "Boulder, CO")
	expr, err := filter.NewExpression(city)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}

	res, err := s.Search(ctx, &db.SearchQuery{
		IndexName: "idx:test",
		Filters:   expr,
		SortBy:    "price",
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("Total = %d, want 2 (prefix other: must be excluded)", res.Total)
	}
	if res.Entries[0].Key != "prop:1" || res.Entries[1].Key != "prop:2" {
		t.Errorf("price ascending order broken: %s, %s", res.Entries[0].Key, res.Entries[1].Key)
	}
}

func TestSearchByDistance(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seed(t, s)

	res, err := s.Search(ctx, &db.SearchQuery{
		IndexName:      "idx:test",
		Geo:            &db.GeoFilter{Lat: 40.02, Lon: -105.25, RadiusMeters: 10000},
		SortByDistance: true,
		Limit:          10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 3 {
		t.Fatalf("Total = %d, want 3 (Denver outside radius)", res.Total)
	}
	if res.Entries[0].Key != "prop:2" {
		t.Errorf("nearest first: got %s, want prop:2", res.Entries[0].Key)
	}
	for _, e := range res.Entries {
		if !e.HasDistance {
			t.Errorf("entry %s missing distance", e.Key)
		}
	}
	if res.Entries[0].DistanceMeters > res.Entries[1].DistanceMeters {
		t.Error("distances not ascending")
	}
}

func TestSearchByDistanceRequiresGeo(t *testing.T) {
	s := NewStore()
	seed(t, s)
	_, err := s.Search(context.Background(), &db.SearchQuery{
		IndexName:      "idx:test",
		SortByDistance: true,
		Limit:          10,
	})
	if !errors.Is(err, db.ErrGeoFilterRequired) {
		t.Fatalf("got %v, want ErrGeoFilterRequired", err)
	}
}

func TestGroupCountSplitsTags(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seed(t, s)

	counts, err := s.GroupCount(ctx, &db.GroupCountQuery{
		IndexName: "idx:test",
		GroupBy:   "amenities",
	})
	if err != nil {
		t.Fatalf("GroupCount: %v", err)
	}
	if counts["garage"] != 2 || counts["garden"] != 1 || counts["gym"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestGroupCountCityNotSplitOnComma(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seed(t, s)

	counts, err := s.GroupCount(ctx, &db.GroupCountQuery{
		IndexName: "idx:test",
		GroupBy:   "city",
	})
	if err != nil {
		t.Fatalf("GroupCount: %v", err)
	}
	if counts["Boulder, CO"] != 2 {
		t.Errorf(`counts["Boulder, CO"] = %d, want 2; full map %v`, counts["Boulder, CO"], counts)
	}
}

func TestKVTTL(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	base := time.Now()
	now := base
	s.SetClock(func() time.Time { return now })

	if err := s.SetWithTTL(ctx, "wm", []byte("123"), time.Minute); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	if _, err := s.Get(ctx, "wm"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	now = base.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "wm"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("Get after expiry: got %v, want ErrKeyNotFound", err)
	}
}

func TestIndexLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	def := testIndex(t)

	if err := s.CreateIndex(ctx, def); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if err := s.CreateIndex(ctx, def); !errors.Is(err, db.ErrIndexExists) {
		t.Fatalf("duplicate CreateIndex: got %v, want ErrIndexExists", err)
	}
	ok, err := s.IndexExists(ctx, def.Name)
	if err != nil || !ok {
		t.Fatalf("IndexExists = %v, %v", ok, err)
	}
	if err := s.DropIndex(ctx, def.Name); err != nil {
		t.Fatalf("DropIndex: %v", err)
	}
	if err := s.DropIndex(ctx, def.Name); !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("DropIndex missing: got %v, want ErrIndexNotFound", err)
	}
}
