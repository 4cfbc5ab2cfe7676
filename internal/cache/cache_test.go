package cache

import (
	"testing"
	"time"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
)

func mustRequest(t *testing.T, filters request.Filters, page, limit int) request.Request {
	t.Helper()
	req, err := request.New(nil, filters, request.Sort{}, page, limit, request.Limits{})
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func TestFingerprintStable(t *testing.T) {
	min := 100000.0
	a := mustRequest(t, request.Filters{PriceMin: &min, Amenities: []string{"gym", "garage"}}, 1, 20)
	b := mustRequest(t, request.Filters{PriceMin: &min, Amenities: []string{"garage", "gym"}}, 1, 20)

	if Fingerprint("u1", &a) != Fingerprint("u1", &b) {
		t.Error("amenity order must not change the fingerprint")
	}
}

func TestFingerprintDiscriminates(t *testing.T) {
	base := mustRequest(t, request.Filters{}, 1, 20)
	baseFP := Fingerprint("u1", &base)

	otherUser := Fingerprint("u2", &base)
	if otherUser == baseFP {
		t.Error("user must be part of the fingerprint")
	}

	page2 := mustRequest(t, request.Filters{}, 2, 20)
	if Fingerprint("u1", &page2) == baseFP {
		t.Error("page must be part of the fingerprint")
	}

	min := 1.0
	filtered := mustRequest(t, request.Filters{PriceMin: &min}, 1, 20)
	if Fingerprint("u1", &filtered) == baseFP {
		t.Error("filters must be part of the fingerprint")
	}
}

func pageWith(ids ...string) result.Page {
	p := result.Page{TotalResults: len(ids), Page: 1, TotalPages: 1}
	for _, id := range ids {
		p.Properties = append(p.Properties, result.PropertyHit{PropertyID: id})
	}
	return p
}

func TestCacheRoundTrip(t *testing.T) {
	c := NewResultCache(16, time.Minute)

	c.Put("fp1", pageWith("p-1", "p-2"))
	got, ok := c.Get("fp1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.TotalResults != 2 {
		t.Errorf("TotalResults = %d, want 2", got.TotalResults)
	}

	if _, ok := c.Get("fp-missing"); ok {
		t.Error("unexpected hit for unknown fingerprint")
	}
}

func TestInvalidateProperty(t *testing.T) {
	c := NewResultCache(16, time.Minute)
	c.Put("fp1", pageWith("p-1", "p-2"))
	c.Put("fp2", pageWith("p-2"))
	c.Put("fp3", pageWith("p-3"))

	c.InvalidateProperty("p-2")

	if _, ok := c.Get("fp1"); ok {
		t.Error("fp1 contains p-2 and must be invalidated")
	}
	if _, ok := c.Get("fp2"); ok {
		t.Error("fp2 contains p-2 and must be invalidated")
	}
	if _, ok := c.Get("fp3"); !ok {
		t.Error("fp3 does not contain p-2 and must survive")
	}
}

func TestPurge(t *testing.T) {
	c := NewResultCache(16, time.Minute)
	c.Put("fp1", pageWith("p-1"))
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len after purge = %d, want 0", c.Len())
	}
}

func TestCompactionDropsStaleReverseEntries(t *testing.T) {
	c := NewResultCache(2, time.Minute)
	// Capacity 2: each Put beyond that evicts the oldest. Enough churn
	// triggers compaction, which must not break live entries.
	for i := 0; i < 64; i++ {
		c.Put(string(rune('a'+i%26))+"-fp", pageWith("p-1"))
	}
	if c.Len() > 2 {
		t.Errorf("Len = %d, want <= 2", c.Len())
	}
	c.InvalidateProperty("p-1")
	if c.Len() != 0 {
		t.Errorf("Len after invalidation = %d, want 0", c.Len())
	}
}
