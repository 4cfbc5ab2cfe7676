package search

import (
	"context"
	"testing"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/score"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
)

// mockRepo implements Repository over a fixed hit list. Counts are evaluated
// against the fixture so facet sums stay consistent with the total.
type mockRepo struct {
	hits    []result.PropertyHit
	queryFn func(ctx context.Context, req *request.Request) (int, []result.PropertyHit, error)
}

func (m *mockRepo) Query(ctx context.Context, req *request.Request) (int, []result.PropertyHit, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, req)
	}
	total := len(m.hits)
	start := req.Offset()
	if start > total {
		start = total
	}
	end := start + req.Limit()
	if end > total {
		end = total
	}
	page := append([]result.PropertyHit(nil), m.hits[start:end]...)
	return total, page, nil
}

func (m *mockRepo) CountRangeFor(_ context.Context, _ *request.Request, field string, rng filter.Range) (int, error) {
	n := 0
	for _, h := range m.hits {
		var v float64
		switch field {
		case domain.FieldPrice:
			v = h.BasicInfo.Price
		case domain.FieldVastuScore:
			v = h.Scores.VastuScore
		}
		if rng.Contains(v) {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) GroupCountFor(context.Context, *request.Request, string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, h := range m.hits {
		counts[h.BasicInfo.PropertyType]++
	}
	return counts, nil
}

// mockProfiles implements ProfileSource.
type mockProfiles struct {
	profileFn func(ctx context.Context, userID string) (score.Profile, error)
}

func (m *mockProfiles) Profile(ctx context.Context, userID string) (score.Profile, error) {
	if m.profileFn != nil {
		return m.profileFn(ctx, userID)
	}
	return score.Profile{}, domain.ErrNotFound
}

func boulderHits() []result.PropertyHit {
	mk := func(id string, price, vastu float64, ptype string) result.PropertyHit {
		return result.PropertyHit{
			PropertyID: id,
			BasicInfo:  result.BasicInfo{Price: price, PropertyType: ptype},
			Address:    result.Address{City: "Boulder, CO"},
			Scores:     result.Scores{VastuScore: vastu},
		}
	}
	return []result.PropertyHit{
		mk("p-1", 200000, 20, "house"),
		mk("p-2", 250000, 50, "house"),
		mk("p-3", 480000, 75, "condo"),
		mk("p-4", 900000, 92, "villa"),
		mk("p-5", 2500000, 88, "villa"),
	}
}

func testService(t *testing.T, repo Repository, profiles ProfileSource, results ResultCache) *Service {
	t.Helper()
	return New(repo, profiles, results, nil, Config{
		PriceBuckets: []float64{250000, 500000, 750000, 1000000, 2000000},
		VastuBuckets: []float64{25, 50, 75, 90},
	})
}

func mustPlainRequest(t *testing.T, page, limit int) request.Request {
	t.Helper()
	req, err := request.New(nil, request.Filters{}, request.Sort{}, page, limit, request.Limits{})
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}
