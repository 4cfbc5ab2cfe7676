// Package search implements the query engine: cached, faceted, optionally
// personalized property searches.
package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/cache"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/score"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
)

// Config holds facet bucket edges.
type Config struct {
	PriceBuckets []float64
	VastuBuckets []float64
}

// Service handles property search requests.
type Service struct {
	repo     Repository
	profiles ProfileSource
	results  ResultCache
	metrics  CacheMetrics
	cfg      Config
}

// New creates a search service. profiles and results may be nil to disable
// personalization and caching.
func New(repo Repository, profiles ProfileSource, results ResultCache, m CacheMetrics, cfg Config) *Service {
	if m == nil {
		m = NopCacheMetrics{}
	}
	return &Service{repo: repo, profiles: profiles, results: results, metrics: m, cfg: cfg}
}

// Search executes a validated request: page query and facet aggregation run
// in parallel, then hits are personalized for the requesting user. Identical
// requests within the cache TTL are served from the result cache.
func (s *Service) Search(ctx context.Context, userID string, req *request.Request) (result.Page, error) {
	fingerprint := cache.Fingerprint(userID, req)
	if s.results != nil {
		if page, ok := s.results.Get(fingerprint); ok {
			s.metrics.CacheHit()
			page.Cached = true
			return page, nil
		}
		s.metrics.CacheMiss()
	}

	var (
		total  int
		hits   []result.PropertyHit
		facets result.Facets
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, hits, err = s.repo.Query(gctx, req)
		return err
	})
	g.Go(func() error {
		var err error
		facets, err = s.aggregateFacets(gctx, req)
		return err
	})
	if err := g.Wait(); err != nil {
		return result.Page{}, fmt.Errorf("search: %w", err)
	}

	s.personalize(ctx, userID, hits)

	page := result.Page{
		TotalResults: total,
		Page:         req.Page(),
		TotalPages:   result.TotalPages(total, req.Limit()),
		Properties:   hits,
		Facets:       facets,
	}
	if s.results != nil {
		s.results.Put(fingerprint, page)
	}
	return page, nil
}

// personalize attaches overall_match scores when the user has a non-empty
// preference profile. A missing or unreachable profile degrades to an
// unpersonalized response; it never fails the search.
func (s *Service) personalize(ctx context.Context, userID string, hits []result.PropertyHit) {
	if userID == "" || s.profiles == nil {
		return
	}
	profile, err := s.profiles.Profile(ctx, userID)
	if err != nil || profile.IsEmpty() {
		return
	}

	for i := range hits {
		match := score.OverallMatch(profile, score.Inputs{
			VastuScore:  hits[i].Scores.VastuScore,
			ClimateRisk: hits[i].ClimateRisk.OverallScore,
			Price:       hits[i].BasicInfo.Price,
			Views:       hits[i].Views,
			Favorites:   hits[i].Favorites,
		})
		hits[i].Scores.OverallMatch = &match
	}
}
