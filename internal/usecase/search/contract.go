package search

import (
	"context"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/score"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
)

// Repository defines the index read contract for search operations.
type Repository interface {
	// Query runs a request, returning the total match count and the
	// requested page of hits.
	Query(ctx context.Context, req *request.Request) (int, []result.PropertyHit, error)

	// CountRangeFor counts the request's filter universe within a numeric
	// range of one field.
	CountRangeFor(ctx context.Context, req *request.Request, field string, rng filter.Range) (int, error)

	// GroupCountFor counts the request's filter universe per distinct value
	// of a tag field.
	GroupCountFor(ctx context.Context, req *request.Request, field string) (map[string]int, error)
}

// ProfileSource resolves a user's preference profile. Returns
// domain.ErrNotFound for users without one; the search then skips
// personalization.
type ProfileSource interface {
	Profile(ctx context.Context, userID string) (score.Profile, error)
}

// ResultCache stores result pages by request fingerprint.
type ResultCache interface {
	Get(fingerprint string) (result.Page, bool)
	Put(fingerprint string, page result.Page)
}

// CacheMetrics counts cache hits and misses.
type CacheMetrics interface {
	CacheHit()
	CacheMiss()
}

// NopCacheMetrics discards cache metrics.
type NopCacheMetrics struct{}

func (NopCacheMetrics) CacheHit()  {}
func (NopCacheMetrics) CacheMiss() {}
