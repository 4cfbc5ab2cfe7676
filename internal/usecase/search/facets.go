package search

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
)

// bucket is one facet range with its response label.
type bucket struct {
	label string
	rng   filter.Range
}

// buckets partitions [0, inf) along the configured edges into half-open
// ranges: [0,e0), [e0,e1), ..., [eLast,inf). Every value lands in exactly
// one bucket, so the counts sum to the filtered total.
func buckets(edges []float64) ([]bucket, error) {
	out := make([]bucket, 0, len(edges)+1)
	prev := 0.0
	for _, edge := range edges {
		min, max := prev, edge
		rng, err := filter.NewRangeHalfOpen(&min, &max)
		if err != nil {
			return nil, err
		}
		out = append(out, bucket{label: formatEdge(min) + "-" + formatEdge(max), rng: rng})
		prev = edge
	}
	min := prev
	rng, err := filter.NewRangeBounds(&min, nil)
	if err != nil {
		return nil, err
	}
	out = append(out, bucket{label: formatEdge(min) + "+", rng: rng})
	return out, nil
}

// aggregateFacets computes all three facet dimensions over the request's
// filter universe, in parallel.
func (s *Service) aggregateFacets(ctx context.Context, req *request.Request) (result.Facets, error) {
	priceBuckets, err := buckets(s.cfg.PriceBuckets)
	if err != nil {
		return result.Facets{}, err
	}
	vastuBuckets, err := buckets(s.cfg.VastuBuckets)
	if err != nil {
		return result.Facets{}, err
	}

	priceCounts := make([]int, len(priceBuckets))
	vastuCounts := make([]int, len(vastuBuckets))
	var typeCounts map[string]int

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range priceBuckets {
		i, b := i, b
		g.Go(func() error {
			n, err := s.repo.CountRangeFor(gctx, req, domain.FieldPrice, b.rng)
			if err != nil {
				return err
			}
			priceCounts[i] = n
			return nil
		})
	}
	for i, b := range vastuBuckets {
		i, b := i, b
		g.Go(func() error {
			n, err := s.repo.CountRangeFor(gctx, req, domain.FieldVastuScore, b.rng)
			if err != nil {
				return err
			}
			vastuCounts[i] = n
			return nil
		})
	}
	g.Go(func() error {
		counts, err := s.repo.GroupCountFor(gctx, req, domain.FieldPropertyType)
		if err != nil {
			return err
		}
		typeCounts = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return result.Facets{}, err
	}

	facets := result.Facets{
		PriceRanges:      make(map[string]int, len(priceBuckets)),
		PropertyTypes:    typeCounts,
		VastuScoreRanges: make(map[string]int, len(vastuBuckets)),
	}
	if facets.PropertyTypes == nil {
		facets.PropertyTypes = map[string]int{}
	}
	for i, b := range priceBuckets {
		facets.PriceRanges[b.label] = priceCounts[i]
	}
	for i, b := range vastuBuckets {
		facets.VastuScoreRanges[b.label] = vastuCounts[i]
	}
	return facets, nil
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
