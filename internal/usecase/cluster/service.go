// Package cluster groups matching listings into map-grid aggregates for
// rendering pins at a given zoom level.
package cluster

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/geo"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
)

// fetchBatchSize bounds a single index round trip while paging through the
// full match set.
const fetchBatchSize = 500

// maxClusteredProperties caps how many matches a single clustering request
// will aggregate.
const maxClusteredProperties = 10_000

// Service aggregates matching properties into geographic grid cells.
type Service struct {
	finder Finder
}

// New creates a clustering service.
func New(finder Finder) *Service {
	return &Service{finder: finder}
}

// cell accumulates per-grid-cell statistics while paging through matches.
type cell struct {
	count    int
	sumLat   float64
	sumLon   float64
	sumPrice float64
	minPrice float64
	maxPrice float64
}

// Clusters buckets every property matching the request into grid cells at
// the requested zoom level. Each matching property lands in exactly one
// cluster. Clusters are ordered by descending count, ties broken by
// location, so the response is deterministic.
func (s *Service) Clusters(ctx context.Context, req *request.Cluster) (result.Clusters, error) {
	expr, geoFilter, err := scope(req)
	if err != nil {
		return result.Clusters{}, err
	}

	cells := make(map[string]*cell)
	for offset := 0; offset < maxClusteredProperties; offset += fetchBatchSize {
		total, hits, err := s.finder.Find(ctx, expr, geoFilter, offset, fetchBatchSize)
		if err != nil {
			return result.Clusters{}, fmt.Errorf("cluster query: %w", err)
		}
		for _, h := range hits {
			key := geo.CellKey(h.Address.Location.Lat, h.Address.Location.Lon, req.Zoom())
			c, ok := cells[key]
			if !ok {
				c = &cell{minPrice: math.MaxFloat64}
				cells[key] = c
			}
			c.count++
			c.sumLat += h.Address.Location.Lat
			c.sumLon += h.Address.Location.Lon
			c.sumPrice += h.BasicInfo.Price
			c.minPrice = math.Min(c.minPrice, h.BasicInfo.Price)
			c.maxPrice = math.Max(c.maxPrice, h.BasicInfo.Price)
		}
		if offset+len(hits) >= total || len(hits) == 0 {
			break
		}
	}

	clusters := make([]result.Cluster, 0, len(cells))
	for _, c := range cells {
		clusters = append(clusters, result.Cluster{
			Location: result.GeoPoint{
				Lat: c.sumLat / float64(c.count),
				Lon: c.sumLon / float64(c.count),
			},
			Count:    c.count,
			AvgPrice: math.Round(c.sumPrice/float64(c.count)*100) / 100,
			PriceRange: result.PriceRange{
				Min: c.minPrice,
				Max: c.maxPrice,
			},
		})
	}
	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Count != clusters[j].Count {
			return clusters[i].Count > clusters[j].Count
		}
		if clusters[i].Location.Lat != clusters[j].Location.Lat {
			return clusters[i].Location.Lat < clusters[j].Location.Lat
		}
		return clusters[i].Location.Lon < clusters[j].Location.Lon
	})

	return result.Clusters{Clusters: clusters}, nil
}

// scope translates the request's location and filters into an index query.
func scope(req *request.Cluster) (filter.Expression, *db.GeoFilter, error) {
	expr, err := req.Filters().Expression()
	if err != nil {
		return filter.Expression{}, nil, err
	}

	loc := req.Location()
	if loc == nil {
		return expr, nil, nil
	}
	switch loc.Kind() {
	case request.LocationCity:
		c, err := filter.NewMatch(domain.FieldCity, loc.City())
		if err != nil {
			return filter.Expression{}, nil, err
		}
		return expr.With(c), nil, nil
	case request.LocationCoordinates:
		lat, lon := loc.Coordinates()
		return expr, &db.GeoFilter{Lat: lat, Lon: lon, RadiusMeters: loc.RadiusMeters()}, nil
	default:
		return expr, nil, nil
	}
}
