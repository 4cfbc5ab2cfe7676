// Package search implements read queries over the property index: filtered
// pages, counts and facet aggregations.
package search

import (
	"context"
	"fmt"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/keys"
)

// store is the consumer interface for index reads (ISP).
type store interface {
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
	Count(ctx context.Context, q *db.CountQuery) (int, error)
	GroupCount(ctx context.Context, q *db.GroupCountQuery) (map[string]int, error)
}

// Repo implements the query side of the property index.
type Repo struct {
	store store
	keys  keys.Scheme
}

// New creates a search repository.
func New(s store, scheme keys.Scheme) *Repo {
	return &Repo{store: s, keys: scheme}
}

// Translate renders a validated request into an index filter expression and
// an optional geo constraint. City locations become a city tag condition;
// coordinate locations become a radius filter.
func Translate(req *request.Request) (filter.Expression, *db.GeoFilter, error) {
	expr, err := req.Filters().Expression()
	if err != nil {
		return filter.Expression{}, nil, fmt.Errorf("translate filters: %w", err)
	}

	loc := req.Location()
	if loc == nil {
		return expr, nil, nil
	}
	switch loc.Kind() {
	case request.LocationCity:
		c, err := filter.NewMatch(domain.FieldCity, loc.City())
		if err != nil {
			return filter.Expression{}, nil, fmt.Errorf("translate city: %w", err)
		}
		return expr.With(c), nil, nil
	case request.LocationCoordinates:
		lat, lon := loc.Coordinates()
		return expr, &db.GeoFilter{Lat: lat, Lon: lon, RadiusMeters: loc.RadiusMeters()}, nil
	}
	return expr, nil, nil
}

// Query runs a search request and returns the total match count with the
// requested page of hits.
func (r *Repo) Query(ctx context.Context, req *request.Request) (int, []result.PropertyHit, error) {
	expr, geoFilter, err := Translate(req)
	if err != nil {
		return 0, nil, err
	}

	q := &db.SearchQuery{
		IndexName: r.keys.Index(),
		Filters:   expr,
		Geo:       geoFilter,
		Offset:    req.Offset(),
		Limit:     req.Limit(),
	}
	if req.Sort().Field() == request.SortDistance {
		q.SortByDistance = true
	} else {
		q.SortBy = sortField(req.Sort().Field())
		q.SortDesc = req.Sort().Descending()
	}

	res, err := r.store.Search(ctx, q)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %v: %w", err, domain.ErrIndexUnavailable)
	}
	hits, err := r.parseEntries(res.Entries)
	if err != nil {
		return 0, nil, err
	}
	return res.Total, hits, nil
}

// Find runs an ad-hoc filtered query, used by the similarity finder and the
// map clusterer.
func (r *Repo) Find(ctx context.Context, expr filter.Expression, geoFilter *db.GeoFilter,
	offset, limit int) (int, []result.PropertyHit, error) {
	res, err := r.store.Search(ctx, &db.SearchQuery{
		IndexName: r.keys.Index(),
		Filters:   expr,
		Geo:       geoFilter,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return 0, nil, fmt.Errorf("search: %v: %w", err, domain.ErrIndexUnavailable)
	}
	hits, err := r.parseEntries(res.Entries)
	if err != nil {
		return 0, nil, err
	}
	return res.Total, hits, nil
}

// CountRange counts documents within a numeric range under the base filter.
func (r *Repo) CountRange(ctx context.Context, expr filter.Expression, geoFilter *db.GeoFilter,
	field string, rng filter.Range) (int, error) {
	cond, err := filter.NewRange(field, rng)
	if err != nil {
		return 0, fmt.Errorf("facet range for %s: %w", field, err)
	}

	n, err := r.store.Count(ctx, &db.CountQuery{
		IndexName: r.keys.Index(),
		Filters:   expr.With(cond),
		Geo:       geoFilter,
	})
	if err != nil {
		return 0, fmt.Errorf("facet count %s: %v: %w", field, err, domain.ErrIndexUnavailable)
	}
	return n, nil
}

// GroupCount counts documents per distinct value of a tag field under the
// base filter.
func (r *Repo) GroupCount(ctx context.Context, expr filter.Expression, geoFilter *db.GeoFilter,
	field string) (map[string]int, error) {
	counts, err := r.store.GroupCount(ctx, &db.GroupCountQuery{
		IndexName: r.keys.Index(),
		Filters:   expr,
		Geo:       geoFilter,
		GroupBy:   field,
	})
	if err != nil {
		return nil, fmt.Errorf("facet group %s: %v: %w", field, err, domain.ErrIndexUnavailable)
	}
	return counts, nil
}

// CountRangeFor counts documents of a request's filter universe within a
// numeric range. Pagination and sort do not affect the universe.
func (r *Repo) CountRangeFor(ctx context.Context, req *request.Request, field string,
	rng filter.Range) (int, error) {
	expr, geoFilter, err := Translate(req)
	if err != nil {
		return 0, err
	}
	return r.CountRange(ctx, expr, geoFilter, field, rng)
}

// GroupCountFor counts documents of a request's filter universe per distinct
// value of a tag field.
func (r *Repo) GroupCountFor(ctx context.Context, req *request.Request, field string) (map[string]int, error) {
	expr, geoFilter, err := Translate(req)
	if err != nil {
		return nil, err
	}
	return r.GroupCount(ctx, expr, geoFilter, field)
}

func (r *Repo) parseEntries(entries []db.SearchEntry) ([]result.PropertyHit, error) {
	hits := make([]result.PropertyHit, 0, len(entries))
	for _, entry := range entries {
		hit, err := result.HitFromFields(r.keys.PropertyID(entry.Key), entry.Fields)
		if err != nil {
			return nil, fmt.Errorf("parse hit: %w", err)
		}
		if entry.HasDistance {
			d := entry.DistanceMeters
			hit.DistanceMeters = &d
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func sortField(f request.SortField) string {
	switch f {
	case request.SortPrice:
		return domain.FieldPrice
	case request.SortVastuScore:
		return domain.FieldVastuScore
	case request.SortClimateRisk:
		return domain.FieldClimateRisk
	}
	return domain.FieldPrice
}
