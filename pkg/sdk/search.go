package sdk

import (
	"context"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
)

// Search runs a query and returns a result page with facets.
func (c *Client) Search(ctx context.Context, q Query) (Page, error) {
	req, err := q.toDomain(c.limits)
	if err != nil {
		return Page{}, err
	}
	return c.searchSvc.Search(ctx, "", &req)
}

// SimilarTo finds properties resembling the reference property. A zero count
// selects the default. Returns ErrNotFound if the reference is not indexed.
func (c *Client) SimilarTo(ctx context.Context, propertyID string, count int) (Similar, error) {
	req, err := request.NewSimilar(propertyID, count)
	if err != nil {
		return Similar{}, err
	}
	return c.similarSvc.Similar(ctx, &req)
}

// ClustersFor aggregates matching properties into map clusters at the
// requested zoom level.
func (c *Client) ClustersFor(ctx context.Context, q ClusterQuery) (Clusters, error) {
	loc, err := q.Location.toDomain(c.limits)
	if err != nil {
		return Clusters{}, err
	}
	req, err := request.NewCluster(loc, q.Filters.toDomain(), q.Zoom)
	if err != nil {
		return Clusters{}, err
	}
	return c.clusterSvc.Clusters(ctx, &req)
}

func (q Query) toDomain(limits request.Limits) (request.Request, error) {
	loc, err := q.Location.toDomain(limits)
	if err != nil {
		return request.Request{}, err
	}
	sort, err := request.NewSort(q.SortBy, q.SortDirection)
	if err != nil {
		return request.Request{}, err
	}
	return request.New(loc, q.Filters.toDomain(), sort, q.Page, q.Limit, limits)
}

func (l *Location) toDomain(limits request.Limits) (*request.Location, error) {
	if l == nil {
		return nil, nil
	}
	var (
		loc request.Location
		err error
	)
	if l.coordinates {
		loc, err = request.NewCoordinatesLocation(l.lat, l.lon, l.radiusMeters, limits.DefaultRadiusMeters)
	} else {
		loc, err = request.NewCityLocation(l.city)
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (f Filters) toDomain() request.Filters {
	return request.Filters{
		PriceMin:       f.PriceMin,
		PriceMax:       f.PriceMax,
		BedroomsMin:    f.BedroomsMin,
		BathroomsMin:   f.BathroomsMin,
		PropertyTypes:  f.PropertyTypes,
		VastuScoreMin:  f.VastuScoreMin,
		ClimateRiskMax: f.ClimateRiskMax,
		YearBuiltMin:   f.YearBuiltMin,
		Amenities:      f.Amenities,
	}
}
