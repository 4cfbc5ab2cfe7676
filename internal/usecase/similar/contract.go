package similar

import (
	"context"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
)

// DocumentReader reads the reference property's index document.
type DocumentReader interface {
	Get(ctx context.Context, propertyID string) (domain.IndexDocument, error)
}

// Finder runs ad-hoc candidate queries against the index.
type Finder interface {
	Find(ctx context.Context, expr filter.Expression, geoFilter *db.GeoFilter,
		offset, limit int) (int, []result.PropertyHit, error)
}
