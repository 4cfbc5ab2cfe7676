package cluster

import (
	"context"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
)

// Finder pages through index documents matching a filter expression.
type Finder interface {
	Find(ctx context.Context, expr filter.Expression, geoFilter *db.GeoFilter,
		offset, limit int) (int, []result.PropertyHit, error)
}
