package sync

import (
	"context"
	"time"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/index"
)

// Writer is the index writer capability consumed by the sync passes.
type Writer interface {
	Upsert(ctx context.Context, doc domain.IndexDocument) error
	BulkUpsert(ctx context.Context, docs []domain.IndexDocument) []index.DocOutcome
	PartialUpdate(ctx context.Context, propertyID string, fields map[string]string) error
	Delete(ctx context.Context, propertyID string) error
}

// IndexScanner pages through what the index currently contains. The full
// pass scans with an unconstrained expression to find documents whose
// properties no longer exist.
type IndexScanner interface {
	Find(ctx context.Context, expr filter.Expression, geoFilter *db.GeoFilter,
		offset, limit int) (int, []result.PropertyHit, error)
}

// TaskQueue enqueues indexing work detected by the passes.
type TaskQueue interface {
	Enqueue(ctx context.Context, task domain.Task) error
	Len() int
}

// Invalidator drops cached search results made stale by index writes.
type Invalidator interface {
	InvalidateProperty(propertyID string)
	Purge()
}

// PassMetrics receives sync pass observations.
type PassMetrics interface {
	PassCompleted(pass, status string, duration time.Duration)
	DocumentsEnqueued(pass, action string, n int)
	QueueDepth(n int)
}

// NopPassMetrics discards all sync metrics.
type NopPassMetrics struct{}

func (NopPassMetrics) PassCompleted(string, string, time.Duration) {}
func (NopPassMetrics) DocumentsEnqueued(string, string, int)       {}
func (NopPassMetrics) QueueDepth(int)                              {}
