// Package source provides access to the canonical property store. The index
// never owns property data; everything here is read-only projection input.
package source

import (
	"context"
	"time"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
)

// Source is the property store capability consumed by the sync passes.
type Source interface {
	// Get fetches a single property. Returns domain.ErrNotFound if the
	// property does not exist in the canonical store.
	Get(ctx context.Context, id string) (domain.Property, error)

	// List returns a stable page of all properties, ordered by ID.
	List(ctx context.Context, offset, limit int) ([]domain.Property, error)

	// ListIDs returns every property ID in the canonical store.
	ListIDs(ctx context.Context) ([]string, error)

	// ModifiedSince returns properties whose record changed at or after the
	// given time.
	ModifiedSince(ctx context.Context, since time.Time) ([]domain.Property, error)

	// VastuAnalyzedSince returns properties whose vastu analysis completed
	// at or after the given time.
	VastuAnalyzedSince(ctx context.Context, since time.Time) ([]domain.Property, error)

	// ReportsExpiringWithin returns properties whose climate report expires
	// within the lookahead window.
	ReportsExpiringWithin(ctx context.Context, lookahead time.Duration) ([]domain.Property, error)

	// EngagementChangedSince returns properties whose view or favorite
	// counters changed at or after the given time.
	EngagementChangedSince(ctx context.Context, since time.Time) ([]domain.Property, error)
}
