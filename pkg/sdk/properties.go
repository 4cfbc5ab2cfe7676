package sdk

import (
	"context"
	"fmt"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
)

// IndexProperty writes one property to the search index. An existing document
// with the same ID is replaced.
func (c *Client) IndexProperty(ctx context.Context, p Property) error {
	dp := p.toDomain()
	if dp.ID == "" {
		return domain.NewValidationError("id", "is required")
	}
	if err := c.writer.Upsert(ctx, domain.NewIndexDocument(&dp)); err != nil {
		return fmt.Errorf("index property %s: %w", p.ID, err)
	}
	c.invalidate(p.ID)
	return nil
}

// IndexProperties writes a batch of properties. One failed document never
// aborts the batch; inspect the per-property outcomes.
func (c *Client) IndexProperties(ctx context.Context, props []Property) []BatchResult {
	docs := make([]domain.IndexDocument, 0, len(props))
	for i := range props {
		dp := props[i].toDomain()
		docs = append(docs, domain.NewIndexDocument(&dp))
	}

	outcomes := c.writer.BulkUpsert(ctx, docs)
	results := make([]BatchResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = BatchResult{ID: o.PropertyID, OK: o.Err == nil, Err: o.Err}
		if o.Err == nil {
			c.invalidate(o.PropertyID)
		}
	}
	return results
}

// RemoveProperty deletes a property from the index. Removing an absent
// property is a no-op, so deletions can be replayed safely.
func (c *Client) RemoveProperty(ctx context.Context, id string) error {
	if err := c.writer.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove property %s: %w", id, err)
	}
	c.invalidate(id)
	return nil
}

func (c *Client) invalidate(propertyID string) {
	if c.results != nil {
		c.results.InvalidateProperty(propertyID)
	}
}

func (p Property) toDomain() domain.Property {
	return domain.Property{
		ID:               p.ID,
		Title:            p.Title,
		Price:            p.Price,
		Bedrooms:         p.Bedrooms,
		Bathrooms:        p.Bathrooms,
		PropertyType:     p.PropertyType,
		City:             p.City,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		YearBuilt:        p.YearBuilt,
		AreaSqft:         p.AreaSqft,
		Amenities:        p.Amenities,
		VastuScore:       p.VastuScore,
		ClimateRiskScore: p.ClimateRisk,
		Views:            p.Views,
		Favorites:        p.Favorites,
		UpdatedAt:        p.UpdatedAt,
	}
}
