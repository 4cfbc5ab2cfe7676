// Package index implements the index writer: all mutations of the property
// search index go through it.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/keys"
)

// store is the consumer interface for index writes (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) []db.DocResult
	HSetCAS(ctx context.Context, key string, expectedRev int64, fields map[string]string) error
	GetRevision(ctx context.Context, key string) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// DocOutcome reports one document of a bulk write.
type DocOutcome struct {
	PropertyID string
	Err        error
}

// Repo implements the index writer.
type Repo struct {
	store      store
	keys       keys.Scheme
	casRetries int
}

// New creates an index writer. casRetries bounds the partial-update
// read-modify-write loop.
func New(s store, scheme keys.Scheme, casRetries int) *Repo {
	if casRetries <= 0 {
		casRetries = 3
	}
	return &Repo{store: s, keys: scheme, casRetries: casRetries}
}

// EnsureIndex creates the property search index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	name := r.keys.Index()
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %v: %w", name, err, domain.ErrIndexUnavailable)
	}
	if exists {
		return nil
	}

	def, err := schema(name, r.keys.DocumentPrefix())
	if err != nil {
		return fmt.Errorf("build index schema: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %v: %w", name, err, domain.ErrIndexUnavailable)
	}
	return nil
}

// Upsert writes a property's full index document. Writing the same document
// twice leaves the index unchanged.
func (r *Repo) Upsert(ctx context.Context, doc domain.IndexDocument) error {
	key := r.keys.Document(doc.ID)
	if err := r.store.HSet(ctx, key, doc.Fields); err != nil {
		return fmt.Errorf("upsert %s: %v: %w", key, err, domain.ErrIndexUnavailable)
	}
	return nil
}

// BulkUpsert writes many documents, reporting per-document outcomes. One
// failed document never fails the batch.
func (r *Repo) BulkUpsert(ctx context.Context, docs []domain.IndexDocument) []DocOutcome {
	items := make([]db.HashSetItem, len(docs))
	for i, doc := range docs {
		items[i] = db.HashSetItem{Key: r.keys.Document(doc.ID), Fields: doc.Fields}
	}

	results := r.store.HSetMulti(ctx, items)
	outcomes := make([]DocOutcome, len(results))
	for i, res := range results {
		outcomes[i].PropertyID = r.keys.PropertyID(res.Key)
		if res.Err != nil {
			outcomes[i].Err = fmt.Errorf("upsert %s: %v: %w", res.Key, res.Err, domain.ErrIndexUnavailable)
		}
	}
	return outcomes
}

// PartialUpdate overwrites only the given fields, leaving the rest of the
// document intact. Concurrent full upserts win: the update retries on
// revision conflicts and reports domain.ErrConflict once retries run out.
func (r *Repo) PartialUpdate(ctx context.Context, propertyID string, fields map[string]string) error {
	key := r.keys.Document(propertyID)

	var lastRev int64
	for attempt := 0; attempt < r.casRetries; attempt++ {
		rev, err := r.store.GetRevision(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				return fmt.Errorf("partial update %s: %w", propertyID, domain.ErrNotFound)
			}
			return fmt.Errorf("read revision %s: %v: %w", key, err, domain.ErrIndexUnavailable)
		}
		lastRev = rev

		err = r.store.HSetCAS(ctx, key, rev, fields)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, db.ErrRevisionMismatch):
			continue
		case errors.Is(err, db.ErrKeyNotFound):
			return fmt.Errorf("partial update %s: %w", propertyID, domain.ErrNotFound)
		default:
			return fmt.Errorf("partial update %s: %v: %w", key, err, domain.ErrIndexUnavailable)
		}
	}
	return fmt.Errorf("partial update %s: %w", propertyID, &domain.ConflictError{ObservedRevision: lastRev})
}

// Delete removes a property's document. Deleting an absent document is a
// no-op so deletions can be replayed safely.
func (r *Repo) Delete(ctx context.Context, propertyID string) error {
	key := r.keys.Document(propertyID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %v: %w", key, err, domain.ErrIndexUnavailable)
	}
	return nil
}

// Get reads a property's index document.
func (r *Repo) Get(ctx context.Context, propertyID string) (domain.IndexDocument, error) {
	key := r.keys.Document(propertyID)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.IndexDocument{}, fmt.Errorf("document %s: %w", propertyID, domain.ErrNotFound)
		}
		return domain.IndexDocument{}, fmt.Errorf("get %s: %v: %w", key, err, domain.ErrIndexUnavailable)
	}
	return domain.IndexDocument{ID: propertyID, Fields: fields}, nil
}

// Exists reports whether a property is indexed.
func (r *Repo) Exists(ctx context.Context, propertyID string) (bool, error) {
	ok, err := r.store.Exists(ctx, r.keys.Document(propertyID))
	if err != nil {
		return false, fmt.Errorf("exists %s: %v: %w", propertyID, err, domain.ErrIndexUnavailable)
	}
	return ok, nil
}

// schema defines the property index. City tags use "|" as separator because
// city values contain commas ("Boulder, CO"); amenities use the default ",".
func schema(name, prefix string) (*db.IndexDefinition, error) {
	return db.NewIndex(name).
		Prefix(prefix).
		NumericSortable(domain.FieldPrice).
		Numeric(domain.FieldBedrooms).
		Numeric(domain.FieldBathrooms).
		Tag(domain.FieldPropertyType, ",").
		Tag(domain.FieldCity, "|").
		Geo(domain.FieldLocation).
		Numeric(domain.FieldYearBuilt).
		Numeric(domain.FieldAreaSqft).
		Tag(domain.FieldAmenities, ",").
		NumericSortable(domain.FieldVastuScore).
		NumericSortable(domain.FieldClimateRisk).
		Numeric(domain.FieldViews).
		Numeric(domain.FieldFavorites).
		Numeric(domain.FieldLastSyncedAt).
		Build()
}
