// Package db defines the index store capability consumed by the indexing and
// query layers. Any search-capable document store can fulfil it; the redis
// subpackage is the production backend, the memory subpackage serves tests
// and local development.
package db

import (
	"context"
	"time"
)

// Store is the full index store facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	DocumentStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for a bulk write.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// DocResult reports the outcome of one document in a bulk write. A failed
// document never fails the batch as a whole.
type DocResult struct {
	Key string
	Err error
}

// DocumentStore provides document write/read operations. Every document
// carries a store-managed revision used for optimistic concurrency; the
// revision is invisible to readers.
type DocumentStore interface {
	// HSet writes the given fields and bumps the document revision.
	HSet(ctx context.Context, key string, fields map[string]string) error
	// HSetMulti writes many documents, reporting per-document outcomes.
	HSetMulti(ctx context.Context, items []HashSetItem) []DocResult
	// HSetCAS writes fields only if the document revision still equals
	// expectedRev. Returns ErrRevisionMismatch otherwise, ErrKeyNotFound
	// if the document vanished.
	HSetCAS(ctx context.Context, key string, expectedRev int64, fields map[string]string) error
	// GetRevision returns the current document revision.
	GetRevision(ctx context.Context, key string) (int64, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides plain key-value operations, used for sync watermarks and
// known-id snapshots.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides search index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides read queries over a search index.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
	Count(ctx context.Context, q *CountQuery) (int, error)
	GroupCount(ctx context.Context, q *GroupCountQuery) (map[string]int, error)
}
