// Package memory provides a brute-force in-memory db.Store used by tests and
// local development. It mirrors the semantics of the redis backend closely
// enough that the layers above cannot tell them apart.
package memory

import (
	"context"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
)

var _ db.Store = (*Store)(nil)

const revField = "__rev"

type kvEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Store implements db.Store with plain maps.
type Store struct {
	mu      sync.RWMutex
	docs    map[string]map[string]string
	revs    map[string]int64
	kv      map[string]kvEntry
	indexes map[string]*db.IndexDefinition

	// now is swappable for TTL tests.
	now func() time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		docs:    make(map[string]map[string]string),
		revs:    make(map[string]int64),
		kv:      make(map[string]kvEntry),
		indexes: make(map[string]*db.IndexDefinition),
		now:     time.Now,
	}
}

// SetClock replaces the store's clock (test-only).
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// HSet writes the given fields and bumps the document revision.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[key]
	if !ok {
		doc = make(map[string]string, len(fields))
		s.docs[key] = doc
	}
	maps.Copy(doc, fields)
	s.revs[key]++
	return nil
}

// HSetMulti writes many documents, reporting per-document outcomes.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) []db.DocResult {
	results := make([]db.DocResult, len(items))
	for i, item := range items {
		results[i].Key = item.Key
		if err := s.HSet(ctx, item.Key, item.Fields); err != nil {
			results[i].Err = err
		}
	}
	return results
}

// HSetCAS writes fields only if the document revision still equals expectedRev.
func (s *Store) HSetCAS(_ context.Context, key string, expectedRev int64, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[key]
	if !ok {
		return db.ErrKeyNotFound
	}
	if s.revs[key] != expectedRev {
		return db.ErrRevisionMismatch
	}
	maps.Copy(doc, fields)
	s.revs[key]++
	return nil
}

// GetRevision returns the current document revision.
func (s *Store) GetRevision(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.docs[key]; !ok {
		return 0, db.ErrKeyNotFound
	}
	return s.revs[key], nil
}

// HGetAll returns a copy of all document fields.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	out := make(map[string]string, len(doc))
	maps.Copy(out, doc)
	delete(out, revField)
	return out, nil
}

// Del removes a document.
func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, key)
	delete(s.revs, key)
	return nil
}

// Exists reports whether a document is present.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.docs[key]
	return ok, nil
}

// Get retrieves a value by key, respecting expiry.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		return nil, db.ErrKeyNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores a value at the given key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	s.kv[key] = kvEntry{value: v}
	return nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	s.kv[key] = kvEntry{value: v, expiresAt: s.now().Add(ttl)}
	return nil
}

// CreateIndex registers an index definition.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	cp := *def
	s.indexes[def.Name] = &cp
	return nil
}

// DropIndex removes the index but keeps documents.
func (s *Store) DropIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)
	return nil
}

// IndexExists reports whether an index definition is registered.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.indexes[name]
	return ok, nil
}

func keyMatchesPrefixes(key string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
