package index

import (
	"context"
	"testing"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/keys"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn        func(ctx context.Context, key string, fields map[string]string) error
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) []db.DocResult
	hsetCASFn     func(ctx context.Context, key string, expectedRev int64, fields map[string]string) error
	getRevisionFn func(ctx context.Context, key string) (int64, error)
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	delFn         func(ctx context.Context, key string) error
	existsFn      func(ctx context.Context, key string) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) []db.DocResult {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	results := make([]db.DocResult, len(items))
	for i, item := range items {
		results[i].Key = item.Key
	}
	return results
}

func (m *mockStore) HSetCAS(ctx context.Context, key string, expectedRev int64, fields map[string]string) error {
	if m.hsetCASFn != nil {
		return m.hsetCASFn(ctx, key, expectedRev, fields)
	}
	return nil
}

func (m *mockStore) GetRevision(ctx context.Context, key string) (int64, error) {
	if m.getRevisionFn != nil {
		return m.getRevisionFn(ctx, key)
	}
	return 1, nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, keys.NewScheme("test:"), 3)
	return repo, ms
}
