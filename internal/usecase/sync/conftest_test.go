package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/Srujan0798/Rest-iN-U-sub002/internal/db"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/filter"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/result"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/index"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/keys"
	sourcemem "github.com/Srujan0798/Rest-iN-U-sub002/internal/source/memory"
)

// mockKV is a map-backed KV store for watermark and snapshot tests.
type mockKV struct {
	mu   gosync.Mutex
	data map[string][]byte
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string][]byte)}
}

func (m *mockKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("key %s: %w", key, db.ErrKeyNotFound)
	}
	return v, nil
}

func (m *mockKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// mockWriter records index writes.
type mockWriter struct {
	mu       gosync.Mutex
	upserts  []domain.IndexDocument
	partials map[string]map[string]string
	deletes  []string

	upsertErr  error
	partialErr error
}

func newMockWriter() *mockWriter {
	return &mockWriter{partials: make(map[string]map[string]string)}
}

func (m *mockWriter) Upsert(_ context.Context, doc domain.IndexDocument) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, doc)
	return nil
}

func (m *mockWriter) BulkUpsert(ctx context.Context, docs []domain.IndexDocument) []index.DocOutcome {
	outcomes := make([]index.DocOutcome, len(docs))
	for i, doc := range docs {
		outcomes[i] = index.DocOutcome{PropertyID: doc.ID, Err: m.Upsert(ctx, doc)}
	}
	return outcomes
}

func (m *mockWriter) PartialUpdate(_ context.Context, propertyID string, fields map[string]string) error {
	if m.partialErr != nil {
		return m.partialErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partials[propertyID] = fields
	return nil
}

func (m *mockWriter) Delete(_ context.Context, propertyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, propertyID)
	return nil
}

func (m *mockWriter) upsertedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, len(m.upserts))
	for i, doc := range m.upserts {
		ids[i] = doc.ID
	}
	return ids
}

// mockScanner serves a fixed list of indexed ids to the full pass scan.
type mockScanner struct {
	ids []string
}

func (m *mockScanner) Find(_ context.Context, _ filter.Expression, _ *db.GeoFilter,
	offset, limit int) (int, []result.PropertyHit, error) {
	total := len(m.ids)
	if offset >= total {
		return total, nil, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	hits := make([]result.PropertyHit, 0, end-offset)
	for _, id := range m.ids[offset:end] {
		hits = append(hits, result.PropertyHit{PropertyID: id})
	}
	return total, hits, nil
}

// mockTaskQueue records enqueued tasks.
type mockTaskQueue struct {
	mu    gosync.Mutex
	tasks []domain.Task
}

func (m *mockTaskQueue) Enqueue(_ context.Context, task domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *mockTaskQueue) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *mockTaskQueue) byAction(action domain.Action) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, t := range m.tasks {
		if t.Action == action {
			ids = append(ids, t.EntityID)
		}
	}
	return ids
}

// mockInvalidator records cache invalidations.
type mockInvalidator struct {
	mu          gosync.Mutex
	invalidated []string
	purged      int
}

func (m *mockInvalidator) InvalidateProperty(propertyID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, propertyID)
}

func (m *mockInvalidator) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purged++
}

type syncFixture struct {
	src      *sourcemem.Source
	kv       *mockKV
	writer   *mockWriter
	scanner  *mockScanner
	queue    *mockTaskQueue
	results  *mockInvalidator
	detector *Detector
	svc      *Service
	now      time.Time
}

func newSyncFixture() *syncFixture {
	f := &syncFixture{
		src:     sourcemem.New(),
		kv:      newMockKV(),
		writer:  newMockWriter(),
		scanner: &mockScanner{},
		queue:   &mockTaskQueue{},
		results: &mockInvalidator{},
		now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	scheme := keys.NewScheme("test:")
	f.detector = NewDetector(f.src, f.kv, scheme, 5*time.Minute)
	f.svc = New(Config{
		BatchSize:       2,
		InterBatchDelay: time.Microsecond,
	}, f.src, f.writer, f.scanner, f.queue, f.detector, f.results, nil, zap.NewNop())
	f.svc.SetClock(func() time.Time { return f.now })
	return f
}

func property(id string, updatedAt time.Time) domain.Property {
	return domain.Property{
		ID:           id,
		Title:        "Listing " + id,
		Price:        500000,
		Bedrooms:     3,
		PropertyType: "house",
		City:         "Boulder, CO",
		Latitude:     40.01,
		Longitude:    -105.27,
		UpdatedAt:    updatedAt,
	}
}
