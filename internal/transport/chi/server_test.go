package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	dbmemory "github.com/Srujan0798/Rest-iN-U-sub002/internal/db/memory"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/domain/search/request"
	indexrepo "github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/index"
	"github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/keys"
	searchrepo "github.com/Srujan0798/Rest-iN-U-sub002/internal/repository/search"
	clusteruc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/cluster"
	healthuc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/health"
	searchuc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/search"
	similaruc "github.com/Srujan0798/Rest-iN-U-sub002/internal/usecase/similar"
)

type fakeTriggerer struct {
	triggered []string
	err       error
}

func (f *fakeTriggerer) Trigger(_ context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	f.triggered = append(f.triggered, name)
	return nil
}

// testRouter wires the full read path over the in-memory store, seeded with a
// small Boulder fixture.
func testRouter(t *testing.T, trig Triggerer) http.Handler {
	t.Helper()

	store := dbmemory.NewStore()
	scheme := keys.NewScheme("test:")
	writer := indexrepo.New(store, scheme, 3)
	reader := searchrepo.New(store, scheme)

	if err := writer.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}

	seed := []domain.Property{
		{ID: "p-1", Title: "Bungalow", Price: 300000, Bedrooms: 3, PropertyType: "house",
			City: "Boulder, CO", Latitude: 40.01, Longitude: -105.27, VastuScore: 70,
			UpdatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "p-2", Title: "Cottage", Price: 350000, Bedrooms: 3, PropertyType: "house",
			City: "Boulder, CO", Latitude: 40.02, Longitude: -105.26, VastuScore: 65,
			UpdatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "p-3", Title: "Loft", Price: 800000, Bedrooms: 2, PropertyType: "condo",
			City: "Denver, CO", Latitude: 39.74, Longitude: -104.99, VastuScore: 40,
			UpdatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
	for i := range seed {
		if err := writer.Upsert(context.Background(), domain.NewIndexDocument(&seed[i])); err != nil {
			t.Fatalf("seed %s: %v", seed[i].ID, err)
		}
	}

	searchSvc := searchuc.New(reader, nil, nil, nil, searchuc.Config{
		PriceBuckets: []float64{250000, 500000, 1000000},
		VastuBuckets: []float64{50, 75},
	})
	similarSvc := similaruc.New(writer, reader)
	clusterSvc := clusteruc.New(reader)
	healthSvc := healthuc.New(store, nil)

	srv := NewServer(searchSvc, similarSvc, clusterSvc, healthSvc,
		trig, nil, request.Limits{}, zap.NewNop())

	r := gochi.NewRouter()
	srv.Routes(r)
	return r
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSearchEndpoint(t *testing.T) {
	h := testRouter(t, nil)

	w := postJSON(t, h, "/api/v1/search",
		`{"location":{"type":"city","value":"Boulder, CO"},"pagination":{"page":1,"limit":10}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		TotalResults int `json:"total_results"`
		TotalPages   int `json:"total_pages"`
		Properties   []struct {
			PropertyID string `json:"property_id"`
		} `json:"properties"`
		Facets struct {
			PropertyTypes map[string]int `json:"property_types"`
		} `json:"facets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalResults != 2 {
		t.Errorf("total_results = %d, want 2 (Denver excluded)", resp.TotalResults)
	}
	if resp.TotalPages != 1 {
		t.Errorf("total_pages = %d, want 1", resp.TotalPages)
	}
	if resp.Facets.PropertyTypes["house"] != 2 {
		t.Errorf("facets.property_types = %v", resp.Facets.PropertyTypes)
	}
}

func TestSearchRejectsUnknownFields(t *testing.T) {
	h := testRouter(t, nil)

	w := postJSON(t, h, "/api/v1/search", `{"pagination":{"page":1},"sorting":{"field":"price"}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSearchRejectsInvalidFilters(t *testing.T) {
	h := testRouter(t, nil)

	w := postJSON(t, h, "/api/v1/search",
		`{"filters":{"vastu_score_min":250}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Code  string `json:"code"`
		Field string `json:"field"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Code != "validation_failed" {
		t.Errorf("code = %q", resp.Code)
	}
	if resp.Field != "filters.vastu_score_min" {
		t.Errorf("field = %q", resp.Field)
	}
}

func TestSimilarEndpoint(t *testing.T) {
	h := testRouter(t, nil)

	w := postJSON(t, h, "/api/v1/search/similar", `{"property_id":"p-1","count":5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		ReferenceProperty struct {
			PropertyID string `json:"property_id"`
		} `json:"reference_property"`
		SimilarProperties []struct {
			PropertyID string   `json:"property_id"`
			Reasons    []string `json:"reasons"`
		} `json:"similar_properties"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ReferenceProperty.PropertyID != "p-1" {
		t.Errorf("reference = %q", resp.ReferenceProperty.PropertyID)
	}
	for _, sp := range resp.SimilarProperties {
		if sp.PropertyID == "p-1" {
			t.Error("reference listed as similar to itself")
		}
		if len(sp.Reasons) == 0 {
			t.Errorf("property %s has no reasons", sp.PropertyID)
		}
	}
}

func TestSimilarUnknownProperty(t *testing.T) {
	h := testRouter(t, nil)

	w := postJSON(t, h, "/api/v1/search/similar", `{"property_id":"p-missing"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body %s", w.Code, w.Body.String())
	}
}

func TestClustersEndpoint(t *testing.T) {
	h := testRouter(t, nil)

	w := postJSON(t, h, "/api/v1/search/clusters", `{"zoom":10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Clusters []struct {
			Count int `json:"count"`
		} `json:"clusters"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	sum := 0
	for _, c := range resp.Clusters {
		sum += c.Count
	}
	if sum != 3 {
		t.Errorf("cluster counts sum to %d, want 3", sum)
	}
}

func TestSyncTriggerEndpoint(t *testing.T) {
	trig := &fakeTriggerer{}
	h := testRouter(t, trig)

	w := postJSON(t, h, "/internal/sync/incremental", ``)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(trig.triggered) != 1 || trig.triggered[0] != "incremental" {
		t.Errorf("triggered = %v", trig.triggered)
	}
}

func TestSyncTriggerUnknownPass(t *testing.T) {
	trig := &fakeTriggerer{err: domain.ErrUnknownPass}
	h := testRouter(t, trig)

	w := postJSON(t, h, "/internal/sync/compact", ``)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestSyncTriggerRunningPass(t *testing.T) {
	trig := &fakeTriggerer{err: domain.ErrPassRunning}
	h := testRouter(t, trig)

	w := postJSON(t, h, "/internal/sync/full", ``)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Checks["index_store"] != "ok" {
		t.Errorf("checks = %v", resp.Checks)
	}
}
