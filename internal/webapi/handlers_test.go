package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spboyer/simarchive/internal/models"
)

// mockStore implements BuildStore for testing.
type mockStore struct {
	builds   map[string]*models.History
	listErr  error
	getErr   error
	trendErr error
}

func newMockStore() *mockStore {
	return &mockStore{builds: make(map[string]*models.History)}
}

func (m *mockStore) addBuild(h *models.History) {
	m.builds[h.BuildID] = h
}

func (m *mockStore) ListBuilds(_ context.Context, sortField, order string) ([]BuildSummary, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	builds := make([]BuildSummary, 0, len(m.builds))
	for _, h := range m.builds {
		builds = append(builds, summarize(h))
	}
	sortBuilds(builds, sortField, order)
	return builds, nil
}

func (m *mockStore) GetBuild(_ context.Context, id string) (*models.History, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	h, ok := m.builds[id]
	if !ok {
		return nil, ErrBuildNotFound
	}
	return h, nil
}

func (m *mockStore) Trend(_ context.Context, simulation string) ([]TrendPoint, error) {
	if m.trendErr != nil {
		return nil, m.trendErr
	}
	points := []TrendPoint{}
	for _, h := range m.builds {
		for _, r := range h.RecordsFor(simulation) {
			points = append(points, TrendPoint{BuildID: h.BuildID, RunID: r.RunID})
		}
	}
	return points, nil
}

func sampleHistory(id string, updated time.Time, sims ...string) *models.History {
	h := &models.History{BuildID: id, CreatedAt: updated.Add(-time.Minute), UpdatedAt: updated}
	for i, sim := range sims {
		h.Records = append(h.Records, models.SummaryRecord{
			Simulation: sim,
			RunID:      "2026021815300" + string(rune('0'+i)),
			Stats: models.GlobalStats{
				NumberOfRequests: models.StatValue{Total: 100, OK: 98, KO: 2},
				MeanResponseTime: models.StatValue{Total: 120},
				Percentiles3:     models.StatValue{Total: 310},
			},
			ArchiveDir: "/builds/" + id + "/simulations/" + sim,
			ArchivedAt: updated,
		})
	}
	return h
}

func serve(t *testing.T, store BuildStore, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	RegisterRoutes(mux, store)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := serve(t, newMockStore(), "/api/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if resp.Version == "" {
		t.Error("expected non-empty version")
	}
}

func TestHandleBuildsEmpty(t *testing.T) {
	rec := serve(t, newMockStore(), "/api/builds")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}

func TestHandleBuildsWithSort(t *testing.T) {
	store := newMockStore()
	ts := time.Date(2026, 2, 18, 15, 30, 0, 0, time.UTC)
	store.addBuild(sampleHistory("9", ts.Add(2*time.Hour), "checkout"))
	store.addBuild(sampleHistory("10", ts, "checkout", "search", "checkout"))
	store.addBuild(sampleHistory("11", ts.Add(time.Hour), "search", "login"))

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"9", "10", "11"}},
		{"?sort=id&order=desc", []string{"11", "10", "9"}},
		{"?sort=updated", []string{"10", "11", "9"}},
		{"?sort=updated&order=desc", []string{"9", "11", "10"}},
		{"?sort=records&order=desc", []string{"10", "11", "9"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := serve(t, store, "/api/builds"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}

			var builds []BuildSummary
			if err := json.NewDecoder(rec.Body).Decode(&builds); err != nil {
				t.Fatal(err)
			}
			if len(builds) != len(tt.want) {
				t.Fatalf("expected %d builds, got %d", len(tt.want), len(builds))
			}
			for i, id := range tt.want {
				if builds[i].ID != id {
					t.Errorf("builds[%d].ID = %q, want %q", i, builds[i].ID, id)
				}
			}
		})
	}
}

func TestHandleBuildsSummaryFields(t *testing.T) {
	store := newMockStore()
	store.addBuild(sampleHistory("10", time.Now(), "checkout", "search", "checkout"))

	rec := serve(t, store, "/api/builds")

	var builds []BuildSummary
	if err := json.NewDecoder(rec.Body).Decode(&builds); err != nil {
		t.Fatal(err)
	}
	b := builds[0]
	if b.Records != 3 {
		t.Errorf("Records = %d, want 3", b.Records)
	}
	if b.TotalRequests != 300 || b.FailedRequests != 6 {
		t.Errorf("requests = %d/%d, want 300/6", b.TotalRequests, b.FailedRequests)
	}
	if len(b.Simulations) != 2 || b.Simulations[0] != "checkout" || b.Simulations[1] != "search" {
		t.Errorf("Simulations = %v", b.Simulations)
	}
}

func TestHandleBuildsBadQuery(t *testing.T) {
	for _, q := range []string{"?sort=tokens", "?order=sideways"} {
		rec := serve(t, newMockStore(), "/api/builds"+q)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestHandleBuildDetail(t *testing.T) {
	store := newMockStore()
	store.addBuild(sampleHistory("42", time.Now(), "checkout"))

	rec := serve(t, store, "/api/builds/42")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var h models.History
	if err := json.NewDecoder(rec.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.BuildID != "42" || len(h.Records) != 1 {
		t.Errorf("unexpected history: %+v", h)
	}
	if h.Records[0].Stats.NumberOfRequests.Total != 100 {
		t.Errorf("stats not round-tripped: %+v", h.Records[0].Stats)
	}
}

func TestHandleBuildDetailNotFound(t *testing.T) {
	rec := serve(t, newMockStore(), "/api/builds/missing")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != http.StatusNotFound || resp.Error == "" {
		t.Errorf("unexpected error response: %+v", resp)
	}
}

func TestHandleTrend(t *testing.T) {
	store := newMockStore()
	store.addBuild(sampleHistory("1", time.Now(), "checkout", "search"))

	rec := serve(t, store, "/api/trend?simulation=checkout")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp TrendResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Simulation != "checkout" || len(resp.Points) != 1 {
		t.Errorf("unexpected trend: %+v", resp)
	}

	rec = serve(t, store, "/api/trend")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without simulation, got %d", rec.Code)
	}
}

func TestStoreErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	store := newMockStore()
	store.listErr = boom
	store.getErr = boom
	store.trendErr = boom

	for _, target := range []string{"/api/builds", "/api/builds/1", "/api/trend?simulation=x"} {
		rec := serve(t, store, target)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", target, rec.Code)
		}
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantCode   int
		wantHeader string
	}{
		{"same origin only", nil, http.MethodGet, "http://evil.example", http.StatusOK, ""},
		{"allowed origin", []string{"http://localhost:5173"}, http.MethodGet, "http://localhost:5173", http.StatusOK, "http://localhost:5173"},
		{"other origin", []string{"http://localhost:5173"}, http.MethodGet, "http://evil.example", http.StatusOK, ""},
		{"preflight", []string{"http://localhost:5173"}, http.MethodOptions, "http://localhost:5173", http.StatusNoContent, "http://localhost:5173"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/builds", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			CORSMiddleware(next, tt.allowed...).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantHeader {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}
