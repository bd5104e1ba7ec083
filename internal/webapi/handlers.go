// Package webapi serves build histories as a read-only JSON API.
package webapi

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	store BuildStore
}

// NewHandlers creates a new Handlers with the given store.
func NewHandlers(store BuildStore) *Handlers {
	return &Handlers{store: store}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleBuilds returns all builds with history, with optional sort/order
// query params.
func (h *Handlers) HandleBuilds(w http.ResponseWriter, r *http.Request) {
	sortField := r.URL.Query().Get("sort")
	order := r.URL.Query().Get("order")

	switch sortField {
	case "", "id", "updated", "records":
	default:
		writeError(w, http.StatusBadRequest, "sort must be one of id, updated, records")
		return
	}
	switch order {
	case "", "asc", "desc":
	default:
		writeError(w, http.StatusBadRequest, "order must be asc or desc")
		return
	}

	builds, err := h.store.ListBuilds(r.Context(), sortField, order)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, builds)
}

// HandleBuildDetail returns the full history of one build.
func (h *Handlers) HandleBuildDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "build id is required")
		return
	}

	detail, err := h.store.GetBuild(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrBuildNotFound) {
			writeError(w, http.StatusNotFound, "build not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// HandleTrend returns the trend points of one simulation.
func (h *Handlers) HandleTrend(w http.ResponseWriter, r *http.Request) {
	sim := r.URL.Query().Get("simulation")
	if sim == "" {
		writeError(w, http.StatusBadRequest, "simulation is required")
		return
	}

	points, err := h.store.Trend(r.Context(), sim)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, TrendResponse{Simulation: sim, Points: points})
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, store BuildStore) {
	h := NewHandlers(store)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/builds", h.HandleBuilds)
	mux.HandleFunc("GET /api/builds/{id}", h.HandleBuildDetail)
	mux.HandleFunc("GET /api/trend", h.HandleTrend)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
