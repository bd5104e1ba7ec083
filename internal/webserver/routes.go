package webserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/spboyer/simarchive/internal/history"
	"github.com/spboyer/simarchive/internal/webapi"
)

// registerRoutes mounts the history API. Unknown /api paths get a JSON 404.
func registerRoutes(mux *http.ServeMux, store history.Store) {
	webapi.RegisterRoutes(mux, webapi.NewHistoryStore(store))
	mux.HandleFunc("/", handleNotFound)
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"not found","code":404}` + "\n")) //nolint:errcheck
}

func corsHandler(next http.Handler, origins []string) http.Handler {
	return webapi.CORSMiddleware(next, origins...)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
