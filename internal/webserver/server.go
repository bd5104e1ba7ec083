// Package webserver provides the HTTP server that exposes the history API.
package webserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spboyer/simarchive/internal/history"
)

// DefaultPort is used when Config.Port is zero.
const DefaultPort = 3000

const shutdownTimeout = 5 * time.Second

// Config holds the HTTP server configuration.
type Config struct {
	Port int
	// Host defaults to 127.0.0.1.
	Host string
	// HistoryDir is read by the API on every request.
	HistoryDir string
	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server wraps the HTTP server with configuration.
type Server struct {
	cfg    Config
	srv    *http.Server
	logger *slog.Logger
}

// New creates a new HTTP server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.HistoryDir == "" {
		return nil, errors.New("history directory is required")
	}

	mux := http.NewServeMux()
	registerRoutes(mux, history.NewFileStore(cfg.HistoryDir))

	return &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
			Handler:           withLogging(corsHandler(mux, cfg.AllowedOrigins), cfg.Logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// ListenAndServe listens on the configured address and serves until ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("HTTP server starting", "address", ln.Addr().String(), "history", s.cfg.HistoryDir)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "error", err)
		}
	}()

	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Handler returns the underlying http.Handler (useful for testing).
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
