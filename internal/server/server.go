package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	cfg        Config
	logger     *slog.Logger
	metrics    *Metrics
	httpServer *http.Server
}

// New wires the routes for cfg. A nil logger discards output.
func New(cfg Config, logger *slog.Logger) *Server {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: NewMetrics(cfg.Build),
	}

	r := chi.NewRouter()

	// requestID -> logging -> recover -> security headers -> routes
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger, s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(securityHeadersMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HandleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Method(http.MethodPost, "/upload", newUploadHandler(cfg, s.metrics))
	r.With(middleware.Compress(5, "application/json")).Get("/files", s.listFiles)
	r.With(middleware.Compress(5, "text/markdown")).Get("/files/{name}/markdown", s.convertUpload)
	r.Get(cfg.PublicPrefix+"/{name}", s.serveUpload)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
