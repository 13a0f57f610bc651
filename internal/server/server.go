// Package server hosts the streamable MCP endpoint alongside health,
// version and metrics routes on a chi router.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/keapmcp/keap-mcp/internal/config"
	apperrors "github.com/keapmcp/keap-mcp/internal/errors"
	"github.com/keapmcp/keap-mcp/internal/observability"
	"github.com/keapmcp/keap-mcp/internal/server/handlers"
	servermw "github.com/keapmcp/keap-mcp/internal/server/middleware"
)

// Server is the HTTP front of keap-mcp.
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig

	health     *handlers.HealthManager
	mcpPath    string
	mcpHandler http.Handler
	adminToken string
	profiler   bool
}

// Option configures a Server.
type Option func(*Server)

// WithMCPHandler mounts the streamable MCP transport at path.
func WithMCPHandler(path string, h http.Handler) Option {
	return func(s *Server) {
		s.mcpPath = path
		s.mcpHandler = h
	}
}

// WithHealthManager serves the health endpoints from hm.
func WithHealthManager(hm *handlers.HealthManager) Option {
	return func(s *Server) {
		s.health = hm
	}
}

// WithAdminToken enables POST /admin/signal guarded by token.
func WithAdminToken(token string) Option {
	return func(s *Server) {
		s.adminToken = token
	}
}

// WithProfiler mounts net/http/pprof under /debug.
func WithProfiler(enabled bool) Option {
	return func(s *Server) {
		s.profiler = enabled
	}
}

// New builds a server for cfg. Routes are registered immediately; nothing
// listens until Start or Serve.
func New(cfg config.ServerConfig, opts ...Option) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		HandleError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{router: r, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.health == nil {
		s.health = handlers.NewHealthManager(handlers.AppVersion)
	}

	handlers.SetHTTPErrorResponder(HandleError)
	s.registerRoutes()

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Addr returns host:port from the configuration.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Start listens on Addr and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. http.ErrServerClosed is reported as nil.
func (s *Server) Serve(ln net.Listener) error {
	s.health.MarkStarted()

	if logger := observability.ServerLogger; logger != nil {
		logger.Info("Starting HTTP server",
			zap.String("addr", ln.Addr().String()),
			zap.String("mcp_path", s.mcpPath))
	}

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if logger := observability.ServerLogger; logger != nil {
		logger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Health returns the health manager backing /health.
func (s *Server) Health() *handlers.HealthManager {
	return s.health
}
