// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/epaper/internal/news"
	"github.com/taibuivan/epaper/internal/platform/apperr"
	"github.com/taibuivan/epaper/internal/platform/config"
	"github.com/taibuivan/epaper/internal/platform/constants"
	"github.com/taibuivan/epaper/internal/platform/middleware"
	"github.com/taibuivan/epaper/internal/platform/respond"
	"github.com/taibuivan/epaper/internal/users/account"
	"github.com/taibuivan/epaper/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler; it returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; it returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles signup and login.
	Auth *auth.Handler

	// Account handles the caller's own profile.
	Account *account.Handler

	// News handles ingestion and the edition read side.
	News *news.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// The global request timeout is applied per route group rather than at the
// root, because the ingestion route runs under its own, longer deadline.
func NewServer(cfg *config.Config, log *slog.Logger, limiter *middleware.RateLimiter, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery())
	r.Use(limiter.Handler)
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)
	r.Use(middleware.Authenticate(verifier))

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	// # Infrastructure Endpoints
	r.Group(func(infra chi.Router) {
		infra.Use(chimw.Timeout(constants.GlobalRequestTimeout))
		infra.Get("/", banner)
		infra.Get("/health", h.Liveness)
		infra.Get("/ready", h.Readiness)
	})

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(group chi.Router) {
			group.Use(chimw.Timeout(constants.GlobalRequestTimeout))
			h.Auth.RegisterRoutes(group)
		})
		api.Route("/protected", func(group chi.Router) {
			group.Use(chimw.Timeout(constants.GlobalRequestTimeout))
			h.Account.RegisterRoutes(group)
		})
		api.Route("/news", h.News.RegisterRoutes)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Fallback Endpoints

type bannerResponse struct {
	Message   string            `json:"message"`
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// banner handles GET / and describes the API surface.
func banner(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, bannerResponse{
		Message: "eNewspaper Backend API",
		Name:    constants.AppName,
		Version: constants.AppVersion,
		Endpoints: map[string]string{
			"auth":      "/api/v1/auth",
			"protected": "/api/v1/protected",
			"news":      "/api/v1/news",
			"health":    "/health",
		},
	})
}

func notFound(writer http.ResponseWriter, request *http.Request) {
	respond.Error(writer, request, apperr.New("NOT_FOUND", "Route not found", http.StatusNotFound, nil))
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
