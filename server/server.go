// Package server provides HTTP server management and lifecycle handling for
// the CareMate front-end: middleware, routes and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/caremate/caremate-web/config"
	"github.com/caremate/caremate-web/forms"
	"github.com/caremate/caremate-web/handlers"
	"github.com/caremate/caremate-web/interfaces"
	"github.com/caremate/caremate-web/logging"
	"github.com/caremate/caremate-web/metrics"
	"github.com/caremate/caremate-web/session"
	"github.com/caremate/caremate-web/views"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the components the server routes to
type Deps struct {
	Store    interfaces.PageStore
	Widget   interfaces.ChatWidget
	Health   interfaces.HealthChecker
	Renderer *views.Renderer
}

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	config  *config.Config
	pages   *handlers.PageHandler
	api     *handlers.APIHandler
	limiter *RateLimiter
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, deps Deps) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:           router,
			Addr:              cfg.Address + ":" + cfg.Port,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		router:  router,
		config:  cfg,
		pages:   handlers.NewPageHandler(deps.Store, deps.Widget, deps.Renderer),
		api:     handlers.NewAPIHandler(deps.Health, deps.Widget),
		limiter: NewRateLimiter(rateLimitRate, rateLimitCapacity),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.limiter.startCleanup(5 * time.Minute)

	return s
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	// X-Forwarded-For is only trusted behind the proxy
	if s.config.RequireProxy {
		s.router.Use(BlockDirectAccessMiddleware) // Put BEFORE RealIPMiddleware to see original RemoteAddr
		s.router.Use(RealIPMiddleware)
	}
	s.router.Use(logging.LoggingMiddleware(logging.Logger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.GetHead)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.limiter.Handler)
	s.router.Use(metrics.Metrics)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Pages carry the visitor cookie, monitoring and static routes do not
	s.router.Group(func(r chi.Router) {
		r.Use(session.VisitorMiddleware(s.config.IsProduction()))

		for _, route := range []string{forms.RouteHome, forms.RouteProfile, forms.RouteFood, forms.RouteMedicines, forms.RouteResults} {
			r.Get(route, s.pages.Page(route))
		}

		r.Post("/profile/save", s.pages.ProfileSave())
		r.Post("/profile/delete", s.pages.ProfileDelete())
		r.Post("/food/add", s.pages.FoodAdd())
		r.Post("/food/clear", s.pages.FoodClear())
		r.Post("/food/submit", s.pages.FoodSubmit())
		r.Post("/medicines/add", s.pages.MedicinesAdd())
		r.Post("/medicines/clear", s.pages.MedicinesClear())
		r.Post("/medicines/submit", s.pages.MedicinesSubmit())
		r.Post("/chat/open", s.pages.ChatOpen)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
		r.Get("/health", s.api.Ping)
		r.Get("/results", s.api.Results)
		r.Get("/chat/status", s.api.ChatStatus)
	})

	s.router.Get("/health", s.api.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Handle("/static/*", cacheStatic(views.StaticHandler()))
	s.router.NotFound(s.pages.NotFound)
}

// cacheStatic sets caching headers for the embedded assets
func cacheStatic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600") // 1 hour
		next.ServeHTTP(w, r)
	})
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	s.limiter.Stop()

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}
