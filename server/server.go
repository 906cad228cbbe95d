// Package server provides HTTP server management and lifecycle handling for
// the medication catalog: router setup, the middleware stack, route tables
// and graceful shutdown.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/medication-catalog/config"
	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/interfaces"
	"github.com/giygas/medication-catalog/logging"
	"github.com/giygas/medication-catalog/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// rateLimiterCleanupInterval is how often idle client buckets are dropped.
const rateLimiterCleanupInterval = 30 * time.Minute

// SessionMiddleware attaches per-browser state to each request.
type SessionMiddleware interface {
	Middleware(next http.Handler) http.Handler
}

// referencePaths maps each editable classification table to its page.
var referencePaths = []struct {
	kind entities.Kind
	path string
}{
	{entities.KindCategory, "/categories"},
	{entities.KindDrugType, "/drug-types"},
	{entities.KindManufacturer, "/manufacturers"},
}

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	router      chi.Router
	handler     interfaces.HTTPHandler
	sessions    SessionMiddleware
	rateLimiter *RateLimiter
	config      *config.Config
	stop        chan struct{}
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler, sessions SessionMiddleware) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:        router,
			Addr:           cfg.Address + ":" + cfg.Port,
			ReadTimeout:    30 * time.Second, // spreadsheet uploads
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: int(cfg.MaxHeaderSize),
		},
		router:      router,
		handler:     handler,
		sessions:    sessions,
		rateLimiter: NewRateLimiter(bucketRate, bucketCapacity),
		config:      cfg,
		stop:        make(chan struct{}),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.DefaultLogger()))
	s.router.Use(metrics.Metrics)
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.rateLimiter.Handler)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	h := s.handler

	// Pages carry a session for flashes and delete confirmations.
	s.router.Group(func(r chi.Router) {
		if s.sessions != nil {
			r.Use(s.sessions.Middleware)
		}

		r.Get("/", h.Home)
		r.Get("/medications", h.ListMedications)
		r.Get("/medications/new", h.NewMedication)
		r.Post("/medications", h.CreateMedication)
		r.Get("/medications/{id}", h.ShowMedication)
		r.Post("/medications/{id}/delete", h.DeleteMedication)

		for _, ref := range referencePaths {
			r.Get(ref.path, h.ListReferences(ref.kind))
			r.Post(ref.path, h.CreateReference(ref.kind))
			r.Post(ref.path+"/{id}/delete", h.DeleteReference(ref.kind))
		}

		r.Get("/age-weight", h.AgeWeight)
		r.Get("/statistics", h.Statistics)
		r.Get("/database", h.Database)
		r.Post("/database/{kind}/delete-all", h.DeleteAll)
		r.Get("/import", h.ImportPage)
		r.Post("/import", h.ImportPreview)
		r.Post("/import/ingest", h.ImportIngest)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/medications", h.APIListMedications)
		r.Get("/medications/{id}", h.APIGetMedication)
		r.Patch("/medications/{id}", h.APIUpdateMedication)
		r.Get("/statistics", h.APIStatistics)
		r.Get("/age-weight", h.APIAgeWeight)
	})

	s.router.Get("/health", h.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	go s.rateLimiter.runCleanup(rateLimiterCleanupInterval, s.stop)

	logging.Info("Starting server", "address", "http://"+s.server.Addr, "env", s.config.Env.String())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	select {
	case <-s.stop:
	default:
		close(s.stop)
	}

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

// Handler exposes the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}
