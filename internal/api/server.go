// Package api exposes the valuation pipeline over HTTP for the questionnaire
// frontend.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-api/internal/monitoring"
	"github.com/sells-group/valuation-api/internal/store"
	"github.com/sells-group/valuation-api/internal/valuation"
	"github.com/sells-group/valuation-api/pkg/salesforce"
)

// Server bundles the dependencies behind the HTTP handlers.
type Server struct {
	store     store.Store
	calc      *valuation.Calculator
	collector *monitoring.Collector
	sf        salesforce.Client
	log       *zap.Logger

	rateLimitRPS   float64
	rateLimitBurst int
	allowedOrigins []string
}

// ServerOption configures optional server dependencies.
type ServerOption func(*Server)

// WithSalesforce enables asynchronous CRM push for captured leads.
func WithSalesforce(c salesforce.Client) ServerOption {
	return func(s *Server) { s.sf = c }
}

// WithRateLimit sets the per-client request rate limit.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		s.rateLimitRPS = rps
		s.rateLimitBurst = burst
	}
}

// WithAllowedOrigins sets the CORS allow-list.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// NewServer creates an API server over the given store and calculator.
func NewServer(st store.Store, calc *valuation.Calculator, opts ...ServerOption) *Server {
	s := &Server{
		store:          st,
		calc:           calc,
		collector:      monitoring.NewCollector(st),
		log:            zap.L(),
		rateLimitRPS:   10,
		rateLimitBurst: 20,
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi route tree with middleware applied.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.rateLimiter())

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/valuations", s.handleCreateValuation)
		r.Get("/valuations/{id}", s.handleGetValuation)
		r.Post("/leads", s.handleCreateLead)
		r.Post("/events", s.handleCreateEvent)
		r.Get("/metrics/funnel", s.handleFunnel)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
