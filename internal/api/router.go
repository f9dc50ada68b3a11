package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/api/handlers"
	apimiddleware "github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/api/middleware"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/config"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware. No request timeout here: the scan endpoint runs
	// synchronously and enforces its own deadline.
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Health check
	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	// API v1 routes
	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/accounts/{id}", func(acct chi.Router) {
			acct.Post("/scan", r.handlers.Scans.Trigger)
			acct.Get("/findings", r.handlers.Findings.ListByAccount)
		})

		api.Route("/orgs/{id}", func(org chi.Router) {
			org.Get("/gaps", r.handlers.Gaps.Get)
			org.Get("/risks", r.handlers.Risks.ListByOrg)
		})
	})

	return router
}
