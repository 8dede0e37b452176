package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/carepredict/authapi/internal/handler"
	"github.com/carepredict/authapi/internal/middleware"
)

// RouterConfig holds everything the router needs.
type RouterConfig struct {
	Logger *slog.Logger

	Handler        *handler.Handler
	Health         *handler.HealthHandler
	Auth           *handler.AuthHandler
	Metrics        *handler.MetricsHandler
	Sessions       middleware.SessionResolver
	IsDevelopment  bool
	AllowedOrigins []string
	MaxBodySize    int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.AllowedOrigins

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger, cfg.IsDevelopment))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(corsCfg))
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
	}

	// Probes and metrics (no auth required)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Get("/metrics", cfg.Metrics.Metrics)
	}

	r.Get("/", cfg.Handler.Root)
	r.Get("/openapi.yaml", cfg.Handler.OpenAPI)

	r.Post("/signup", cfg.Auth.Signup)
	r.Post("/login", cfg.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger:   cfg.Logger,
			Sessions: cfg.Sessions,
		}))
		r.Get("/users/me", cfg.Auth.Me)
	})

	r.NotFound(cfg.Handler.NotFound)
	r.MethodNotAllowed(cfg.Handler.MethodNotAllowed)

	return r
}
