package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/walletscope/internal/transport/httpapi/handler"
	"github.com/kislikjeka/walletscope/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger            *logger.Logger
	AllowedOrigins    []string
	SessionHandler    *handler.SessionHandler
	DashboardHandler  *handler.DashboardHandler
	ReportHandler     *handler.ReportHandler
	AccountHandler    *handler.AccountHandler
	HealthHandler     *handler.HealthHandler
	SessionMiddleware func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.RateLimit())

	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.SessionHandler != nil {
			r.Get("/session/methods", cfg.SessionHandler.GetMethods)
			r.Post("/session/challenge", cfg.SessionHandler.CreateChallenge)
			r.Post("/session", cfg.SessionHandler.Login)
		}

		if cfg.ReportHandler != nil {
			r.Post("/reports", cfg.ReportHandler.CreateReport)
		}

		// Protected routes
		if cfg.SessionMiddleware != nil {
			r.Group(func(r chi.Router) {
				r.Use(cfg.SessionMiddleware)

				if cfg.SessionHandler != nil {
					r.Get("/session", cfg.SessionHandler.GetSession)
					r.Delete("/session", cfg.SessionHandler.Logout)
				}

				if cfg.DashboardHandler != nil {
					r.Get("/dashboard", cfg.DashboardHandler.GetDashboard)
					r.Get("/transfers", cfg.DashboardHandler.GetTransfers)
				}

				if cfg.AccountHandler != nil {
					r.Get("/account", cfg.AccountHandler.GetAccount)
				}
			})
		}
	})

	return r
}
