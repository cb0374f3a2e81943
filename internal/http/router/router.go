package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/nusa-erp/erp-api/internal/auth"
	"github.com/nusa-erp/erp-api/internal/config"
	"github.com/nusa-erp/erp-api/internal/database"
	"github.com/nusa-erp/erp-api/internal/http/handler"
	"github.com/nusa-erp/erp-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/nusa-erp/erp-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	db              *gorm.DB
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	contactHandler  *handler.ContactHandler
	documentHandler *handler.DocumentHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	contactHandler *handler.ContactHandler,
	documentHandler *handler.DocumentHandler,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		contactHandler:  contactHandler,
		documentHandler: documentHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Get("/health/db", rt.databaseHealth)
	r.Get("/health/ready", rt.readiness)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(chimw.Timeout(timeout))
		}
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.LimitByActor)

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", rt.contactHandler.List)
			r.Post("/", rt.contactHandler.Create)
			r.Get("/{id}", rt.contactHandler.GetByID)
			r.Put("/{id}", rt.contactHandler.Update)
			r.Delete("/{id}", rt.contactHandler.Delete)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", rt.documentHandler.List)
			r.Post("/", rt.documentHandler.Create)
			r.Get("/statistics", rt.documentHandler.Statistics)
			r.Get("/export", rt.documentHandler.Export)
			r.With(rt.authMiddleware.RequireAdmin).Post("/expire", rt.documentHandler.Expire)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", rt.documentHandler.GetByID)
				r.Put("/", rt.documentHandler.Update)
				r.Delete("/", rt.documentHandler.Delete)
				r.Get("/activities", rt.documentHandler.Activities)
				r.Get("/revisions", rt.documentHandler.Revisions)

				r.Post("/submit", rt.documentHandler.Submit)
				r.Post("/cancel", rt.documentHandler.Cancel)
				r.Post("/revise", rt.documentHandler.Revise)
				r.Post("/duplicate", rt.documentHandler.Duplicate)

				// Decisions need an approver
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(auth.RoleApprover))
					r.Post("/approve", rt.documentHandler.Approve)
					r.Post("/reject", rt.documentHandler.Reject)
					r.Post("/convert", rt.documentHandler.Convert)
				})
			})
		})
	})

	return r
}

// databaseHealth is the readiness probe with pool statistics
func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := database.HealthCheckWithStats(ctx, rt.db)
	if err != nil {
		rt.logger.Error("database health check failed", zap.Error(err))
		writeHealth(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	writeHealth(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats":   stats,
	})
}

// readiness checks every dependency the API needs to serve traffic
func (rt *Router) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]interface{})
	status, code := "healthy", http.StatusOK

	if err := database.HealthCheck(ctx, rt.db); err != nil {
		rt.logger.Error("database health check failed", zap.Error(err))
		checks["database"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
		status, code = "unhealthy", http.StatusServiceUnavailable
	} else {
		checks["database"] = map[string]interface{}{"status": "healthy"}
	}

	writeHealth(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

func writeHealth(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
