package server

import (
	"log/slog"
	"net/http"
	"time"

	"cinelight-api/internal/config"
	"cinelight-api/internal/domain"
	"cinelight-api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health     handler.HealthHandler
	Auth       handler.AuthHandler
	Users      handler.UserHandler
	Categories handler.CategoryHandler
	Equipment  handler.EquipmentHandler
	Bundles    handler.BundleHandler
	Quotations handler.QuotationHandler
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config, logger *slog.Logger, auth TokenAuthenticator, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: !allowsAny(cfg.CORSOrigins),
		MaxAge:           300,
	}))
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, 1*time.Minute))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAuthError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeAuthError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	h.Health.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	api := func(ar chi.Router) {
		h.Auth.RegisterRoutes(ar)

		ar.Group(func(pr chi.Router) {
			pr.Use(AuthMiddleware(auth))
			h.Auth.RegisterProtectedRoutes(pr)
			h.Categories.RegisterRoutes(pr)
			h.Equipment.RegisterRoutes(pr)
			h.Bundles.RegisterRoutes(pr)
			h.Quotations.RegisterRoutes(pr)

			pr.Group(func(admin chi.Router) {
				admin.Use(RequireRole(domain.RoleAdmin))
				h.Users.RegisterRoutes(admin)
				h.Categories.RegisterAdminRoutes(admin)
				h.Equipment.RegisterAdminRoutes(admin)
				h.Bundles.RegisterAdminRoutes(admin)
				h.Quotations.RegisterAdminRoutes(admin)
			})
		})
	}
	if cfg.APIPrefix == "" || cfg.APIPrefix == "/" {
		r.Group(api)
	} else {
		r.Route(cfg.APIPrefix, api)
	}

	return r
}

func securityHeaders(next http.Handler) http.Handler {
	return middleware.SetHeader("X-Content-Type-Options", "nosniff")(
		middleware.SetHeader("X-Frame-Options", "DENY")(
			middleware.SetHeader("Referrer-Policy", "no-referrer")(next)))
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
