// Package router sets up all HTTP routes and middleware chains for the
// AutoPress API. The whole /api tree sits behind bearer authentication;
// only the health check is open.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"autopress/internal/handlers"
	"autopress/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. An empty apiToken disables authentication,
// which is only sensible in development.
func New(api *handlers.API, apiToken string) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check, no auth.
	r.Get("/health", healthHandler)

	rl := middleware.NewRateLimiter(120, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Use(rl.Middleware)
		r.Use(middleware.BearerAuth(apiToken))

		r.Post("/recurrence/validate", api.RecurrenceValidate)

		r.Route("/sites", func(r chi.Router) {
			r.Get("/", api.SitesList)
			r.Post("/", api.SiteCreate)

			r.Route("/{siteID}", func(r chi.Router) {
				r.Get("/", api.SiteGet)
				r.Delete("/", api.SiteDelete)
				r.Post("/verify", api.SiteVerify)
				r.Get("/limits", api.LimitsGet)

				r.Route("/schedules", func(r chi.Router) {
					r.Get("/", api.SchedulesList)
					r.Post("/", api.ScheduleCreate)
					r.Get("/{id}", api.ScheduleGet)
					r.Put("/{id}", api.ScheduleUpdate)
					r.Delete("/{id}", api.ScheduleDelete)
					r.Post("/{id}/toggle", api.ScheduleToggle)
				})

				r.Route("/posts", func(r chi.Router) {
					r.Get("/", api.PostsList)
					r.Post("/", api.PostCreate)
					r.Get("/stats", api.PostStats)
					r.Get("/{id}", api.PostGet)
					r.Put("/{id}", api.PostUpdate)
					r.Delete("/{id}", api.PostDelete)
					r.Post("/{id}/publish", api.PostPublish)
					r.Post("/{id}/schedule", api.PostSchedule)
					r.Post("/{id}/retry", api.PostRetry)
				})
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
