package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds and returns the Chi router with all routes configured.
// Health and metrics endpoints live outside the session group; every travel
// route runs behind the session cookie middleware. Rate limiting is applied
// globally per client IP.
func NewRouter(handlers *Handlers, redisClient redisPinger, requestsPerMinute int, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if requestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(requestsPerMinute, time.Minute))
	}

	r.Get("/api/v1/health", HealthHandlerFunc(redisClient, log))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(WithSession)
		r.Get("/api/v1/cities", handlers.SearchCities)
		r.Get("/api/v1/home", handlers.GetHome)
		r.Post("/api/v1/home", handlers.SaveHome)
		r.Delete("/api/v1/home", handlers.RemoveHome)
		r.Get("/api/v1/destinations", handlers.Destinations)
		r.Get("/api/v1/safety", handlers.SafetyAreas)
		r.Get("/api/v1/pois/{category}", handlers.PointsOfInterest)
		r.Get("/api/v1/flight-dates", handlers.FlightDates)
		r.Get("/api/v1/preferences", handlers.GetPreferences)
		r.Put("/api/v1/preferences", handlers.SavePreferences)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
