package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/newsletter/backend/internal/setup"
	mw "github.com/itchan-dev/newsletter/shared/middleware"
	"github.com/itchan-dev/newsletter/shared/middleware/metrics"
)

// New creates the chi router with every route and the shared middleware stack.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(metrics.NewHTTP(deps.Registry).Middleware)

	if origins := deps.Config.Public.HTTP.AllowedOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         300,
		}))
	}
	r.Use(mw.SecurityHeaders(deps.Config.Public.HTTP.HSTS, mw.APIContentSecurityPolicy))

	h := deps.Handler

	r.Get("/health_check", h.HealthCheck)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	r.Post("/subscriptions", h.Subscribe)
	r.Get("/subscriptions/confirm", h.ConfirmSubscription)

	r.Post("/newsletter", h.PublishNewsletter)

	return r
}
