package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"form-submissions/internal/common/logger"
)

type Options struct {
	AllowedOrigins []string
}

func NewRouter(opts Options, log logger.Logger, subH *SubmissionHandler, healthH *HealthHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Recovery(log))
	r.Use(Logger(log))
	r.Use(CORS(opts.AllowedOrigins))

	r.Get("/health", healthH.Health)
	r.Get("/ready", healthH.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/submit-form", subH.Submit)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/submissions", subH.Submit)
	})

	return r
}

// NewOpsRouter serves only the health and metrics endpoints.
func NewOpsRouter(log logger.Logger, healthH *HealthHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(Recovery(log))

	r.Get("/health", healthH.Health)
	r.Get("/ready", healthH.Ready)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
