// Package api provides the HTTP API.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/luftpraemie/luftpraemie/internal/airquality"
	"github.com/luftpraemie/luftpraemie/internal/api/handler"
	"github.com/luftpraemie/luftpraemie/internal/api/middleware"
	"github.com/luftpraemie/luftpraemie/internal/report"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version  string
	Logger   zerolog.Logger
	Metrics  *middleware.Metrics
	Stations []airquality.StationRecord
	Resolver report.MunicipalityResolver
	Reporter *report.Reporter
}

// NewRouter creates a chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware, order matters.
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)

	opsHandler := handler.NewOpsHandler(cfg.Version)
	stationsHandler := handler.NewStationsHandler(cfg.Stations)
	estimateHandler := handler.NewEstimateHandler(cfg.Stations, cfg.Resolver, cfg.Logger)
	reportHandler := handler.NewReportHandler(cfg.Reporter, cfg.Logger)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
		})

		r.With(standardRateLimit).Get("/stations", stationsHandler.ListStations)

		// Estimate and report resolve municipalities through geo.admin.ch.
		r.With(expensiveRateLimit).Get("/estimate", estimateHandler.GetEstimate)
		r.With(expensiveRateLimit).Get("/report", reportHandler.GetReport)
	})

	return r
}
