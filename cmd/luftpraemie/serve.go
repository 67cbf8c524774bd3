package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/luftpraemie/luftpraemie/internal/api"
	"github.com/luftpraemie/luftpraemie/internal/api/middleware"
	"github.com/luftpraemie/luftpraemie/internal/healthinsurance"
	"github.com/luftpraemie/luftpraemie/internal/report"
	"github.com/luftpraemie/luftpraemie/internal/telemetry"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		const serviceName = "luftpraemie-api"

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tp, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:    serviceName,
			ServiceVersion: Version,
			Environment:    cfg.Telemetry.Environment,
			OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
			Enabled:        cfg.Telemetry.Enabled,
		})
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
				log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
			}
		}()

		metrics, err := middleware.NewMetrics()
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}

		stations, err := loadEnrichedStations()
		if err != nil {
			return err
		}
		log.Info().Int("stations", len(stations)).Msg("station table loaded")

		premiums, err := healthinsurance.LoadPremiums(cfg.Data.PremiumsFile)
		if err != nil {
			return fmt.Errorf("load premiums: %w", err)
		}
		log.Info().Int("premiums", len(premiums)).Msg("premium filing loaded")

		regions, err := healthinsurance.LoadRegionRegistry(cfg.Data.RegionsWorkbook)
		if err != nil {
			return fmt.Errorf("load regions: %w", err)
		}

		resolver := newCachedLocator(newGeoClient())
		reporter := report.NewReporter(report.Config{
			Resolver:    resolver,
			Stations:    stations,
			Premiums:    premiums,
			Regions:     regions,
			Concurrency: cfg.Report.Concurrency,
			Logger:      log,
		})

		router := api.NewRouter(api.RouterConfig{
			Version:  Version,
			Logger:   log,
			Metrics:  metrics,
			Stations: stations,
			Resolver: resolver,
			Reporter: reporter,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		server := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", server.Addr).Msg("server listening")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
