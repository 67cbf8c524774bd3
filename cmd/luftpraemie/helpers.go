package main

import (
	"fmt"

	"github.com/luftpraemie/luftpraemie/internal/airquality"
	"github.com/luftpraemie/luftpraemie/internal/geo"
	"github.com/luftpraemie/luftpraemie/internal/geo/geoadmin"
)

// newGeoClient builds the geo.admin.ch client from configuration.
func newGeoClient() *geoadmin.Client {
	return geoadmin.NewClient(geoadmin.ClientConfig{
		ReframeBaseURL: cfg.GeoAdmin.ReframeBaseURL,
		SearchBaseURL:  cfg.GeoAdmin.SearchBaseURL,
		Logger:         log,
	})
}

// newCachedLocator builds a municipality locator with in-process caching.
func newCachedLocator(svc geo.Service) *geo.CachedLocator {
	return geo.NewCachedLocator(geo.NewLocator(svc, log))
}

// loadEnrichedStations loads the enriched station table from the configured
// path.
func loadEnrichedStations() ([]airquality.StationRecord, error) {
	stations, err := airquality.LoadEnrichedStations(cfg.Data.EnrichedStationsFile)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	return stations, nil
}
