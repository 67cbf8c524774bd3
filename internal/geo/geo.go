// Package geo provides geocoordinate resolution for Swiss municipalities and
// monitoring stations: LV95 to WGS84 conversion, raw coordinate parsing, and
// place-name lookup against the geo.admin.ch services.
package geo

import (
	"context"
	"errors"
)

// Lookup errors.
var (
	// ErrNoResult is returned when a lookup produced no usable coordinate.
	// It covers both "service answered but nothing qualified" and transport
	// failures; callers that need to distinguish can inspect the wrapped error.
	ErrNoResult = errors.New("no result")
)

// Point is a WGS84 geographic coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// PlaceCandidate is one result returned by the location search service.
type PlaceCandidate struct {
	// FeatureID is the authoritative feature identifier. It is empty for
	// fuzzy or partial matches that are not genuine indexed places.
	FeatureID string

	Lat float64
	Lon float64
}

// Service is the capability surface the geo.admin.ch backends provide.
// It exists so the locator and the station pipeline can be tested against
// fakes without any network.
type Service interface {
	// ConvertLV95 converts Swiss LV95 projected coordinates to WGS84.
	ConvertLV95(ctx context.Context, easting, northing float64) (Point, error)

	// SearchLocations returns up to limit place candidates for a free-text
	// query, in the order the service ranked them.
	SearchLocations(ctx context.Context, text string, limit int) ([]PlaceCandidate, error)
}
