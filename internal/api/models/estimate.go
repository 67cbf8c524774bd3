// Package models defines the wire types of the HTTP API.
package models

import "time"

// Timestamp marshals as RFC3339 UTC.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(time.RFC3339) + `"`), nil
}

// Health is the liveness response.
type Health struct {
	Status  string    `json:"status"`
	Time    Timestamp `json:"time"`
	Version string    `json:"version,omitempty"`
}

// Station is one measurement station of the enriched table.
type Station struct {
	StationID string   `json:"stationId"`
	Name      string   `json:"name"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Values    []string `json:"values,omitempty"`
}

// StationList is the stations listing response.
type StationList struct {
	Items []Station `json:"items"`
}

// Estimate is the interpolation response. Estimate is null when no usable
// station data covers the requested pollutant and year.
type Estimate struct {
	Municipality string   `json:"municipality,omitempty"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	Pollutant    string   `json:"pollutant"`
	Year         int      `json:"year"`
	Estimate     *float64 `json:"estimate"`
}

// CantonReport is one canton row of the report response.
type CantonReport struct {
	Canton         string   `json:"canton"`
	Name           string   `json:"name"`
	Pollution      *float64 `json:"pollution"`
	MedianPremium  *float64 `json:"medianPremium"`
	Municipalities int      `json:"municipalities"`
}

// Report is the cross-reference response.
type Report struct {
	Pollutant string         `json:"pollutant"`
	Year      int            `json:"year"`
	Items     []CantonReport `json:"items"`
}
