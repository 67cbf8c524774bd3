// Package airquality provides the NABEL station data model and the spatial
// interpolation used to estimate pollutant concentrations at municipalities.
package airquality

import (
	"fmt"
	"math"

	"github.com/luftpraemie/luftpraemie/internal/geo"
)

// Pollutant identifies a NABEL measurement series.
type Pollutant string

// Pollutants published in the NABEL historical exports.
const (
	PollutantCO    Pollutant = "CO"
	PollutantCPC   Pollutant = "CPC"
	PollutantEC    Pollutant = "EC"
	PollutantNMVOC Pollutant = "NMVOC"
	PollutantNO2   Pollutant = "NO2"
	PollutantNOX   Pollutant = "NOX"
	PollutantO3    Pollutant = "O3"
	PollutantPM25  Pollutant = "PM2.5"
	PollutantPM10  Pollutant = "PM10"
	PollutantPREC  Pollutant = "PREC"
	PollutantRAD   Pollutant = "RAD"
	PollutantSO2   Pollutant = "SO2"
	PollutantTEMP  Pollutant = "TEMP"
)

// ValueKey names the column holding a pollutant's yearly aggregate, following
// the {pollutant}_{year} convention of the enriched station table.
func ValueKey(p Pollutant, year int) string {
	return fmt.Sprintf("%s_%d", p, year)
}

// StationRecord is one fixed monitoring station. Records are built once by the
// enrichment pipeline and never mutated afterwards.
type StationRecord struct {
	// ID is the opaque station identifier from the source table.
	ID string

	// Name is the display name used by the historical exports.
	Name string

	// Position is the converted WGS84 coordinate. It is nil when the source
	// coordinates failed to parse or convert; such records carry no position
	// and are excluded from interpolation.
	Position *geo.Point

	// Values holds yearly aggregates keyed by ValueKey. A missing key reads
	// as NaN.
	Values map[string]float64
}

// Located reports whether the station has a usable position.
func (s *StationRecord) Located() bool {
	return s.Position != nil
}

// Value returns the stored value for key, or NaN when the station has no
// observation for it.
func (s *StationRecord) Value(key string) float64 {
	if v, ok := s.Values[key]; ok {
		return v
	}
	return math.NaN()
}

// SetValue records a yearly aggregate, allocating the map on first use.
func (s *StationRecord) SetValue(key string, v float64) {
	if s.Values == nil {
		s.Values = make(map[string]float64)
	}
	s.Values[key] = v
}
