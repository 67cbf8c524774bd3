package handler

import (
	"net/http"
	"sort"

	"github.com/luftpraemie/luftpraemie/internal/airquality"
	"github.com/luftpraemie/luftpraemie/internal/api/models"
	"github.com/luftpraemie/luftpraemie/internal/api/response"
)

// StationsHandler serves the enriched station table.
type StationsHandler struct {
	stations []airquality.StationRecord
}

// NewStationsHandler creates a new StationsHandler.
func NewStationsHandler(stations []airquality.StationRecord) *StationsHandler {
	return &StationsHandler{stations: stations}
}

// ListStations handles GET /v1/stations. Stations without coordinates are
// omitted.
func (h *StationsHandler) ListStations(w http.ResponseWriter, r *http.Request) {
	items := make([]models.Station, 0, len(h.stations))
	for _, s := range h.stations {
		if !s.Located() {
			continue
		}

		keys := make([]string, 0, len(s.Values))
		for key := range s.Values {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		items = append(items, models.Station{
			StationID: s.ID,
			Name:      s.Name,
			Lat:       s.Position.Lat,
			Lon:       s.Position.Lon,
			Values:    keys,
		})
	}
	response.JSON(w, r, http.StatusOK, models.StationList{Items: items})
}
