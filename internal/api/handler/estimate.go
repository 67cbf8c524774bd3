package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/luftpraemie/luftpraemie/internal/airquality"
	"github.com/luftpraemie/luftpraemie/internal/api/models"
	"github.com/luftpraemie/luftpraemie/internal/api/response"
	"github.com/luftpraemie/luftpraemie/internal/geo"
	"github.com/luftpraemie/luftpraemie/internal/report"
)

// EstimateHandler serves point estimates interpolated from the station table.
type EstimateHandler struct {
	stations []airquality.StationRecord
	resolver report.MunicipalityResolver
	logger   zerolog.Logger
}

// NewEstimateHandler creates a new EstimateHandler.
func NewEstimateHandler(stations []airquality.StationRecord, resolver report.MunicipalityResolver, logger zerolog.Logger) *EstimateHandler {
	return &EstimateHandler{stations: stations, resolver: resolver, logger: logger}
}

// GetEstimate handles GET /v1/estimate. The target is given either as a
// municipality name or as lat/lon; pollutant and year are required, k and
// power are optional.
func (h *EstimateHandler) GetEstimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pollutant := q.Get("pollutant")
	if pollutant == "" {
		response.BadRequest(w, r, "pollutant is required", []models.FieldError{
			{Field: "pollutant", Message: "required", Code: "required"},
		})
		return
	}

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		response.BadRequest(w, r, "year must be an integer", []models.FieldError{
			{Field: "year", Message: "must be an integer", Code: "invalid"},
		})
		return
	}

	cfg := airquality.DefaultEstimatorConfig()
	if v := q.Get("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil || k < 1 {
			response.BadRequest(w, r, "k must be a positive integer", []models.FieldError{
				{Field: "k", Message: "must be a positive integer", Code: "invalid"},
			})
			return
		}
		cfg.K = k
	}
	if v := q.Get("power"); v != "" {
		power, err := strconv.ParseFloat(v, 64)
		if err != nil || power <= 0 {
			response.BadRequest(w, r, "power must be a positive number", []models.FieldError{
				{Field: "power", Message: "must be a positive number", Code: "invalid"},
			})
			return
		}
		cfg.Power = power
	}

	municipality := q.Get("municipality")
	var target geo.Point
	switch {
	case municipality != "":
		target, err = h.resolver.ResolveMunicipality(r.Context(), municipality)
		if err != nil {
			h.logger.Warn().Str("municipality", municipality).Err(err).Msg("municipality lookup failed")
			response.NotFound(w, r, "municipality not found")
			return
		}
	case q.Get("lat") != "" && q.Get("lon") != "":
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
		if errLat != nil || errLon != nil {
			response.BadRequest(w, r, "lat and lon must be numbers", nil)
			return
		}
		target = geo.Point{Lat: lat, Lon: lon}
	default:
		response.BadRequest(w, r, "either municipality or lat/lon is required", nil)
		return
	}

	estimator := airquality.NewEstimator(cfg)
	value := estimator.Estimate(h.stations, target, airquality.ValueKey(airquality.Pollutant(pollutant), year))

	out := models.Estimate{
		Municipality: municipality,
		Lat:          target.Lat,
		Lon:          target.Lon,
		Pollutant:    pollutant,
		Year:         year,
	}
	if !math.IsNaN(value) {
		out.Estimate = &value
	}
	response.JSON(w, r, http.StatusOK, out)
}
