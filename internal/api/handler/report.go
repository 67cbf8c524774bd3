package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/luftpraemie/luftpraemie/internal/airquality"
	"github.com/luftpraemie/luftpraemie/internal/api/models"
	"github.com/luftpraemie/luftpraemie/internal/api/response"
	"github.com/luftpraemie/luftpraemie/internal/healthinsurance"
	"github.com/luftpraemie/luftpraemie/internal/report"
)

// ReportHandler serves canton cross-reference reports.
type ReportHandler struct {
	reporter *report.Reporter
	logger   zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reporter *report.Reporter, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{reporter: reporter, logger: logger}
}

// GetReport handles GET /v1/report. Cantons default to all; the premium
// filter defaults to the adult base tariff without accident coverage at the
// standard deductible.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
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

	cantons := report.Cantons()
	if v := q.Get("cantons"); v != "" {
		cantons = strings.Split(v, ",")
		for i := range cantons {
			cantons[i] = strings.ToUpper(strings.TrimSpace(cantons[i]))
		}
	}

	filter := healthinsurance.Filter{
		AgeClass:   healthinsurance.AgeClassAdult,
		Accident:   healthinsurance.WithoutAccident,
		TariffType: healthinsurance.TariffBase,
		Deductible: "300",
	}
	if v := q.Get("ageClass"); v != "" {
		filter.AgeClass = v
	}
	if v := q.Get("accident"); v != "" {
		filter.Accident = v
	}
	if v := q.Get("tariffType"); v != "" {
		filter.TariffType = v
	}
	if v := q.Get("deductible"); v != "" {
		filter.Deductible = v
	}

	summaries, err := h.reporter.CrossReference(r.Context(), cantons, airquality.Pollutant(pollutant), year, filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("report failed")
		response.InternalError(w, r, "report computation failed")
		return
	}

	items := make([]models.CantonReport, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, models.CantonReport{
			Canton:         s.Canton,
			Name:           s.Name,
			Pollution:      optionalFloat(s.Pollution),
			MedianPremium:  optionalFloat(s.MedianPremium),
			Municipalities: s.Municipalities,
		})
	}
	response.JSON(w, r, http.StatusOK, models.Report{
		Pollutant: pollutant,
		Year:      year,
		Items:     items,
	})
}

// optionalFloat maps NaN to nil so it can be encoded as JSON null.
func optionalFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
