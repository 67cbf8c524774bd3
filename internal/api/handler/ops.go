// Package handler provides the HTTP handlers of the API.
package handler

import (
	"net/http"
	"time"

	"github.com/luftpraemie/luftpraemie/internal/api/models"
	"github.com/luftpraemie/luftpraemie/internal/api/response"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version string
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version string) *OpsHandler {
	return &OpsHandler{version: version}
}

// HealthCheck handles GET /v1/ops/health.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:  "ok",
		Time:    models.Timestamp(time.Now()),
		Version: h.version,
	})
}
