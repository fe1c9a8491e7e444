package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alqalam-institute/registry-api/internal/service"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
	"github.com/alqalam-institute/registry-api/pkg/response"
)

// RegistrationHandler exposes term registration endpoints.
type RegistrationHandler struct {
	service *service.RegistrationService
	metrics *service.MetricsService
}

// NewRegistrationHandler constructs a registration handler.
func NewRegistrationHandler(svc *service.RegistrationService, metrics *service.MetricsService) *RegistrationHandler {
	return &RegistrationHandler{service: svc, metrics: metrics}
}

// List godoc
// @Summary List registrations for a term
// @Tags Registrations
// @Produce json
// @Param termId query string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId query parameter is required"))
		return
	}
	registrations, err := h.service.ListByTerm(c.Request.Context(), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, nil)
}

// Register godoc
// @Summary Register a batch of students into a term
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body service.RegisterRequest true "Registration batch"
// @Success 200 {object} response.Envelope
// @Router /registrations/register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordRegistrations(len(result.Registered))
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Unregister godoc
// @Summary Remove a batch of students from a term
// @Tags Registrations
// @Accept json
// @Param payload body service.UnregisterRequest true "Unregistration batch"
// @Success 204
// @Router /registrations/unregister [post]
func (h *RegistrationHandler) Unregister(c *gin.Context) {
	var req service.UnregisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Unregister(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a term's registrations as CSV
// @Tags Registrations
// @Produce text/csv
// @Param termId query string true "Term ID"
// @Success 200 {string} string "CSV payload"
// @Router /registrations/export [get]
func (h *RegistrationHandler) Export(c *gin.Context) {
	termID := c.Query("termId")
	if termID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId query parameter is required"))
		return
	}
	payload, filename, err := h.service.ExportCSV(c.Request.Context(), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}
