package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alqalam-institute/registry-api/internal/service"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
	"github.com/alqalam-institute/registry-api/pkg/response"
)

// TimetableHandler manages the weekly schedule grid of a term.
type TimetableHandler struct {
	service *service.TimetableService
	metrics *service.MetricsService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc *service.TimetableService, metrics *service.MetricsService) *TimetableHandler {
	return &TimetableHandler{service: svc, metrics: metrics}
}

// List godoc
// @Summary List a term's timetable entries
// @Tags Timetable
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	entries, err := h.service.ListByTerm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Create godoc
// @Summary Schedule a subject into a slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body service.CreateTimetableEntryRequest true "Entry payload"
// @Success 201 {object} response.Envelope
// @Router /terms/{id}/timetable [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req service.CreateTimetableEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.CreateEntry(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if h.metrics != nil && appErrors.Is(err, appErrors.ErrConflict) {
			h.metrics.RecordRuleRejection("slot_conflict")
		}
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Update godoc
// @Summary Move or relabel a timetable entry
// @Tags Timetable
// @Accept json
// @Produce json
// @Param entryId path string true "Entry ID"
// @Param payload body service.UpdateTimetableEntryRequest true "Entry payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/{entryId} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	var req service.UpdateTimetableEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.UpdateEntry(c.Request.Context(), c.Param("entryId"), req)
	if err != nil {
		if h.metrics != nil && appErrors.Is(err, appErrors.ErrConflict) {
			h.metrics.RecordRuleRejection("slot_conflict")
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Delete godoc
// @Summary Remove a timetable entry
// @Tags Timetable
// @Param entryId path string true "Entry ID"
// @Success 204
// @Router /timetable/{entryId} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteEntry(c.Request.Context(), c.Param("entryId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a term's timetable as PDF
// @Tags Timetable
// @Produce application/pdf
// @Param id path string true "Term ID"
// @Success 200 {string} string "PDF payload"
// @Router /terms/{id}/timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	payload, filename, err := h.service.ExportPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}
