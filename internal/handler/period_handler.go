package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alqalam-institute/registry-api/internal/service"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
	"github.com/alqalam-institute/registry-api/pkg/response"
)

// PeriodHandler exposes the fixed daily period slots.
type PeriodHandler struct {
	service *service.PeriodService
}

// NewPeriodHandler constructs a period handler.
func NewPeriodHandler(svc *service.PeriodService) *PeriodHandler {
	return &PeriodHandler{service: svc}
}

// List godoc
// @Summary List daily periods
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods [get]
func (h *PeriodHandler) List(c *gin.Context) {
	periods, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// Update godoc
// @Summary Relabel or retime a period
// @Tags Periods
// @Accept json
// @Produce json
// @Param id path string true "Period ID"
// @Param payload body service.UpdatePeriodRequest true "Period payload"
// @Success 200 {object} response.Envelope
// @Router /periods/{id} [put]
func (h *PeriodHandler) Update(c *gin.Context) {
	var req service.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}
