package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alqalam-institute/registry-api/internal/service"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
	"github.com/alqalam-institute/registry-api/pkg/response"
)

// OfferingHandler manages the per-term subject catalogue.
type OfferingHandler struct {
	service *service.OfferingService
}

// NewOfferingHandler constructs an offering handler.
func NewOfferingHandler(svc *service.OfferingService) *OfferingHandler {
	return &OfferingHandler{service: svc}
}

// List godoc
// @Summary List subjects offered in a term
// @Tags Offerings
// @Produce json
// @Param id path string true "Term ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/subjects [get]
func (h *OfferingHandler) List(c *gin.Context) {
	offerings, err := h.service.ListByTerm(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerings, nil)
}

// Assign godoc
// @Summary Offer a batch of subjects in a term
// @Tags Offerings
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param payload body service.OfferingBatchRequest true "Subject batch"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/subjects/assign [post]
func (h *OfferingHandler) Assign(c *gin.Context) {
	var req service.OfferingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Unassign godoc
// @Summary Withdraw a batch of subjects from a term's catalogue
// @Tags Offerings
// @Accept json
// @Param id path string true "Term ID"
// @Param payload body service.OfferingBatchRequest true "Subject batch"
// @Success 204
// @Router /terms/{id}/subjects/unassign [post]
func (h *OfferingHandler) Unassign(c *gin.Context) {
	var req service.OfferingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Unassign(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
