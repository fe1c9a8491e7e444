package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alqalam-institute/registry-api/internal/models"
	"github.com/alqalam-institute/registry-api/internal/service"
	"github.com/alqalam-institute/registry-api/pkg/response"
)

// BootstrapHandler returns the static reference data an admin client needs
// on startup in a single round trip.
type BootstrapHandler struct {
	departments *service.DepartmentService
	subjects    *service.SubjectService
	terms       *service.TermService
	periods     *service.PeriodService
}

// NewBootstrapHandler constructs a bootstrap handler.
func NewBootstrapHandler(departments *service.DepartmentService, subjects *service.SubjectService, terms *service.TermService, periods *service.PeriodService) *BootstrapHandler {
	return &BootstrapHandler{
		departments: departments,
		subjects:    subjects,
		terms:       terms,
		periods:     periods,
	}
}

// Get godoc
// @Summary Load departments, subjects, terms and periods in one call
// @Tags Bootstrap
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bootstrap [get]
func (h *BootstrapHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	departments, err := h.departments.List(ctx, models.DepartmentFilter{})
	if err != nil {
		response.Error(c, err)
		return
	}
	subjects, err := h.subjects.List(ctx, models.SubjectFilter{})
	if err != nil {
		response.Error(c, err)
		return
	}
	terms, err := h.terms.List(ctx, models.TermFilter{IncludeArchived: true})
	if err != nil {
		response.Error(c, err)
		return
	}
	periods, err := h.periods.List(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"departments": departments,
		"subjects":    subjects,
		"terms":       terms,
		"periods":     periods,
	}, nil)
}
