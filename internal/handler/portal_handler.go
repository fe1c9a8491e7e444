package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alqalam-institute/registry-api/internal/middleware"
	"github.com/alqalam-institute/registry-api/internal/service"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
	"github.com/alqalam-institute/registry-api/pkg/response"
)

// PortalHandler serves the public student-facing endpoints.
type PortalHandler struct {
	service *service.PortalService
}

// NewPortalHandler constructs a portal handler.
func NewPortalHandler(svc *service.PortalService) *PortalHandler {
	return &PortalHandler{service: svc}
}

// Login godoc
// @Summary Authenticate a student and return their dashboard
// @Tags Portal
// @Accept json
// @Produce json
// @Param payload body service.PortalLoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /public/student-dashboard [post]
func (h *PortalHandler) Login(c *gin.Context) {
	var req service.PortalLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	dashboard, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// Dashboard godoc
// @Summary Return the dashboard for the authenticated student
// @Tags Portal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /public/me [get]
func (h *PortalHandler) Dashboard(c *gin.Context) {
	claims := middleware.StudentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing session"))
		return
	}
	dashboard, err := h.service.Dashboard(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}

// Schedule godoc
// @Summary Return the public weekly schedule for a term
// @Tags Portal
// @Produce json
// @Param termId query string false "Term ID, defaults to the active term"
// @Success 200 {object} response.Envelope
// @Router /public/schedule [get]
func (h *PortalHandler) Schedule(c *gin.Context) {
	schedule, err := h.service.Schedule(c.Request.Context(), c.Query("termId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}
