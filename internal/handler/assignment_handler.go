package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alqalam-institute/registry-api/internal/service"
	appErrors "github.com/alqalam-institute/registry-api/pkg/errors"
	"github.com/alqalam-institute/registry-api/pkg/response"
)

// AssignmentHandler manages per-student subject enrolment within a term.
type AssignmentHandler struct {
	service *service.AssignmentService
	metrics *service.MetricsService
}

// NewAssignmentHandler constructs an assignment handler.
func NewAssignmentHandler(svc *service.AssignmentService, metrics *service.MetricsService) *AssignmentHandler {
	return &AssignmentHandler{service: svc, metrics: metrics}
}

// List godoc
// @Summary List a student's assigned subjects in a term
// @Tags Assignments
// @Produce json
// @Param id path string true "Term ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/students/{studentId}/subjects [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	assignments, err := h.service.ListByStudentTerm(c.Request.Context(), c.Param("id"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Assign godoc
// @Summary Assign a batch of subjects to a student
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Term ID"
// @Param studentId path string true "Student ID"
// @Param payload body service.AssignSubjectsRequest true "Subject batch"
// @Success 200 {object} response.Envelope
// @Router /terms/{id}/students/{studentId}/subjects/assign [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req service.AssignSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Assign(c.Request.Context(), c.Param("id"), c.Param("studentId"), req)
	if err != nil {
		if h.metrics != nil && appErrors.Is(err, appErrors.ErrEligibility) {
			h.metrics.RecordRuleRejection("eligibility")
		}
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordAssignments(len(result.Assigned))
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Unassign godoc
// @Summary Remove a batch of subject assignments from a student
// @Tags Assignments
// @Accept json
// @Param id path string true "Term ID"
// @Param studentId path string true "Student ID"
// @Param payload body service.UnassignSubjectsRequest true "Subject batch"
// @Success 204
// @Router /terms/{id}/students/{studentId}/subjects/unassign [post]
func (h *AssignmentHandler) Unassign(c *gin.Context) {
	var req service.UnassignSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Unassign(c.Request.Context(), c.Param("id"), c.Param("studentId"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetGrade godoc
// @Summary Record or clear a grade on an assignment
// @Tags Assignments
// @Accept json
// @Param id path string true "Term ID"
// @Param studentId path string true "Student ID"
// @Param subjectId path string true "Subject ID"
// @Param payload body service.SetGradeRequest true "Grade payload"
// @Success 204
// @Router /terms/{id}/students/{studentId}/subjects/{subjectId}/grade [put]
func (h *AssignmentHandler) SetGrade(c *gin.Context) {
	var req service.SetGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	err := h.service.SetGrade(c.Request.Context(), c.Param("id"), c.Param("studentId"), c.Param("subjectId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
