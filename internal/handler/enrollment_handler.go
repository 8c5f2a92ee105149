package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-enroll-api/internal/models"
	"github.com/noah-isme/campus-enroll-api/internal/service"
	appErrors "github.com/noah-isme/campus-enroll-api/pkg/errors"
	"github.com/noah-isme/campus-enroll-api/pkg/response"
)

type enrollmentService interface {
	Admit(ctx context.Context, req service.AdmitRequest) (*models.EnrollmentDetail, error)
	Drop(ctx context.Context, enrollmentID string) (*models.EnrollmentDetail, error)
	ListStudentEnrollments(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error)
	ListCourseRoster(ctx context.Context, courseID string) ([]models.RosterEntry, error)
	ExportRoster(ctx context.Context, courseID, format string) ([]byte, string, error)
}

// EnrollmentHandler exposes admission, drop and roster endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Admit godoc
// @Summary Request admission into a course section
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.AdmitRequest true "Admission payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Admit(c *gin.Context) {
	var req service.AdmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.enrollments.Admit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// ListMine godoc
// @Summary List the authenticated student's enrollments
// @Tags Enrollments
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /enrollments/my [get]
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	claims := CurrentUser(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	h.list(c, claims.Subject)
}

// ListByStudent godoc
// @Summary List a student's enrollments
// @Tags Enrollments
// @Produce json
// @Param studentId path string true "Student ID"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/enrollments [get]
func (h *EnrollmentHandler) ListByStudent(c *gin.Context) {
	h.list(c, c.Param("studentId"))
}

func (h *EnrollmentHandler) list(c *gin.Context, studentID string) {
	status := models.EnrollmentStatus(strings.ToUpper(c.Query("status")))
	enrollments, err := h.enrollments.ListStudentEnrollments(c.Request.Context(), studentID, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments)
}

// Drop godoc
// @Summary Drop an enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	detail, err := h.enrollments.Drop(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// Roster godoc
// @Summary List the seated students for a course
// @Tags Enrollments
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/roster [get]
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	roster, err := h.enrollments.ListCourseRoster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster)
}

// ExportRoster godoc
// @Summary Export the course roster as CSV or PDF
// @Tags Enrollments
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Course ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Router /courses/{id}/roster/export [get]
func (h *EnrollmentHandler) ExportRoster(c *gin.Context) {
	courseID := c.Param("id")
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	payload, contentType, err := h.enrollments.ExportRoster(c.Request.Context(), courseID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("roster-%s.%s", courseID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
