package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-enroll-api/internal/middleware"
	"github.com/noah-isme/campus-enroll-api/internal/models"
	"github.com/noah-isme/campus-enroll-api/internal/service"
	appErrors "github.com/noah-isme/campus-enroll-api/pkg/errors"
	"github.com/noah-isme/campus-enroll-api/pkg/response"
)

type stubEnrollmentService struct {
	admitFn  func(ctx context.Context, req service.AdmitRequest) (*models.EnrollmentDetail, error)
	dropFn   func(ctx context.Context, enrollmentID string) (*models.EnrollmentDetail, error)
	listFn   func(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error)
	rosterFn func(ctx context.Context, courseID string) ([]models.RosterEntry, error)
	exportFn func(ctx context.Context, courseID, format string) ([]byte, string, error)
}

func (s *stubEnrollmentService) Admit(ctx context.Context, req service.AdmitRequest) (*models.EnrollmentDetail, error) {
	return s.admitFn(ctx, req)
}

func (s *stubEnrollmentService) Drop(ctx context.Context, enrollmentID string) (*models.EnrollmentDetail, error) {
	return s.dropFn(ctx, enrollmentID)
}

func (s *stubEnrollmentService) ListStudentEnrollments(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error) {
	return s.listFn(ctx, studentID, status)
}

func (s *stubEnrollmentService) ListCourseRoster(ctx context.Context, courseID string) ([]models.RosterEntry, error) {
	return s.rosterFn(ctx, courseID)
}

func (s *stubEnrollmentService) ExportRoster(ctx context.Context, courseID, format string) ([]byte, string, error) {
	return s.exportFn(ctx, courseID, format)
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func TestAdmitReturnsCreated(t *testing.T) {
	stub := &stubEnrollmentService{
		admitFn: func(ctx context.Context, req service.AdmitRequest) (*models.EnrollmentDetail, error) {
			return &models.EnrollmentDetail{
				Enrollment: models.Enrollment{
					ID:        "enr-1",
					StudentID: req.StudentID,
					CourseID:  req.CourseID,
					Status:    models.StatusEnrolled,
				},
				Term:         "Fall",
				AcademicYear: "2025-2026",
			}, nil
		},
	}
	router := gin.New()
	router.POST("/enrollments", NewEnrollmentHandler(stub).Admit)

	rec := perform(router, http.MethodPost, "/enrollments", `{"student_id":"stu-1","course_id":"course-1"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Data)
	payload := envelope.Data.(map[string]interface{})
	assert.Equal(t, "enr-1", payload["id"])
	assert.Equal(t, "ENROLLED", payload["status"])
}

func TestAdmitRejectsMalformedBody(t *testing.T) {
	router := gin.New()
	router.POST("/enrollments", NewEnrollmentHandler(&stubEnrollmentService{}).Admit)

	rec := perform(router, http.MethodPost, "/enrollments", `{"student_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmitMapsConflictStatus(t *testing.T) {
	stub := &stubEnrollmentService{
		admitFn: func(ctx context.Context, req service.AdmitRequest) (*models.EnrollmentDetail, error) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "already enrolled in this course section")
		},
	}
	router := gin.New()
	router.POST("/enrollments", NewEnrollmentHandler(stub).Admit)

	rec := perform(router, http.MethodPost, "/enrollments", `{"student_id":"stu-1","course_id":"course-1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrConflict.Code, envelope.Error.Code)
}

func TestDropReturnsDroppedRecord(t *testing.T) {
	stub := &stubEnrollmentService{
		dropFn: func(ctx context.Context, enrollmentID string) (*models.EnrollmentDetail, error) {
			return &models.EnrollmentDetail{
				Enrollment: models.Enrollment{ID: enrollmentID, Status: models.StatusDropped},
			}, nil
		},
	}
	router := gin.New()
	router.DELETE("/enrollments/:id", NewEnrollmentHandler(stub).Drop)

	rec := perform(router, http.MethodDelete, "/enrollments/enr-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	payload := envelope.Data.(map[string]interface{})
	assert.Equal(t, "DROPPED", payload["status"])
}

func TestListMineUsesTokenSubject(t *testing.T) {
	var gotStudent string
	stub := &stubEnrollmentService{
		listFn: func(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error) {
			gotStudent = studentID
			return []models.EnrollmentDetail{}, nil
		},
	}
	router := gin.New()
	router.GET("/enrollments/my", func(c *gin.Context) {
		claims := &models.JWTClaims{Role: models.RoleStudent}
		claims.Subject = "user-7"
		c.Set(middleware.ContextUserKey, claims)
	}, NewEnrollmentHandler(stub).ListMine)

	rec := perform(router, http.MethodGet, "/enrollments/my?status=enrolled", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-7", gotStudent)
}

func TestListMineWithoutClaims(t *testing.T) {
	router := gin.New()
	router.GET("/enrollments/my", NewEnrollmentHandler(&stubEnrollmentService{}).ListMine)

	rec := perform(router, http.MethodGet, "/enrollments/my", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListByStudentUppercasesStatusFilter(t *testing.T) {
	var gotStatus models.EnrollmentStatus
	stub := &stubEnrollmentService{
		listFn: func(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error) {
			gotStatus = status
			return []models.EnrollmentDetail{}, nil
		},
	}
	router := gin.New()
	router.GET("/students/:studentId/enrollments", NewEnrollmentHandler(stub).ListByStudent)

	rec := perform(router, http.MethodGet, "/students/stu-1/enrollments?status=waitlisted", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusWaitlisted, gotStatus)
}

func TestRosterReturnsEntries(t *testing.T) {
	stub := &stubEnrollmentService{
		rosterFn: func(ctx context.Context, courseID string) ([]models.RosterEntry, error) {
			return []models.RosterEntry{
				{StudentID: "stu-1", StudentName: "Ana", UserNumber: "S-1001", Status: models.StatusEnrolled},
			}, nil
		},
	}
	router := gin.New()
	router.GET("/courses/:id/roster", NewEnrollmentHandler(stub).Roster)

	rec := perform(router, http.MethodGet, "/courses/course-1/roster", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	entries := envelope.Data.([]interface{})
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})
	assert.Equal(t, "Ana", entry["student_name"])
}

func TestExportRosterSetsAttachmentHeaders(t *testing.T) {
	stub := &stubEnrollmentService{
		exportFn: func(ctx context.Context, courseID, format string) ([]byte, string, error) {
			return []byte("Student Number,Name,Status\n"), "text/csv", nil
		},
	}
	router := gin.New()
	router.GET("/courses/:id/roster/export", NewEnrollmentHandler(stub).ExportRoster)

	rec := perform(router, http.MethodGet, "/courses/course-1/roster/export", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "roster-course-1.csv")
}
