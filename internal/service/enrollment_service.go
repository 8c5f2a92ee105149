package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-enroll-api/internal/models"
	"github.com/noah-isme/campus-enroll-api/internal/repository"
	appErrors "github.com/noah-isme/campus-enroll-api/pkg/errors"
	"github.com/noah-isme/campus-enroll-api/pkg/export"
)

type admissionStore interface {
	Admit(ctx context.Context, studentID, courseID string) (*models.EnrollmentDetail, error)
	Drop(ctx context.Context, enrollmentID string) (*models.EnrollmentDetail, error)
	ListByStudent(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error)
	Roster(ctx context.Context, courseID string) ([]models.RosterEntry, error)
}

type rosterCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// AdmitRequest names the student and section for an admission attempt.
type AdmitRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
}

// EnrollmentService runs the admission, drop and roster query workflows.
type EnrollmentService struct {
	repo      admissionStore
	courses   rosterCourseReader
	metrics   *MetricsService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService. Metrics may be nil.
func NewEnrollmentService(repo admissionStore, courses rosterCourseReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		courses:   courses,
		metrics:   metrics,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: validate,
		logger:    logger,
	}
}

// Admit runs one admission attempt. The outcome is ENROLLED when the course
// has a free seat, WAITLISTED otherwise. Conflicts and missing courses map
// to caller-visible errors; storage failures surface as retryable.
func (s *EnrollmentService) Admit(ctx context.Context, req AdmitRequest) (*models.EnrollmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admission payload")
	}

	detail, err := s.repo.Admit(ctx, req.StudentID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCourseNotFound):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		case errors.Is(err, repository.ErrSectionConflict):
			return nil, appErrors.Clone(appErrors.ErrConflict, "already enrolled in another section of this course")
		case errors.Is(err, repository.ErrDuplicateEnrollment):
			return nil, appErrors.Clone(appErrors.ErrConflict, "already enrolled in this course section")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "admission transaction failed")
	}

	if s.metrics != nil {
		s.metrics.RecordAdmission(string(detail.Status))
	}
	s.logger.Info("admission decided",
		zap.String("enrollment_id", detail.ID),
		zap.String("student_id", detail.StudentID),
		zap.String("course_id", detail.CourseID),
		zap.String("status", string(detail.Status)),
	)
	return detail, nil
}

// Drop transitions a record to DROPPED. The freed seat is not handed to a
// waitlisted student; the next admit for the course re-evaluates occupancy.
func (s *EnrollmentService) Drop(ctx context.Context, enrollmentID string) (*models.EnrollmentDetail, error) {
	if enrollmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment id is required")
	}

	detail, err := s.repo.Drop(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to drop enrollment")
	}

	s.logger.Info("enrollment dropped", zap.String("enrollment_id", detail.ID), zap.String("course_id", detail.CourseID))
	return detail, nil
}

// ListStudentEnrollments returns a student's records, dropped ones included
// unless a status filter is given.
func (s *EnrollmentService) ListStudentEnrollments(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if status != "" && !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
	}

	enrollments, err := s.repo.ListByStudent(ctx, studentID, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// ListCourseRoster returns the seated students for a course.
func (s *EnrollmentService) ListCourseRoster(ctx context.Context, courseID string) ([]models.RosterEntry, error) {
	if courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}

	roster, err := s.repo.Roster(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to list roster")
	}
	return roster, nil
}

// ExportRoster renders the course roster as CSV or PDF bytes.
func (s *EnrollmentService) ExportRoster(ctx context.Context, courseID, format string) ([]byte, string, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	roster, err := s.ListCourseRoster(ctx, courseID)
	if err != nil {
		return nil, "", err
	}

	data := export.Dataset{
		Headers: []string{"Student Number", "Name", "Status"},
		Rows:    make([]map[string]string, 0, len(roster)),
	}
	for _, entry := range roster {
		data.Rows = append(data.Rows, map[string]string{
			"Student Number": entry.UserNumber,
			"Name":           entry.StudentName,
			"Status":         string(entry.Status),
		})
	}

	switch format {
	case "", "csv":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		title := fmt.Sprintf("%s %s roster", course.Code, course.Section)
		payload, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	}
	return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
}
