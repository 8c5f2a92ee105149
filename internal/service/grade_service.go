package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-enroll-api/internal/models"
	appErrors "github.com/noah-isme/campus-enroll-api/pkg/errors"
)

type gradeRepository interface {
	Upsert(ctx context.Context, grade *models.Grade) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error)
}

// UpsertGradeRequest records or replaces a grade for a student's course term.
type UpsertGradeRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	Term      string `json:"term" validate:"required"`
	Grade     string `json:"grade" validate:"required,max=4"`
}

// GradeService is thin plumbing over grade storage.
type GradeService struct {
	repo      gradeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(repo gradeRepository, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, validator: validate, logger: logger}
}

// Upsert records the grade, replacing any earlier value for the same term.
func (s *GradeService) Upsert(ctx context.Context, req UpsertGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	grade := &models.Grade{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Term:      req.Term,
		Grade:     req.Grade,
	}
	if err := s.repo.Upsert(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to store grade")
	}

	s.logger.Info("grade recorded",
		zap.String("student_id", grade.StudentID),
		zap.String("course_id", grade.CourseID),
		zap.String("term", grade.Term),
	)
	return grade, nil
}

// ListByStudent returns all grades issued to a student.
func (s *GradeService) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	grades, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to list grades")
	}
	return grades, nil
}
