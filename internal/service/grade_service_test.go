package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-enroll-api/internal/models"
	appErrors "github.com/noah-isme/campus-enroll-api/pkg/errors"
)

type mockGradeRepo struct {
	upserts []models.Grade
}

func (m *mockGradeRepo) Upsert(ctx context.Context, grade *models.Grade) error {
	for i, g := range m.upserts {
		if g.StudentID == grade.StudentID && g.CourseID == grade.CourseID && g.Term == grade.Term {
			m.upserts[i] = *grade
			return nil
		}
	}
	m.upserts = append(m.upserts, *grade)
	return nil
}

func (m *mockGradeRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	out := []models.Grade{}
	for _, g := range m.upserts {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	return out, nil
}

func TestGradeUpsertReplacesSameTerm(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := NewGradeService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertGradeRequest{StudentID: "stu-1", CourseID: "course-1", Term: "Fall", Grade: "B+"})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, UpsertGradeRequest{StudentID: "stu-1", CourseID: "course-1", Term: "Fall", Grade: "A"})
	require.NoError(t, err)

	grades, err := svc.ListByStudent(ctx, "stu-1")
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, "A", grades[0].Grade)
}

func TestGradeUpsertValidatesPayload(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil)

	_, err := svc.Upsert(context.Background(), UpsertGradeRequest{StudentID: "stu-1", CourseID: "course-1", Term: "Fall", Grade: "EXCELLENT"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestGradeListRequiresStudentID(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, nil, nil)

	_, err := svc.ListByStudent(context.Background(), "")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
