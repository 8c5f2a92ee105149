package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-enroll-api/internal/models"
)

// GradeRepository persists issued grades. Grades consume enrollment facts
// downstream; nothing here feeds back into admission.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Upsert writes a grade for (student, course, term), replacing any prior value.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	grade.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO grades (id, student_id, course_id, term, grade, updated_at)
        VALUES (:id, :student_id, :course_id, :term, :grade, :updated_at)
        ON CONFLICT (student_id, course_id, term)
        DO UPDATE SET grade = EXCLUDED.grade, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// ListByStudent returns all grades issued to a student.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Grade, error) {
	const query = `SELECT id, student_id, course_id, term, grade, updated_at
        FROM grades WHERE student_id = $1 ORDER BY updated_at DESC`
	grades := []models.Grade{}
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}
