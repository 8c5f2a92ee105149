package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-enroll-api/internal/models"
)

// Sentinel errors surfaced by the admission flow. Services translate these
// into caller-visible error codes; anything else is a storage failure.
var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrDuplicateEnrollment = errors.New("already enrolled in this course section")
	ErrSectionConflict     = errors.New("already enrolled in another section of this course")
)

// EnrollmentRepository owns the roster store: enrollment records and the
// student shadow table.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const uniqueViolation = "23505"

// decideStatus grants a seat while occupancy is under capacity.
func decideStatus(occupancy, capacity int) models.EnrollmentStatus {
	if occupancy < capacity {
		return models.StatusEnrolled
	}
	return models.StatusWaitlisted
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Admit decides ENROLLED or WAITLISTED for a (student, course) request and
// persists the outcome. The whole sequence runs in one transaction with the
// course row locked, so concurrent admissions for the same course serialize
// and the occupancy count stays consistent with the write.
func (r *EnrollmentRepository) Admit(ctx context.Context, studentID, courseID string) (*models.EnrollmentDetail, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin admission: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Lock the course row for the duration of the admission. This is what
	// keeps two concurrent admits from both reading "under capacity".
	var course models.Course
	const courseQuery = `SELECT id, code, title, description, capacity, term, academic_year, section
        FROM courses WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &course, courseQuery, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("lock course: %w", err)
	}

	// Shadow row for roster lookups, seeded from the auth users table when
	// available. Insert-only: an existing row is never refreshed.
	const ensureStudent = `INSERT INTO students (id, name, user_number)
        VALUES ($1,
                COALESCE((SELECT name FROM users WHERE id = $1), ''),
                (SELECT user_number FROM users WHERE id = $1))
        ON CONFLICT (id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, ensureStudent, studentID); err != nil {
		return nil, fmt.Errorf("ensure student: %w", err)
	}

	// A student may hold at most one active section per course code.
	var conflictID string
	const sectionQuery = `SELECT e.id FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1 AND c.code = $2 AND e.course_id <> $3 AND e.status <> $4
        LIMIT 1`
	err = tx.GetContext(ctx, &conflictID, sectionQuery, studentID, course.Code, courseID, models.StatusDropped)
	if err == nil {
		return nil, ErrSectionConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check section conflict: %w", err)
	}

	var existing models.Enrollment
	const pairQuery = `SELECT id, student_id, course_id, status FROM enrollments
        WHERE student_id = $1 AND course_id = $2`
	err = tx.GetContext(ctx, &existing, pairQuery, studentID, courseID)
	switch {
	case err == nil && existing.Status != models.StatusDropped:
		return nil, ErrDuplicateEnrollment
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("check existing enrollment: %w", err)
	}
	reuse := err == nil

	var occupancy int
	const occupancyQuery = `SELECT COUNT(*) FROM enrollments WHERE course_id = $1 AND status = $2`
	if err := tx.GetContext(ctx, &occupancy, occupancyQuery, courseID, models.StatusEnrolled); err != nil {
		return nil, fmt.Errorf("count occupancy: %w", err)
	}
	status := decideStatus(occupancy, course.Capacity)

	record := models.Enrollment{StudentID: studentID, CourseID: courseID, Status: status}
	if reuse {
		// Re-enrollment into a previously dropped section keeps the record id.
		record.ID = existing.ID
		if _, err := tx.ExecContext(ctx, `UPDATE enrollments SET status = $2 WHERE id = $1`, record.ID, status); err != nil {
			return nil, fmt.Errorf("reactivate enrollment: %w", err)
		}
	} else {
		record.ID = uuid.NewString()
		const insertQuery = `INSERT INTO enrollments (id, student_id, course_id, status) VALUES ($1, $2, $3, $4)`
		if _, err := tx.ExecContext(ctx, insertQuery, record.ID, studentID, courseID, status); err != nil {
			if isUniqueViolation(err) {
				// A concurrent admit for the same pair won the insert race.
				return nil, ErrDuplicateEnrollment
			}
			return nil, fmt.Errorf("insert enrollment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEnrollment
		}
		return nil, fmt.Errorf("commit admission: %w", err)
	}

	return &models.EnrollmentDetail{
		Enrollment:   record,
		Term:         course.Term,
		AcademicYear: course.AcademicYear,
	}, nil
}

// Drop sets an enrollment to DROPPED. Dropping an already-dropped record is
// a no-op on status. Waitlisted entries are not promoted here; occupancy is
// re-evaluated lazily on the next admit for the course.
func (r *EnrollmentRepository) Drop(ctx context.Context, enrollmentID string) (*models.EnrollmentDetail, error) {
	var detail models.EnrollmentDetail
	const query = `SELECT e.id, e.student_id, e.course_id, e.status, c.term, c.academic_year
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.id = $1`
	if err := r.db.GetContext(ctx, &detail, query, enrollmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `UPDATE enrollments SET status = $2 WHERE id = $1`, enrollmentID, models.StatusDropped); err != nil {
		return nil, fmt.Errorf("drop enrollment: %w", err)
	}

	detail.Status = models.StatusDropped
	return &detail, nil
}

// ListByStudent returns a student's enrollments joined with course term
// context. An empty status lists every record, dropped ones included.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string, status models.EnrollmentStatus) ([]models.EnrollmentDetail, error) {
	query := `SELECT e.id, e.student_id, e.course_id, e.status, c.term, c.academic_year
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.student_id = $1`
	args := []interface{}{studentID}
	if status != "" {
		query += fmt.Sprintf(" AND e.status = $%d", len(args)+1)
		args = append(args, status)
	}

	enrollments := []models.EnrollmentDetail{}
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// Roster returns the seated students for a course. Waitlisted and dropped
// records are excluded.
func (r *EnrollmentRepository) Roster(ctx context.Context, courseID string) ([]models.RosterEntry, error) {
	const query = `SELECT e.student_id, s.name AS student_name, COALESCE(s.user_number, '') AS user_number, e.status
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        WHERE e.course_id = $1 AND e.status = $2`

	roster := []models.RosterEntry{}
	if err := r.db.SelectContext(ctx, &roster, query, courseID, models.StatusEnrolled); err != nil {
		return nil, fmt.Errorf("list course roster: %w", err)
	}
	return roster, nil
}
