package models

// EnrollmentStatus is the admission outcome for a (student, course) pair.
type EnrollmentStatus string

// Possible enrollment statuses. A record is created as ENROLLED or
// WAITLISTED, moves to DROPPED on drop, and may leave DROPPED again on
// re-enrollment. It is never deleted.
const (
	StatusEnrolled   EnrollmentStatus = "ENROLLED"
	StatusWaitlisted EnrollmentStatus = "WAITLISTED"
	StatusDropped    EnrollmentStatus = "DROPPED"
)

// Valid reports whether s is one of the known statuses.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case StatusEnrolled, StatusWaitlisted, StatusDropped:
		return true
	}
	return false
}

// Active reports whether the record holds (or queues for) a seat.
func (s EnrollmentStatus) Active() bool {
	return s == StatusEnrolled || s == StatusWaitlisted
}

// Enrollment captures a student's registration to a course section.
type Enrollment struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	CourseID  string           `db:"course_id" json:"course_id"`
	Status    EnrollmentStatus `db:"status" json:"status"`
}

// EnrollmentDetail enriches Enrollment with course term context for display.
type EnrollmentDetail struct {
	Enrollment
	Term         string `db:"term" json:"term"`
	AcademicYear string `db:"academic_year" json:"academic_year"`
}

// RosterEntry is one seated student on a course roster.
type RosterEntry struct {
	StudentID   string           `db:"student_id" json:"student_id"`
	StudentName string           `db:"student_name" json:"student_name"`
	UserNumber  string           `db:"user_number" json:"user_number"`
	Status      EnrollmentStatus `db:"status" json:"status"`
}
