package models

import "time"

// Grade records a letter grade issued for a student in a course and term.
type Grade struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Term      string    `db:"term" json:"term"`
	Grade     string    `db:"grade" json:"grade"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
