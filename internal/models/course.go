package models

// Course is a scheduled section of a catalog course. Sections of the same
// course share a code but carry distinct ids and capacities.
type Course struct {
	ID           string `db:"id" json:"id"`
	Code         string `db:"code" json:"code"`
	Title        string `db:"title" json:"title"`
	Description  string `db:"description" json:"description,omitempty"`
	Capacity     int    `db:"capacity" json:"capacity"`
	Term         string `db:"term" json:"term,omitempty"`
	AcademicYear string `db:"academic_year" json:"academic_year,omitempty"`
	Section      string `db:"section" json:"section,omitempty"`
}
