package models

// Student is a shadow copy of an identity owned by the auth subsystem.
// Rows are inserted on first enrollment attempt and never refreshed, so
// name and number may lag the authoritative record.
type Student struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	UserNumber string `db:"user_number" json:"user_number"`
}
