package models

// UserRole identifies the kind of account.
type UserRole string

// Known roles.
const (
	RoleStudent UserRole = "STUDENT"
	RoleFaculty UserRole = "FACULTY"
	RoleAdmin   UserRole = "ADMIN"
)

// User is an authenticated account.
type User struct {
	ID           string   `db:"id" json:"id"`
	UserNumber   string   `db:"user_number" json:"user_number"`
	Name         string   `db:"name" json:"name"`
	Email        string   `db:"email" json:"email"`
	PasswordHash string   `db:"password_hash" json:"-"`
	Role         UserRole `db:"role" json:"role"`
}
