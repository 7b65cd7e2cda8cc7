package models

import "time"

// UserRole represents the approval-hierarchy roles.
type UserRole string

const (
	RoleSuperintendent UserRole = "SUPERINTENDENT"
	RoleAdministrator  UserRole = "ADMINISTRATOR"
	RolePrincipal      UserRole = "PRINCIPAL"
	RoleCanteenManager UserRole = "CANTEEN_MANAGER"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	SchoolID     *int64     `db:"school_id" json:"school_id,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
