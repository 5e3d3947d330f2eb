package entity

import "time"

// Valid roles for User.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
	RoleRider   = "rider"
)

// User is a system user.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, never plaintext in the domain after persisting
	Name         string
	Role         string // admin, manager, staff, rider
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
