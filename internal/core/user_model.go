package core

import (
	"context"
	"time"
)

// Role gates what a user may do.
type Role string

const (
	RoleNPD         Role = "NPD"
	RoleApprover    Role = "Approver"
	RoleMaintenance Role = "Maintenance"
	RoleSpares      Role = "Spares"
	RoleIndentor    Role = "Indentor"
	RoleAdmin       Role = "Admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleNPD, RoleApprover, RoleMaintenance, RoleSpares, RoleIndentor, RoleAdmin:
		return true
	}
	return false
}

// User represents an authenticated system user.
type User struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
}

// UserInput holds the fields required to create a user.
type UserInput struct {
	Username string
	Email    string
	Password string
	Role     Role
}

// UserService manages users and password checks.
type UserService interface {
	CreateUser(ctx context.Context, input UserInput) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	// Authenticate returns the active user whose password matches, or ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*User, error)
}
