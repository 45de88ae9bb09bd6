package domain

import "time"

// Role enumerates the three disjoint capability sets. Roles are not
// ranked; each one is checked explicitly where it matters.
type Role string

const (
	RoleRequester  Role = "requester"
	RoleTechnician Role = "technician"
	RoleManager    Role = "manager"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleRequester, RoleTechnician, RoleManager:
		return true
	}
	return false
}

// User is the single account model; the role decides what the workflow
// lets the account do.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	FirstName    string
	LastName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
