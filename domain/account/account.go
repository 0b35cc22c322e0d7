// Package account provides user account value types and pure role checks.
package account

import "time"

// Role orders account privileges.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Level returns the privilege rank of a role. Unknown roles rank below
// every known role.
func (r Role) Level() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether the role meets a minimum required role.
func (r Role) AtLeast(min Role) bool {
	return r.Level() >= min.Level()
}

// Account statuses.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// Account represents a user account.
type Account struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the account may authenticate.
func (a Account) Active() bool {
	return a.Status == StatusActive
}
