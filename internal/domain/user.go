package domain

import "time"

// Role represents the marketplace role of a user.
type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
	RoleAgent      Role = "agent"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// IsValid checks if the role is one of the allowed values.
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleFreelancer, RoleAgent, RoleAdmin, RoleSuperadmin:
		return true
	default:
		return false
	}
}

// IsStaff returns true for back-office roles that act on behalf of the platform.
func (r Role) IsStaff() bool {
	return r == RoleAgent || r == RoleAdmin || r == RoleSuperadmin
}

// User represents a registered account in any role.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	Token     string
	IsActive  bool
	CreatedAt time.Time
}

// Actor identifies who is performing an operation.
type Actor struct {
	ID   string
	Role Role
}
