package auth

import "slices"

// Role represents an admin role for role-based access control
type Role string

const (
	// RoleAdmin may change providers and models
	RoleAdmin Role = "admin"

	// RoleViewer may only read the selection screen
	RoleViewer Role = "viewer"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleViewer:
		return true
	default:
		return false
	}
}

// HasPermission checks if a role has permission for a required role.
// Admin implies viewer.
func (r Role) HasPermission(required Role) bool {
	if r == RoleAdmin {
		return true
	}
	return r == required
}

// Permits reports whether any of granted satisfies any of required. An
// empty required list permits everyone.
func Permits(granted []string, required ...Role) bool {
	if len(required) == 0 {
		return true
	}
	return slices.ContainsFunc(granted, func(g string) bool {
		return slices.ContainsFunc(required, Role(g).HasPermission)
	})
}
