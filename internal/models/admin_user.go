package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AdminUser is an account allowed to use the embedding admin endpoints.
// Passwords are stored as Argon2id hashes.
type AdminUser struct {
	ID           uuid.UUID      `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	Roles        pq.StringArray `db:"roles"` // "admin", "viewer"
	Enabled      bool           `db:"enabled"`
	LastLoginAt  *time.Time     `db:"last_login_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// HasRole checks if the user has a specific role
func (u *AdminUser) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// HasAnyRole checks if the user has any of the specified roles
func (u *AdminUser) HasAnyRole(roles ...string) bool {
	return slices.ContainsFunc(roles, u.HasRole)
}

// IsValid checks if the user account may log in
func (u *AdminUser) IsValid() bool {
	return u.Enabled
}
