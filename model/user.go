// Package model provides data models for the grove system.
package model

import (
	"time"

	"github.com/grovetrack/grove-backend/util"
)

// Roles understood by the backend.
const (
	// RoleAdmin manages species reference data, users, and maintenance jobs.
	RoleAdmin = "admin"
	// RoleSchool is institution staff: plants trees and records measurements.
	RoleSchool = "school"
	// RolePublic browses and adopts trees.
	RolePublic = "public"
)

// ValidRole reports whether a role value is one the backend understands
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleSchool || role == RolePublic
}

// User represents a user in the system
type User struct {
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Role         string    `json:"role"`        // admin, school, public
	Institution  string    `json:"institution"` // set for school users
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates a new user with default values
func NewUser(username, role string) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin returns true if user is admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageTrees reports whether the user may plant or update trees for an
// institution. Admins manage every institution; school staff only their own.
func (u *User) CanManageTrees(institution string) bool {
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleSchool:
		return util.NormalizeInstitutionName(u.Institution) == util.NormalizeInstitutionName(institution)
	}
	return false
}

// CanAdopt reports whether the user may adopt trees.
func (u *User) CanAdopt() bool {
	return u.Role == RolePublic
}

// Sanitized returns a copy safe for API responses.
func (u *User) Sanitized() User {
	out := *u
	out.PasswordHash = ""
	return out
}
