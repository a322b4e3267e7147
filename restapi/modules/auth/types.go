// Package auth provides authentication and authorization types for the REST API.
package auth

// LoginRequest defines the body for password login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse defines the session info returned to the frontend
type UserResponse struct {
	Username    string `json:"username"`
	Role        string `json:"role"`
	Institution string `json:"institution,omitempty"`
}

// ChangePasswordRequest defines the body for a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// CreateUserRequest defines the body for admin user creation
type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Institution string `json:"institution"`
}

// UpdateUserRequest defines the body for admin user updates. Empty or nil
// fields keep their current values.
type UpdateUserRequest struct {
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	Institution *string `json:"institution"`
	IsActive    *bool   `json:"is_active"`
}
