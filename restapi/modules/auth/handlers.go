// Package auth provides authentication handlers for Fiber.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/model"
	"github.com/grovetrack/grove-backend/util"
)

// ============================================================================
// AUTH HANDLERS
// ============================================================================

// Login handles user login and sets auth cookie
func Login(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		if req.Username == "" || req.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password are required"})
		}

		ctx := c.Context()
		user, err := database.GetUser(ctx, db, req.Username)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up user"})
		}
		if user == nil || !CheckPasswordHash(req.Password, user.PasswordHash) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}

		if !user.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Account is inactive"})
		}

		token, err := GenerateJWT(user.Username, user.Role, user.Institution)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
		}

		SetAuthCookie(c, token)

		return c.JSON(fiber.Map{
			"message":     "Login successful",
			"username":    user.Username,
			"email":       user.Email,
			"role":        user.Role,
			"institution": user.Institution,
		})
	}
}

// Logout clears the auth cookie
func Logout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     "auth_token",
			Value:    "",
			Expires:  time.Now().Add(-1 * time.Hour),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   false,
			SameSite: "Lax",
			Path:     "/",
		})
		return c.JSON(fiber.Map{"message": "Logged out successfully"})
	}
}

// Me returns current authenticated user info
func Me(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, ok := c.Locals(LocalUsername).(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		}

		ctx := c.Context()
		user, err := database.GetUser(ctx, db, username)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user profile"})
		}
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not authenticated"})
		}

		return c.JSON(fiber.Map{
			"username":    user.Username,
			"email":       user.Email,
			"role":        user.Role,
			"institution": user.Institution,
		})
	}
}

// ChangePassword handles password change
func ChangePassword(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, ok := c.Locals(LocalUsername).(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authentication required"})
		}

		var req ChangePasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		if err := ValidatePasswordStrength(req.NewPassword); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		ctx := c.Context()
		user, err := database.GetUser(ctx, db, username)
		if err != nil || user == nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get user"})
		}

		if !CheckPasswordHash(req.OldPassword, user.PasswordHash) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid old password"})
		}

		newHash, err := HashPassword(req.NewPassword)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
		}

		user.PasswordHash = newHash

		if err := database.UpdateUser(ctx, db, user); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update password"})
		}

		return c.JSON(fiber.Map{"message": "Password changed successfully"})
	}
}

// RefreshToken refreshes JWT token
func RefreshToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		oldToken := c.Cookies("auth_token")
		if oldToken == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "No token to refresh"})
		}

		newToken, err := RefreshJWT(oldToken)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		SetAuthCookie(c, newToken)
		return c.JSON(fiber.Map{"message": "Token refreshed successfully"})
	}
}

// ============================================================================
// USER ADMINISTRATION
// ============================================================================

// ListUsers lists all users
func ListUsers(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		users, err := database.ListUsers(ctx, db)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list users"})
		}

		userList := make([]fiber.Map, len(users))
		for i, user := range users {
			userList[i] = fiber.Map{
				"username":    user.Username,
				"email":       user.Email,
				"role":        user.Role,
				"institution": user.Institution,
				"is_active":   user.IsActive,
			}
		}

		return c.JSON(fiber.Map{
			"users": userList,
			"total": len(userList),
		})
	}
}

// CreateUser creates a new user
func CreateUser(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		if req.Username == "" || req.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password are required"})
		}
		if !model.ValidRole(req.Role) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Role must be admin, school, or public"})
		}
		if req.Role == model.RoleSchool && strings.TrimSpace(req.Institution) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Institution is required for school users"})
		}
		if err := ValidatePasswordStrength(req.Password); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		ctx := c.Context()
		existing, err := database.GetUser(ctx, db, req.Username)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up user"})
		}
		if existing != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username already exists"})
		}

		passwordHash, err := HashPassword(req.Password)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
		}

		user := model.NewUser(req.Username, req.Role)
		user.Email = req.Email
		user.PasswordHash = passwordHash
		user.Institution = strings.TrimSpace(req.Institution)

		if err := database.CreateUser(ctx, db, user); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "User created successfully",
			"user": fiber.Map{
				"username":    user.Username,
				"email":       user.Email,
				"role":        user.Role,
				"institution": user.Institution,
			},
		})
	}
}

// GetUser retrieves a user by username
func GetUser(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.Params("username")
		ctx := c.Context()

		user, err := database.GetUser(ctx, db, username)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up user"})
		}
		if user == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}

		return c.JSON(fiber.Map{"user": user.Sanitized()})
	}
}

// UpdateUser updates a user
func UpdateUser(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.Params("username")

		var req UpdateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		ctx := c.Context()
		user, err := database.GetUser(ctx, db, username)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to look up user"})
		}
		if user == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}

		if req.Email != "" {
			user.Email = req.Email
		}
		if req.Role != "" {
			if !model.ValidRole(req.Role) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Role must be admin, school, or public"})
			}
			user.Role = req.Role
		}
		if req.Institution != nil {
			user.Institution = strings.TrimSpace(*req.Institution)
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}

		if err := database.UpdateUser(ctx, db, user); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
		}

		return c.JSON(fiber.Map{
			"message": "User updated successfully",
			"user":    user.Sanitized(),
		})
	}
}

// DeleteUser deletes a user
func DeleteUser(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.Params("username")
		currentUser, ok := c.Locals(LocalUsername).(string)
		if ok && currentUser == username {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot delete your own account"})
		}

		ctx := c.Context()
		if err := database.DeleteUser(ctx, db, username); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
		}

		return c.JSON(fiber.Map{"message": "User deleted successfully"})
	}
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

// SetAuthCookie sets the authentication cookie for a user session.
func SetAuthCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    token,
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   int(GetJWTExpirationTime().Seconds()),
		Path:     "/",
	})
}

// BootstrapAdmin ensures the default admin account exists. Credentials come
// from ADMIN_USERNAME and ADMIN_PASSWORD; the fallback admin/admin123 is for
// local development only.
func BootstrapAdmin(ctx context.Context, db database.DBConnection) error {
	username := util.GetEnvDefault("ADMIN_USERNAME", "admin")

	existing, err := database.GetUser(ctx, db, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := HashPassword(util.GetEnvDefault("ADMIN_PASSWORD", "admin123"))
	if err != nil {
		return err
	}

	user := model.NewUser(username, model.RoleAdmin)
	user.Email = username + "@grove.local"
	user.Institution = "All Institutions"
	user.PasswordHash = hash

	return database.CreateUser(ctx, db, user)
}
