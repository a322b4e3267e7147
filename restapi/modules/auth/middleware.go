package auth

import (
	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the middleware for downstream handlers.
const (
	LocalIsAuthenticated = "is_authenticated"
	LocalUsername        = "username"
	LocalRole            = "role"
	LocalInstitution     = "institution"
)

// RequireAuth middleware validates JWT token from cookie and blocks guests
func RequireAuth(c *fiber.Ctx) error {
	token := c.Cookies("auth_token")
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired session",
		})
	}

	// Store user info in context
	c.Locals(LocalIsAuthenticated, true)
	c.Locals(LocalUsername, claims.Username)
	c.Locals(LocalRole, claims.Role)
	c.Locals(LocalInstitution, claims.Institution)

	return c.Next()
}

// OptionalAuth identifies the user if a token is present but does not block guests.
// This allows a single endpoint to serve both public and private data based on role.
func OptionalAuth(c *fiber.Ctx) error {
	token := c.Cookies("auth_token")
	if token == "" {
		c.Locals(LocalIsAuthenticated, false)
		return c.Next()
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		// Treat invalid/expired tokens as guest access
		c.Locals(LocalIsAuthenticated, false)
		return c.Next()
	}

	c.Locals(LocalIsAuthenticated, true)
	c.Locals(LocalUsername, claims.Username)
	c.Locals(LocalRole, claims.Role)
	c.Locals(LocalInstitution, claims.Institution)

	return c.Next()
}

// RequireRole middleware checks if user has one of the required roles
func RequireRole(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole, ok := c.Locals(LocalRole).(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		for _, role := range allowedRoles {
			if userRole == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}

// SessionUser reads the authenticated user's identity from request locals.
// ok is false for guest requests.
func SessionUser(c *fiber.Ctx) (username, role, institution string, ok bool) {
	username, ok = c.Locals(LocalUsername).(string)
	if !ok {
		return "", "", "", false
	}
	role, _ = c.Locals(LocalRole).(string)
	institution, _ = c.Locals(LocalInstitution).(string)
	return username, role, institution, true
}
