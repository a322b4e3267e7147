// Package auth provides declarative user provisioning from YAML.
package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v2"

	"github.com/grovetrack/grove-backend/database"
	"github.com/grovetrack/grove-backend/model"
	"github.com/grovetrack/grove-backend/util"
)

// ProvisioningMark is the metadata key recording the last successful apply.
const ProvisioningMark = "provisioning_last_applied"

// ProvisioningConfig represents the YAML structure
type ProvisioningConfig struct {
	Users []ProvisionedUser `yaml:"users"`
}

// ProvisionedUser represents a user account in the config
type ProvisionedUser struct {
	Username        string `yaml:"username"`
	Email           string `yaml:"email,omitempty"`
	Role            string `yaml:"role"`
	Institution     string `yaml:"institution,omitempty"`
	InitialPassword string `yaml:"initial_password"` // only used when the account is created
	IsActive        *bool  `yaml:"is_active,omitempty"`
}

// Active returns the is_active value, defaulting to true when omitted.
func (u ProvisionedUser) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// ProvisioningResult tracks the outcome of an apply operation
type ProvisioningResult struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
	Removed []string `json:"removed"`
	Errors  []string `json:"errors"`
}

// LoadProvisioningConfig reads and parses a provisioning YAML file
func LoadProvisioningConfig(path string) (*ProvisioningConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseProvisioningConfig(data)
}

// ParseProvisioningConfig parses and validates provisioning YAML
func ParseProvisioningConfig(data []byte) (*ProvisioningConfig, error) {
	var config ProvisioningConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// validateConfig ensures the configuration is valid
func validateConfig(config *ProvisioningConfig) error {
	seenUsernames := make(map[string]bool)

	for _, user := range config.Users {
		if user.Username == "" {
			return fmt.Errorf("username is required")
		}
		if seenUsernames[user.Username] {
			return fmt.Errorf("duplicate username: %s", user.Username)
		}
		seenUsernames[user.Username] = true

		if !model.ValidRole(user.Role) {
			return fmt.Errorf("invalid role %q for user %s", user.Role, user.Username)
		}
		if user.Role == model.RoleSchool && user.Institution == "" {
			return fmt.Errorf("institution is required for school user %s", user.Username)
		}
		if err := ValidatePasswordStrength(user.InitialPassword); err != nil {
			return fmt.Errorf("initial_password for user %s: %w", user.Username, err)
		}
	}
	return nil
}

// ApplyProvisioning reconciles the user table with the YAML configuration.
// Accounts missing from the config are removed, except the bootstrap admin.
func ApplyProvisioning(ctx context.Context, db database.DBConnection, config *ProvisioningConfig) (*ProvisioningResult, error) {
	result := &ProvisioningResult{
		Created: []string{},
		Updated: []string{},
		Removed: []string{},
		Errors:  []string{},
	}

	existingUsers, err := database.ListUsers(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	existingUserMap := make(map[string]model.User)
	for _, user := range existingUsers {
		existingUserMap[user.Username] = user
	}

	configUsernames := make(map[string]bool)
	for _, configUser := range config.Users {
		configUsernames[configUser.Username] = true

		if existingUser, exists := existingUserMap[configUser.Username]; exists {
			if err := updateUserFromConfig(ctx, db, existingUser, configUser, result); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to update %s: %v", configUser.Username, err))
			}
		} else {
			if err := createUserFromConfig(ctx, db, configUser); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to create %s: %v", configUser.Username, err))
			} else {
				result.Created = append(result.Created, configUser.Username)
			}
		}
	}

	bootstrapAdmin := util.GetEnvDefault("ADMIN_USERNAME", "admin")
	for username := range existingUserMap {
		if username == bootstrapAdmin {
			continue
		}
		if !configUsernames[username] {
			if err := database.DeleteUser(ctx, db, username); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Failed to remove %s: %v", username, err))
			} else {
				result.Removed = append(result.Removed, username)
			}
		}
	}

	if err := database.SaveLastApplied(ctx, db, ProvisioningMark, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to record apply mark: %w", err)
	}

	return result, nil
}

// createUserFromConfig creates a new account with its initial password
func createUserFromConfig(ctx context.Context, db database.DBConnection, configUser ProvisionedUser) error {
	hash, err := HashPassword(configUser.InitialPassword)
	if err != nil {
		return err
	}

	user := model.NewUser(configUser.Username, configUser.Role)
	user.Email = configUser.Email
	user.PasswordHash = hash
	user.Institution = configUser.Institution
	user.IsActive = configUser.Active()

	return database.CreateUser(ctx, db, user)
}

// updateUserFromConfig updates an existing account if changes are detected.
// The stored password hash is never touched on update.
func updateUserFromConfig(ctx context.Context, db database.DBConnection, existingUser model.User, configUser ProvisionedUser, result *ProvisioningResult) error {
	needsUpdate := false

	if configUser.Email != "" && existingUser.Email != configUser.Email {
		existingUser.Email = configUser.Email
		needsUpdate = true
	}
	if existingUser.Role != configUser.Role {
		existingUser.Role = configUser.Role
		needsUpdate = true
	}
	if existingUser.Institution != configUser.Institution {
		existingUser.Institution = configUser.Institution
		needsUpdate = true
	}
	if existingUser.IsActive != configUser.Active() {
		existingUser.IsActive = configUser.Active()
		needsUpdate = true
	}

	if needsUpdate {
		if err := database.UpdateUser(ctx, db, &existingUser); err != nil {
			return err
		}
		result.Updated = append(result.Updated, configUser.Username)
	}
	return nil
}

// ============================================================================
// HANDLERS
// ============================================================================

// ApplyProvisioningConfig applies a YAML config posted as the request body
func ApplyProvisioningConfig(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		config, err := ParseProvisioningConfig(c.Body())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		result, err := ApplyProvisioning(c.Context(), db, config)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(fiber.Map{
			"message": "Provisioning applied",
			"result":  result,
		})
	}
}

// GetProvisioningStatus returns when a config was last applied
func GetProvisioningStatus(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mark, err := database.GetLastApplied(c.Context(), db, ProvisioningMark)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read provisioning status"})
		}

		if mark.IsZero() {
			return c.JSON(fiber.Map{"applied": false})
		}
		return c.JSON(fiber.Map{
			"applied":      true,
			"last_applied": mark.Format(time.RFC3339),
		})
	}
}
