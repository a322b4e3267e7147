package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetrack/grove-backend/database"
)

func newTestDB(t *testing.T) database.DBConnection {
	t.Helper()
	db, err := database.OpenDatabase(filepath.Join(t.TempDir(), "grove.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

const sampleConfig = `
users:
  - username: institution1
    email: staff@greenwood.example
    role: school
    institution: Greenwood High
    initial_password: inst1234
  - username: public1
    role: public
    initial_password: public123
`

func TestParseProvisioningConfig(t *testing.T) {
	config, err := ParseProvisioningConfig([]byte(sampleConfig))
	require.NoError(t, err)
	require.Len(t, config.Users, 2)
	assert.Equal(t, "institution1", config.Users[0].Username)
	assert.Equal(t, "Greenwood High", config.Users[0].Institution)
	assert.True(t, config.Users[0].Active())
}

func TestParseProvisioningConfigRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing username", "users:\n  - role: public\n    initial_password: longenough\n"},
		{"unknown role", "users:\n  - username: x\n    role: superuser\n    initial_password: longenough\n"},
		{"school without institution", "users:\n  - username: x\n    role: school\n    initial_password: longenough\n"},
		{"weak password", "users:\n  - username: x\n    role: public\n    initial_password: short\n"},
		{"duplicate username", "users:\n  - username: x\n    role: public\n    initial_password: longenough\n  - username: x\n    role: public\n    initial_password: longenough\n"},
		{"not yaml", "users: ["},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseProvisioningConfig([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestApplyProvisioningReconciles(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, BootstrapAdmin(ctx, db))

	config, err := ParseProvisioningConfig([]byte(sampleConfig))
	require.NoError(t, err)

	result, err := ApplyProvisioning(ctx, db, config)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"institution1", "public1"}, result.Created)
	assert.Empty(t, result.Errors)

	user, err := database.GetUser(ctx, db, "institution1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Greenwood High", user.Institution)
	assert.True(t, CheckPasswordHash("inst1234", user.PasswordHash))

	// Second apply: one user changed institution, one dropped.
	second := `
users:
  - username: institution1
    email: staff@greenwood.example
    role: school
    institution: Riverside Academy
    initial_password: inst1234
`
	config, err = ParseProvisioningConfig([]byte(second))
	require.NoError(t, err)

	result, err = ApplyProvisioning(ctx, db, config)
	require.NoError(t, err)
	assert.Equal(t, []string{"institution1"}, result.Updated)
	assert.Equal(t, []string{"public1"}, result.Removed)

	user, err = database.GetUser(ctx, db, "institution1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Riverside Academy", user.Institution)

	// The bootstrap admin survives reconciliation.
	admin, err := database.GetUser(ctx, db, "admin")
	require.NoError(t, err)
	assert.NotNil(t, admin)

	mark, err := database.GetLastApplied(ctx, db, ProvisioningMark)
	require.NoError(t, err)
	assert.False(t, mark.IsZero())
}

func TestBootstrapAdminIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, BootstrapAdmin(ctx, db))
	require.NoError(t, BootstrapAdmin(ctx, db))

	users, err := database.ListUsers(ctx, db)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, "All Institutions", users[0].Institution)
	assert.True(t, CheckPasswordHash("admin123", users[0].PasswordHash))
}
