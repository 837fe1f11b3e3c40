package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spclub/api/internal/models"
)

func testAdmin() models.Admin {
	return models.Admin{
		ID:          "admin-1",
		Username:    "priya",
		Email:       "priya@spclub.example",
		Role:        models.AdminRoleSuperAdmin,
		Permissions: models.DefaultPermissions(models.AdminRoleSuperAdmin),
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	const secret = "roundtrip-secret"
	signed, err := GenerateAdminToken(secret, testAdmin(), "device-a", "tok-1", time.Hour)
	require.NoError(t, err)

	claims, err := ParseAdminToken(signed, secret)
	require.NoError(t, err)

	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, "priya", claims.Username)
	assert.Equal(t, models.AdminRoleSuperAdmin, claims.Role)
	assert.Equal(t, "device-a", claims.DeviceID)
	assert.Equal(t, "tok-1", claims.ID)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.True(t, claims.Permissions.Has(models.CapabilityManageAdmins))
}

func TestTokenWrongSecret(t *testing.T) {
	t.Parallel()

	signed, err := GenerateAdminToken("the-real-secret", testAdmin(), "device-a", "tok-1", time.Hour)
	require.NoError(t, err)

	_, err = ParseAdminToken(signed, "a-different-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	t.Parallel()

	const secret = "expiry-secret"
	signed, err := GenerateAdminToken(secret, testAdmin(), "device-a", "tok-1", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAdminToken(signed, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbageInput(t *testing.T) {
	t.Parallel()

	_, err := ParseAdminToken("not-a-jwt", "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
