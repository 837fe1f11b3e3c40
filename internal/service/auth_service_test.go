package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spclub/api/internal/config"
	"spclub/api/internal/models"
	"spclub/api/internal/repository"
	"spclub/api/internal/security"
)

type fakeAdminStore struct {
	byID map[string]models.Admin
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{byID: make(map[string]models.Admin)}
}

func (f *fakeAdminStore) Create(_ context.Context, admin models.Admin) error {
	for _, existing := range f.byID {
		if existing.Username == admin.Username || existing.Email == admin.Email {
			return repository.ErrAdminExists
		}
	}
	f.byID[admin.ID] = admin
	return nil
}

func (f *fakeAdminStore) FindByLogin(_ context.Context, login string) (models.Admin, error) {
	login = strings.ToLower(login)
	for _, admin := range f.byID {
		if admin.Username == login || admin.Email == login {
			return admin, nil
		}
	}
	return models.Admin{}, repository.ErrAdminNotFound
}

func (f *fakeAdminStore) GetByID(_ context.Context, id string) (models.Admin, error) {
	admin, ok := f.byID[id]
	if !ok {
		return models.Admin{}, repository.ErrAdminNotFound
	}
	return admin, nil
}

func (f *fakeAdminStore) Count(_ context.Context) (int, error) {
	return len(f.byID), nil
}

func (f *fakeAdminStore) UpdateEmail(_ context.Context, id string, email string) error {
	admin, ok := f.byID[id]
	if !ok {
		return repository.ErrAdminNotFound
	}
	admin.Email = email
	f.byID[id] = admin
	return nil
}

func (f *fakeAdminStore) UpdatePassword(_ context.Context, id string, passwordHash []byte) error {
	admin, ok := f.byID[id]
	if !ok {
		return repository.ErrAdminNotFound
	}
	admin.PasswordHash = passwordHash
	f.byID[id] = admin
	return nil
}

func (f *fakeAdminStore) SetActive(_ context.Context, id string, active bool) error {
	admin, ok := f.byID[id]
	if !ok {
		return repository.ErrAdminNotFound
	}
	admin.IsActive = active
	f.byID[id] = admin
	return nil
}

func (f *fakeAdminStore) List(_ context.Context) ([]models.Admin, error) {
	var out []models.Admin
	for _, admin := range f.byID {
		out = append(out, admin)
	}
	return out, nil
}

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		JWTSecret:         "test-secret-test-secret-test-secret",
		JWTTTL:            24 * time.Hour,
		MaxSessions:       2,
		SessionIdleWindow: 5 * time.Minute,
	}
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeAdminStore, *fakeSessionStore) {
	t.Helper()
	admins := newFakeAdminStore()
	sessionStore := newFakeSessionStore()
	cfg := testSecurityConfig()
	sessions := NewSessionService(sessionStore, cfg, zerolog.Nop())
	return NewAuthService(admins, sessions, cfg, zerolog.Nop()), admins, sessionStore
}

func signupTestAdmin(t *testing.T, svc *AuthService) models.Admin {
	t.Helper()
	admin, err := svc.Signup(context.Background(), SignupInput{
		Username:        "Priya",
		Email:           "priya@spclub.example",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	})
	require.NoError(t, err)
	return admin
}

func TestSignupFirstAdminIsSuperAdmin(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	admin := signupTestAdmin(t, svc)

	assert.Equal(t, models.AdminRoleSuperAdmin, admin.Role)
	assert.Equal(t, "priya", admin.Username, "username is normalized to lowercase")
	assert.True(t, admin.Permissions.Has(models.CapabilityManageAdmins))
	assert.True(t, admin.Permissions.Has(models.CapabilityDelete))
	assert.True(t, admin.IsActive)

	second, err := svc.Signup(context.Background(), SignupInput{
		Username:        "rahul",
		Email:           "rahul@spclub.example",
		Password:        "another-pass",
		ConfirmPassword: "another-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AdminRoleAdmin, second.Role)
	assert.False(t, second.Permissions.Has(models.CapabilityManageAdmins))
	assert.True(t, second.Permissions.Has(models.CapabilityApprove))
}

func TestSignupPasswordMismatch(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	_, err := svc.Signup(context.Background(), SignupInput{
		Username:        "priya",
		Email:           "priya@spclub.example",
		Password:        "correct-horse",
		ConfirmPassword: "battery-staple",
	})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestLoginMintsVerifiableToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	signupTestAdmin(t, svc)

	result, err := svc.Login(context.Background(), LoginInput{
		Login:      "priya",
		Password:   "correct-horse",
		DeviceID:   "device-a",
		DeviceName: "Firefox on Fedora",
	})
	require.NoError(t, err)

	assert.Equal(t, "device-a", result.DeviceID)
	assert.Equal(t, 1, result.SessionCount)

	claims, err := security.ParseAdminToken(result.Token, testSecurityConfig().JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, result.Admin.ID, claims.AdminID)
	assert.Equal(t, "device-a", claims.DeviceID)
	assert.Equal(t, models.AdminRoleSuperAdmin, claims.Role)
}

func TestLoginByEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	signupTestAdmin(t, svc)

	_, err := svc.Login(context.Background(), LoginInput{
		Login:    "priya@spclub.example",
		Password: "correct-horse",
	})
	require.NoError(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	signupTestAdmin(t, svc)

	_, err := svc.Login(context.Background(), LoginInput{
		Login:    "priya",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownAccount(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	_, err := svc.Login(context.Background(), LoginInput{
		Login:    "nobody",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	t.Parallel()

	svc, admins, _ := newTestAuthService(t)
	admin := signupTestAdmin(t, svc)

	require.NoError(t, admins.SetActive(context.Background(), admin.ID, false))

	_, err := svc.Login(context.Background(), LoginInput{
		Login:    "priya",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestLoginThirdDeviceRefused(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	signupTestAdmin(t, svc)

	ctx := context.Background()
	for _, device := range []string{"device-a", "device-b"} {
		_, err := svc.Login(ctx, LoginInput{
			Login: "priya", Password: "correct-horse", DeviceID: device,
		})
		require.NoError(t, err)
	}

	_, err := svc.Login(ctx, LoginInput{
		Login: "priya", Password: "correct-horse", DeviceID: "device-c",
	})
	var limitErr *DeviceLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Len(t, limitErr.Sessions, 2)
}

func TestLogoutFreesDeviceSlot(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	admin := signupTestAdmin(t, svc)

	ctx := context.Background()
	for _, device := range []string{"device-a", "device-b"} {
		_, err := svc.Login(ctx, LoginInput{
			Login: "priya", Password: "correct-horse", DeviceID: device,
		})
		require.NoError(t, err)
	}

	remaining, err := svc.Logout(ctx, admin.ID, "device-b")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	result, err := svc.Login(ctx, LoginInput{
		Login: "priya", Password: "correct-horse", DeviceID: "device-c",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SessionCount)
}

func TestUpdateProfileRequiresCurrentPassword(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	admin := signupTestAdmin(t, svc)

	ctx := context.Background()
	_, err := svc.UpdateProfile(ctx, admin.ID, UpdateProfileInput{
		NewPassword: "new-password",
	})
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.UpdateProfile(ctx, admin.ID, UpdateProfileInput{
		CurrentPassword: "not-the-password",
		NewPassword:     "new-password",
	})
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.UpdateProfile(ctx, admin.ID, UpdateProfileInput{
		CurrentPassword: "correct-horse",
		NewPassword:     "new-password",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Login: "priya", Password: "new-password"})
	require.NoError(t, err)
}

func TestUpdateProfileChangesEmail(t *testing.T) {
	t.Parallel()

	svc, admins, _ := newTestAuthService(t)
	admin := signupTestAdmin(t, svc)

	updated, err := svc.UpdateProfile(context.Background(), admin.ID, UpdateProfileInput{
		Email: "New.Address@spclub.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "new.address@spclub.example", updated.Email)

	stored, err := admins.GetByID(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "new.address@spclub.example", stored.Email)
}
