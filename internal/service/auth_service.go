package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/rs/zerolog"

	"spclub/api/internal/config"
	"spclub/api/internal/ids"
	"spclub/api/internal/models"
	"spclub/api/internal/repository"
	"spclub/api/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// AdminStore is the admin persistence surface consumed by AuthService.
// Implemented by repository.AdminRepository.
type AdminStore interface {
	Create(ctx context.Context, admin models.Admin) error
	FindByLogin(ctx context.Context, login string) (models.Admin, error)
	GetByID(ctx context.Context, id string) (models.Admin, error)
	Count(ctx context.Context) (int, error)
	UpdateEmail(ctx context.Context, id string, email string) error
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context) ([]models.Admin, error)
}

type AuthService struct {
	admins   AdminStore
	sessions *SessionService
	cfg      config.SecurityConfig
	log      zerolog.Logger
}

func NewAuthService(admins AdminStore, sessions *SessionService, cfg config.SecurityConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		admins:   admins,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

type SignupInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(6, 128)),
		validation.Field(&in.ConfirmPassword, validation.Required),
	)
}

// Signup creates an administrator account. The first account ever created
// becomes a super admin with delete and admin-management capabilities.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (models.Admin, error) {
	if err := input.Validate(); err != nil {
		return models.Admin{}, err
	}
	if input.Password != input.ConfirmPassword {
		return models.Admin{}, ErrPasswordMismatch
	}

	count, err := s.admins.Count(ctx)
	if err != nil {
		return models.Admin{}, err
	}
	role := models.AdminRoleAdmin
	if count == 0 {
		role = models.AdminRoleSuperAdmin
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.Admin{}, err
	}

	admin := models.Admin{
		ID:           ids.New(),
		Username:     strings.ToLower(strings.TrimSpace(input.Username)),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: passwordHash,
		Role:         role,
		Permissions:  models.DefaultPermissions(role),
		IsActive:     true,
	}

	if err := s.admins.Create(ctx, admin); err != nil {
		return models.Admin{}, err
	}

	s.log.Info().Str("username", admin.Username).Str("role", string(role)).Msg("admin created")
	return admin, nil
}

type LoginInput struct {
	Login      string
	Password   string
	DeviceID   string
	DeviceName string
}

type LoginResult struct {
	Token        string
	Admin        models.Admin
	DeviceID     string
	SessionCount int
}

// Login authenticates, runs device admission, and mints the bearer token.
// A DeviceLimitError is returned unwrapped so callers can show the user
// which devices are currently logged in.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	admin, err := s.admins.FindByLogin(ctx, input.Login)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !admin.IsActive {
		return LoginResult{}, ErrAccountDeactivated
	}

	ok, err := security.VerifyPassword(input.Password, admin.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	tokenID := ids.New()
	session, err := s.sessions.Admit(ctx, admin.ID, input.DeviceID, input.DeviceName, tokenID)
	if err != nil {
		return LoginResult{}, err
	}

	token, err := security.GenerateAdminToken(s.cfg.JWTSecret, admin, session.DeviceID, tokenID, s.cfg.JWTTTL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("mint token: %w", err)
	}

	live, err := s.sessions.Live(ctx, admin.ID)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Token:        token,
		Admin:        admin,
		DeviceID:     session.DeviceID,
		SessionCount: len(live),
	}, nil
}

// Logout revokes the device session and reports how many remain.
func (s *AuthService) Logout(ctx context.Context, adminID string, deviceID string) (int, error) {
	if err := s.sessions.Revoke(ctx, adminID, deviceID); err != nil {
		return 0, err
	}
	live, err := s.sessions.Live(ctx, adminID)
	if err != nil {
		return 0, err
	}
	return len(live), nil
}

func (s *AuthService) Profile(ctx context.Context, adminID string) (models.Admin, error) {
	return s.admins.GetByID(ctx, adminID)
}

type UpdateProfileInput struct {
	Email           string
	CurrentPassword string
	NewPassword     string
}

func (s *AuthService) UpdateProfile(ctx context.Context, adminID string, input UpdateProfileInput) (models.Admin, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return models.Admin{}, err
	}

	if email := strings.ToLower(strings.TrimSpace(input.Email)); email != "" && email != admin.Email {
		if err := validation.Validate(email, is.Email); err != nil {
			return models.Admin{}, err
		}
		if err := s.admins.UpdateEmail(ctx, adminID, email); err != nil {
			return models.Admin{}, err
		}
		admin.Email = email
	}

	if input.NewPassword != "" {
		if input.CurrentPassword == "" {
			return models.Admin{}, ErrWrongPassword
		}
		ok, err := security.VerifyPassword(input.CurrentPassword, admin.PasswordHash)
		if err != nil || !ok {
			return models.Admin{}, ErrWrongPassword
		}
		if err := validation.Validate(input.NewPassword, validation.Length(6, 128)); err != nil {
			return models.Admin{}, err
		}
		hash, err := security.HashPassword(input.NewPassword)
		if err != nil {
			return models.Admin{}, err
		}
		if err := s.admins.UpdatePassword(ctx, adminID, hash); err != nil {
			return models.Admin{}, err
		}
	}

	return admin, nil
}

// SetActive deactivates or reactivates an account. Admins are never deleted.
func (s *AuthService) SetActive(ctx context.Context, adminID string, active bool) error {
	return s.admins.SetActive(ctx, adminID, active)
}

func (s *AuthService) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	return s.admins.List(ctx)
}
