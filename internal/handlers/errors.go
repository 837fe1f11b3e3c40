package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/rs/zerolog"

	"spclub/api/internal/repository"
	"spclub/api/internal/service"
)

type sessionSummary struct {
	DeviceID   string    `json:"deviceId"`
	DeviceName string    `json:"deviceName"`
	LoginAt    time.Time `json:"loginAt"`
}

// writeError maps domain errors onto stable error codes. Validation and
// conflict errors carry enough detail for the caller to act; anything
// unrecognized is logged in full and reported as a generic failure.
func writeError(c *gin.Context, log zerolog.Logger, err error) {
	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for field, fieldErr := range validationErrs {
			fields[field] = fieldErr.Error()
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": "required fields are missing or invalid",
			"fields":  fields,
		})
		return
	}

	var limitErr *service.DeviceLimitError
	if errors.As(err, &limitErr) {
		devices := make([]sessionSummary, 0, len(limitErr.Sessions))
		for _, sess := range limitErr.Sessions {
			devices = append(devices, sessionSummary{
				DeviceID:   sess.DeviceID,
				DeviceName: sess.DeviceName,
				LoginAt:    sess.LoginAt,
			})
		}
		c.JSON(http.StatusConflict, gin.H{
			"error":   "device_limit_exceeded",
			"message": "maximum number of devices already logged in; log out one of them first",
			"devices": devices,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrTermsNotAccepted),
		errors.Is(err, service.ErrEmptyRejectionReason),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrUnsupportedFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrWrongPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials", "message": "invalid credentials"})

	case errors.Is(err, service.ErrAccountDeactivated):
		c.JSON(http.StatusForbidden, gin.H{"error": "account_deactivated", "message": "your account is deactivated"})

	case errors.Is(err, repository.ErrDuplicateAadhar):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_identity", "message": "a user with this aadhar number is already registered"})

	case errors.Is(err, repository.ErrAlreadyApproved):
		c.JSON(http.StatusConflict, gin.H{"error": "already_approved", "message": "registration is already approved"})

	case errors.Is(err, repository.ErrAlreadyRejected):
		c.JSON(http.StatusConflict, gin.H{"error": "already_rejected", "message": "registration is already rejected"})

	case errors.Is(err, repository.ErrAdminExists):
		c.JSON(http.StatusConflict, gin.H{"error": "admin_exists", "message": "admin with this username or email already exists"})

	case errors.Is(err, repository.ErrAlreadySubscribed):
		c.JSON(http.StatusConflict, gin.H{"error": "already_subscribed", "message": "email already subscribed"})

	case errors.Is(err, repository.ErrRegistrationNotFound),
		errors.Is(err, repository.ErrAdminNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrNewsNotFound),
		errors.Is(err, repository.ErrSubscriptionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})

	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "server error, please try again later"})
	}
}
