package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spclub/api/internal/middleware"
	"spclub/api/internal/models"
	"spclub/api/internal/service"
)

type signupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type adminResponse struct {
	ID          string               `json:"id"`
	Username    string               `json:"username"`
	Email       string               `json:"email"`
	Role        string               `json:"role"`
	Permissions models.PermissionSet `json:"permissions"`
	IsActive    bool                 `json:"isActive"`
	LastLogin   *time.Time           `json:"lastLogin,omitempty"`
}

func toAdminResponse(admin models.Admin) adminResponse {
	return adminResponse{
		ID:          admin.ID,
		Username:    admin.Username,
		Email:       admin.Email,
		Role:        string(admin.Role),
		Permissions: admin.Permissions,
		IsActive:    admin.IsActive,
		LastLogin:   admin.LastLogin,
	}
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": err.Error()})
		return
	}

	admin, err := h.authService.Signup(c.Request.Context(), service.SignupInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "admin account created successfully",
		"admin":   toAdminResponse(admin),
	})
}

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": err.Error()})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "username and password are required"})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Login:      req.Username,
		Password:   req.Password,
		DeviceID:   req.DeviceID,
		DeviceName: req.DeviceName,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "login successful",
		"token":        result.Token,
		"deviceId":     result.DeviceID,
		"sessionCount": result.SessionCount,
		"admin":        toAdminResponse(result.Admin),
	})
}

func (h HandlerSet) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	remaining, err := h.authService.Logout(c.Request.Context(), claims.AdminID, claims.DeviceID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "logged out successfully",
		"remainingSessions": remaining,
	})
}

func (h HandlerSet) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	admin, err := h.authService.Profile(c.Request.Context(), claims.AdminID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"admin": toAdminResponse(admin)})
}

type deviceSessionResponse struct {
	DeviceID     string    `json:"deviceId"`
	DeviceName   string    `json:"deviceName"`
	LoginAt      time.Time `json:"loginAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	Current      bool      `json:"current"`
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	sessions, err := h.sessions.Live(c.Request.Context(), claims.AdminID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	resp := make([]deviceSessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		resp = append(resp, deviceSessionResponse{
			DeviceID:     sess.DeviceID,
			DeviceName:   sess.DeviceName,
			LoginAt:      sess.LoginAt,
			LastActiveAt: sess.LastActiveAt,
			Current:      sess.DeviceID == claims.DeviceID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}

func (h HandlerSet) RevokeSession(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	deviceID := c.Param("deviceId")
	if deviceID == claims.DeviceID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "use logout to end the current device session"})
		return
	}

	if err := h.sessions.Revoke(c.Request.Context(), claims.AdminID, deviceID); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type updateProfileRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": err.Error()})
		return
	}

	admin, err := h.authService.UpdateProfile(c.Request.Context(), claims.AdminID, service.UpdateProfileInput{
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "profile updated successfully",
		"admin":   toAdminResponse(admin),
	})
}
