package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"spclub/api/internal/middleware"
	"spclub/api/internal/models"
	"spclub/api/internal/service"
)

type registrationResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	FathersName  string     `json:"fathersName"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	ParentPhone  string     `json:"parentsPhone,omitempty"`
	Gender       string     `json:"gender"`
	DateOfBirth  string     `json:"dob"`
	BloodGroup   string     `json:"bloodGroup"`
	Address      string     `json:"address,omitempty"`
	AadharNumber string     `json:"aadharNumber"`
	AadharFront  string     `json:"aadharFront"`
	AadharBack   string     `json:"aadharBack"`
	PhotoURL     string     `json:"photo"`
	Role         string     `json:"role"`
	AgeGroup     string     `json:"ageGroup,omitempty"`
	Positions    []string   `json:"positions,omitempty"`
	Experience   string     `json:"experience,omitempty"`
	ClubDetails  string     `json:"clubDetails"`
	Message      string     `json:"message,omitempty"`
	Newsletter   bool       `json:"newsletter"`
	Status       string     `json:"status"`
	ApprovedBy   *string    `json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`
	RejectedAt   *time.Time `json:"rejectedAt,omitempty"`
	Reason       *string    `json:"rejectionReason,omitempty"`
	RegisteredAt time.Time  `json:"registeredAt"`
}

func toRegistrationResponse(reg models.Registration) registrationResponse {
	return registrationResponse{
		ID:           reg.ID,
		Name:         reg.Name,
		FathersName:  reg.FathersName,
		Email:        reg.Email,
		Phone:        reg.Phone,
		ParentPhone:  reg.ParentPhone,
		Gender:       reg.Gender,
		DateOfBirth:  reg.DateOfBirth.Format("2006-01-02"),
		BloodGroup:   reg.BloodGroup,
		Address:      reg.Address,
		AadharNumber: reg.AadharNumber,
		AadharFront:  reg.AadharFront,
		AadharBack:   reg.AadharBack,
		PhotoURL:     reg.PhotoURL,
		Role:         reg.Role,
		AgeGroup:     reg.AgeGroup,
		Positions:    reg.Positions,
		Experience:   reg.Experience,
		ClubDetails:  reg.ClubDetails,
		Message:      reg.Message,
		Newsletter:   reg.Newsletter,
		Status:       string(reg.Status),
		ApprovedBy:   reg.ApprovedBy,
		ApprovedAt:   reg.ApprovedAt,
		RejectedAt:   reg.RejectedAt,
		Reason:       reg.RejectionReason,
		RegisteredAt: reg.RegisteredAt,
	}
}

func (h HandlerSet) ListRegistrations(c *gin.Context) {
	params := service.ListParams{
		Status:   c.DefaultQuery("status", "pending"),
		Search:   c.Query("search"),
		AgeGroup: c.Query("ageGroup"),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "limit", 10),
	}

	page, err := h.registrations.List(c.Request.Context(), params)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	items := make([]registrationResponse, 0, len(page.Items))
	for _, reg := range page.Items {
		items = append(items, toRegistrationResponse(reg))
	}

	c.JSON(http.StatusOK, gin.H{
		"registrations": items,
		"pagination": gin.H{
			"total":       page.Total,
			"pages":       page.Pages,
			"currentPage": page.Current,
			"limit":       page.PageSize,
		},
	})
}

func (h HandlerSet) GetRegistration(c *gin.Context) {
	reg, err := h.registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registration": toRegistrationResponse(reg)})
}

func (h HandlerSet) ApproveRegistration(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	reg, err := h.registrations.Approve(c.Request.Context(), c.Param("id"), claims.AdminID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "registration approved successfully",
		"registration": toRegistrationResponse(reg),
	})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h HandlerSet) RejectRegistration(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "authentication required"})
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": err.Error()})
		return
	}

	reg, err := h.registrations.Reject(c.Request.Context(), c.Param("id"), req.Reason, claims.AdminID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "registration rejected and stored",
		"registration": gin.H{
			"id":              reg.ID,
			"name":            reg.Name,
			"email":           reg.Email,
			"aadharNumber":    reg.AadharNumber,
			"status":          reg.Status,
			"rejectionReason": reg.RejectionReason,
			"rejectedAt":      reg.RejectedAt,
		},
	})
}

func (h HandlerSet) DeleteRegistration(c *gin.Context) {
	reg, err := h.registrations.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "registration deleted permanently",
		"deletedRegistration": gin.H{
			"name":   reg.Name,
			"email":  reg.Email,
			"status": reg.Status,
		},
	})
}

func (h HandlerSet) Stats(c *gin.Context) {
	stats, err := h.registrations.Stats(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	recent := make([]gin.H, 0, len(stats.Recent))
	for _, reg := range stats.Recent {
		recent = append(recent, gin.H{
			"id":           reg.ID,
			"name":         reg.Name,
			"status":       reg.Status,
			"registeredAt": reg.RegisteredAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"total":    stats.Total,
			"pending":  stats.Pending,
			"approved": stats.Approved,
			"rejected": stats.Rejected,
		},
		"recentRegistrations": recent,
	})
}

func (h HandlerSet) ListAdmins(c *gin.Context) {
	admins, err := h.authService.ListAdmins(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	resp := make([]adminResponse, 0, len(admins))
	for _, admin := range admins {
		resp = append(resp, toAdminResponse(admin))
	}
	c.JSON(http.StatusOK, gin.H{"admins": resp})
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h HandlerSet) SetAdminActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": err.Error()})
		return
	}

	if err := h.authService.SetActive(c.Request.Context(), c.Param("id"), req.Active); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "admin account updated"})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
