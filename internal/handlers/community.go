package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"spclub/api/internal/ids"
	"spclub/api/internal/models"
)

type subscribeRequest struct {
	Email string `json:"email"`
}

func (r subscribeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (h HandlerSet) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, h.log, err)
		return
	}

	sub := models.Subscription{
		ID:           ids.New(),
		Email:        req.Email,
		Status:       models.SubscriptionStatusNew,
		SubscribedAt: time.Now().UTC(),
	}
	if err := h.newsletter.Create(c.Request.Context(), sub); err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "subscribed to newsletter"})
}

func (h HandlerSet) ListSubscriptions(c *gin.Context) {
	subs, err := h.newsletter.ListByStatus(c.Request.Context(), models.SubscriptionStatus(c.Query("status")))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	resp := make([]gin.H, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, gin.H{
			"id":           sub.ID,
			"email":        sub.Email,
			"status":       sub.Status,
			"subscribedAt": sub.SubscribedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": resp})
}

func (h HandlerSet) CompleteSubscription(c *gin.Context) {
	sub, err := h.newsletter.MarkCompleted(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "subscription marked completed",
		"subscription": gin.H{
			"id":     sub.ID,
			"email":  sub.Email,
			"status": sub.Status,
		},
	})
}

func (h HandlerSet) DeleteSubscription(c *gin.Context) {
	if err := h.newsletter.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subscription removed"})
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (r contactRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Subject, validation.Length(0, 300)),
		validation.Field(&r.Message, validation.Required, validation.Length(1, 5000)),
	)
}

func (h HandlerSet) SubmitContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, h.log, err)
		return
	}

	msg := models.ContactMessage{
		ID:        ids.New(),
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.contacts.Create(c.Request.Context(), msg); err != nil {
		writeError(c, h.log, err)
		return
	}

	h.log.Info().Str("contact_id", msg.ID).Msg("contact message received")
	c.JSON(http.StatusCreated, gin.H{"message": "message received"})
}

func (h HandlerSet) ListContacts(c *gin.Context) {
	limit := intQuery(c, "limit", 50)
	page := intQuery(c, "page", 1)

	msgs, err := h.contacts.List(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	resp := make([]gin.H, 0, len(msgs))
	for _, msg := range msgs {
		resp = append(resp, gin.H{
			"id":        msg.ID,
			"name":      msg.Name,
			"email":     msg.Email,
			"subject":   msg.Subject,
			"message":   msg.Message,
			"createdAt": msg.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": resp})
}
