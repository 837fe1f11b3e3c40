package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"spclub/api/internal/ids"
	"spclub/api/internal/models"
	"spclub/api/internal/repository"
	"spclub/api/internal/service"
)

// SubmitRegistration accepts the public multipart application form: the
// applicant's fields plus three required document images (portrait photo,
// aadhar front, aadhar back).
func (h HandlerSet) SubmitRegistration(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "multipart form expected"})
		return
	}

	input := service.SubmitInput{
		Name:         formValue(form.Value, "name"),
		FathersName:  formValue(form.Value, "fathersName"),
		Email:        formValue(form.Value, "email"),
		Phone:        formValue(form.Value, "phone"),
		ParentPhone:  formValue(form.Value, "parentsPhone"),
		Gender:       formValue(form.Value, "gender"),
		DateOfBirth:  formValue(form.Value, "dob"),
		BloodGroup:   formValue(form.Value, "bloodGroup"),
		Address:      formValue(form.Value, "address"),
		AadharNumber: formValue(form.Value, "aadharNumber"),
		Role:         formValue(form.Value, "role"),
		AgeGroup:     formValue(form.Value, "ageGroup"),
		Experience:   formValue(form.Value, "experience"),
		ClubDetails:  formValue(form.Value, "clubDetails"),
		Message:      formValue(form.Value, "message"),
		Positions:    parseMultiValue(form.Value["positions"]),
		Newsletter:   parseBool(formValue(form.Value, "newsletter"), true),
		Terms:        parseBool(formValue(form.Value, "terms"), false),
	}

	ctx := c.Request.Context()
	for _, doc := range []struct {
		field string
		kind  string
		dest  *string
	}{
		{"photo", "photo", &input.PhotoURL},
		{"aadharFront", "aadhar-front", &input.AadharFront},
		{"aadharBack", "aadhar-back", &input.AadharBack},
	} {
		files := form.File[doc.field]
		if len(files) == 0 {
			continue // Submit reports the missing document as a validation error
		}
		url, err := h.uploads.SaveDocument(ctx, doc.kind, files[0])
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		*doc.dest = url
	}

	reg, err := h.registrations.Submit(ctx, input)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	// Opting in during registration is best-effort; a failed subscription
	// never fails the registration itself.
	if reg.Newsletter {
		sub := models.Subscription{
			ID:           ids.New(),
			Email:        reg.Email,
			Status:       models.SubscriptionStatusNew,
			SubscribedAt: time.Now().UTC(),
		}
		if err := h.newsletter.Create(ctx, sub); err != nil && !errors.Is(err, repository.ErrAlreadySubscribed) {
			h.log.Warn().Err(err).Str("registration_id", reg.ID).Msg("newsletter opt-in failed")
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "registration successful",
		"registration": toRegistrationResponse(reg),
	})
}

func formValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// parseBool reads checkbox-style form values explicitly instead of guessing
// types at the boundary.
func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(value) {
	case "true", "1", "on", "yes":
		return true
	case "false", "0", "off", "no":
		return false
	case "":
		return fallback
	}
	return fallback
}

// parseMultiValue accepts either repeated form fields or a single JSON
// array string for multi-select inputs.
func parseMultiValue(values []string) []string {
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(values[0]), &parsed); err == nil {
			return parsed
		}
	}

	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
