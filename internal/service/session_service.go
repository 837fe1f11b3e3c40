package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"spclub/api/internal/config"
	"spclub/api/internal/ids"
	"spclub/api/internal/models"
)

const defaultDeviceName = "Unknown Device"

// SessionStore is the slice of session persistence the admission controller
// needs. Implemented by repository.SessionRepository.
type SessionStore interface {
	DeleteStale(ctx context.Context, adminID string, cutoff time.Time) error
	ListByAdmin(ctx context.Context, adminID string) ([]models.Session, error)
	SaveLogin(ctx context.Context, session models.Session) error
	DeleteByDevice(ctx context.Context, adminID string, deviceID string) error
	Touch(ctx context.Context, adminID string, deviceID string, at time.Time) error
}

// DeviceLimitError reports that a new device was refused because the
// administrator already has the maximum number of live sessions. It carries
// the current sessions so the caller can offer the user a device to log out.
type DeviceLimitError struct {
	Sessions []models.Session
}

func (e *DeviceLimitError) Error() string {
	return fmt.Sprintf("device limit reached: %d active sessions", len(e.Sessions))
}

// SessionService enforces the concurrent-device cap with activity-based
// staleness. Pruning is lazy: stale sessions are dropped on the next login
// evaluation, never by a timer. The cap is advisory under concurrent
// first-time logins, which is accepted; it is a usability control, not a
// security boundary.
type SessionService struct {
	sessions SessionStore
	cfg      config.SecurityConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewSessionService(sessions SessionStore, cfg config.SecurityConfig, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Admit decides whether a login from the given device may proceed.
// Re-login from a known live device always succeeds and refreshes the
// session; a new device is admitted only below the cap. The returned session
// carries the final device id (synthesized when the client sent none).
func (s *SessionService) Admit(ctx context.Context, adminID string, deviceID string, deviceName string, tokenID string) (models.Session, error) {
	now := s.now()

	if err := s.sessions.DeleteStale(ctx, adminID, now.Add(-s.cfg.SessionIdleWindow)); err != nil {
		return models.Session{}, fmt.Errorf("prune stale sessions: %w", err)
	}

	live, err := s.sessions.ListByAdmin(ctx, adminID)
	if err != nil {
		return models.Session{}, fmt.Errorf("list sessions: %w", err)
	}

	existing := false
	if deviceID != "" {
		for _, sess := range live {
			if sess.DeviceID == deviceID {
				existing = true
				break
			}
		}
	}

	if !existing && len(live) >= s.cfg.MaxSessions {
		return models.Session{}, &DeviceLimitError{Sessions: live}
	}

	if deviceID == "" {
		deviceID = ids.New()
	}
	if deviceName == "" {
		deviceName = defaultDeviceName
	}

	session := models.Session{
		AdminID:      adminID,
		DeviceID:     deviceID,
		DeviceName:   deviceName,
		TokenID:      tokenID,
		LoginAt:      now,
		LastActiveAt: now,
	}

	if err := s.sessions.SaveLogin(ctx, session); err != nil {
		return models.Session{}, fmt.Errorf("save session: %w", err)
	}

	return session, nil
}

// Revoke drops the session for the device. Idempotent when absent.
func (s *SessionService) Revoke(ctx context.Context, adminID string, deviceID string) error {
	return s.sessions.DeleteByDevice(ctx, adminID, deviceID)
}

// Touch refreshes the session's activity timestamp. Best-effort: it runs as
// a side effect of unrelated requests, so failures are logged and dropped.
func (s *SessionService) Touch(ctx context.Context, adminID string, deviceID string) {
	if err := s.sessions.Touch(ctx, adminID, deviceID, s.now()); err != nil {
		s.log.Debug().Err(err).
			Str("admin_id", adminID).
			Str("device_id", deviceID).
			Msg("session touch failed")
	}
}

// Live returns the administrator's sessions still within the staleness
// window.
func (s *SessionService) Live(ctx context.Context, adminID string) ([]models.Session, error) {
	all, err := s.sessions.ListByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-s.cfg.SessionIdleWindow)
	live := all[:0]
	for _, sess := range all {
		last := sess.LastActiveAt
		if last.IsZero() {
			last = sess.LoginAt
		}
		if !last.Before(cutoff) {
			live = append(live, sess)
		}
	}
	return live, nil
}
