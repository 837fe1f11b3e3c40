package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spclub/api/internal/config"
	"spclub/api/internal/models"
)

type fakeSessionStore struct {
	sessions map[string]models.Session // keyed by device id
	touchErr error
	saveErr  error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]models.Session)}
}

func (f *fakeSessionStore) DeleteStale(_ context.Context, adminID string, cutoff time.Time) error {
	for deviceID, sess := range f.sessions {
		if sess.AdminID != adminID {
			continue
		}
		last := sess.LastActiveAt
		if last.IsZero() {
			last = sess.LoginAt
		}
		if last.Before(cutoff) {
			delete(f.sessions, deviceID)
		}
	}
	return nil
}

func (f *fakeSessionStore) ListByAdmin(_ context.Context, adminID string) ([]models.Session, error) {
	var out []models.Session
	for _, sess := range f.sessions {
		if sess.AdminID == adminID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) SaveLogin(_ context.Context, session models.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.sessions[session.DeviceID] = session
	return nil
}

func (f *fakeSessionStore) DeleteByDevice(_ context.Context, adminID string, deviceID string) error {
	if sess, ok := f.sessions[deviceID]; ok && sess.AdminID == adminID {
		delete(f.sessions, deviceID)
	}
	return nil
}

func (f *fakeSessionStore) Touch(_ context.Context, adminID string, deviceID string, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	if sess, ok := f.sessions[deviceID]; ok && sess.AdminID == adminID {
		sess.LastActiveAt = at
		f.sessions[deviceID] = sess
	}
	return nil
}

func newTestSessionService(store *fakeSessionStore, now time.Time) *SessionService {
	svc := NewSessionService(store, config.SecurityConfig{
		MaxSessions:       2,
		SessionIdleWindow: 5 * time.Minute,
	}, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestAdmitFirstDevice(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	svc := newTestSessionService(store, now)

	session, err := svc.Admit(context.Background(), "admin-1", "device-a", "Chrome on Linux", "tok-1")
	require.NoError(t, err)

	assert.Equal(t, "device-a", session.DeviceID)
	assert.Equal(t, "Chrome on Linux", session.DeviceName)
	assert.Equal(t, now, session.LoginAt)
	assert.Equal(t, now, session.LastActiveAt)
	assert.Len(t, store.sessions, 1)
}

func TestAdmitSynthesizesDeviceIdentity(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestSessionService(newFakeSessionStore(), now)

	session, err := svc.Admit(context.Background(), "admin-1", "", "", "tok-1")
	require.NoError(t, err)

	assert.NotEmpty(t, session.DeviceID)
	assert.Equal(t, "Unknown Device", session.DeviceName)
}

func TestAdmitNewDeviceOverCap(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	svc := newTestSessionService(store, now)

	_, err := svc.Admit(context.Background(), "admin-1", "device-a", "Laptop", "tok-1")
	require.NoError(t, err)
	_, err = svc.Admit(context.Background(), "admin-1", "device-b", "Phone", "tok-2")
	require.NoError(t, err)

	_, err = svc.Admit(context.Background(), "admin-1", "device-c", "Tablet", "tok-3")
	require.Error(t, err)

	var limitErr *DeviceLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Len(t, limitErr.Sessions, 2)
	assert.Len(t, store.sessions, 2, "a refused login must not write a session")
}

func TestAdmitSameDeviceAtCapRefreshes(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	svc := newTestSessionService(store, now)

	_, err := svc.Admit(context.Background(), "admin-1", "device-a", "Laptop", "tok-1")
	require.NoError(t, err)
	_, err = svc.Admit(context.Background(), "admin-1", "device-b", "Phone", "tok-2")
	require.NoError(t, err)

	later := now.Add(time.Minute)
	svc.now = func() time.Time { return later }

	session, err := svc.Admit(context.Background(), "admin-1", "device-a", "Laptop", "tok-4")
	require.NoError(t, err, "re-login from a known device must bypass the cap")
	assert.Equal(t, "tok-4", session.TokenID)
	assert.Equal(t, later, store.sessions["device-a"].LoginAt)
	assert.Len(t, store.sessions, 2)
}

func TestAdmitPrunesStaleSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	store.sessions["device-a"] = models.Session{
		AdminID: "admin-1", DeviceID: "device-a",
		LoginAt: now.Add(-time.Hour), LastActiveAt: now.Add(-6 * time.Minute),
	}
	store.sessions["device-b"] = models.Session{
		AdminID: "admin-1", DeviceID: "device-b",
		LoginAt: now.Add(-time.Hour), LastActiveAt: now.Add(-time.Minute),
	}
	svc := newTestSessionService(store, now)

	_, err := svc.Admit(context.Background(), "admin-1", "device-c", "Tablet", "tok-3")
	require.NoError(t, err, "a stale slot must be reclaimed before the cap check")

	assert.NotContains(t, store.sessions, "device-a")
	assert.Contains(t, store.sessions, "device-b")
	assert.Contains(t, store.sessions, "device-c")
}

func TestAdmitExactlyAtIdleWindowStaysLive(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	store.sessions["device-a"] = models.Session{
		AdminID: "admin-1", DeviceID: "device-a",
		LoginAt: now.Add(-time.Hour), LastActiveAt: now.Add(-5 * time.Minute),
	}
	store.sessions["device-b"] = models.Session{
		AdminID: "admin-1", DeviceID: "device-b",
		LoginAt: now.Add(-time.Hour), LastActiveAt: now,
	}
	svc := newTestSessionService(store, now)

	_, err := svc.Admit(context.Background(), "admin-1", "device-c", "Tablet", "tok-3")
	var limitErr *DeviceLimitError
	require.True(t, errors.As(err, &limitErr), "activity exactly at the window boundary is still live")
}

func TestAdmitAfterRevokeFreesSlot(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	svc := newTestSessionService(store, now)

	ctx := context.Background()
	_, err := svc.Admit(ctx, "admin-1", "device-a", "Laptop", "tok-1")
	require.NoError(t, err)
	_, err = svc.Admit(ctx, "admin-1", "device-b", "Phone", "tok-2")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, "admin-1", "device-b"))

	_, err = svc.Admit(ctx, "admin-1", "device-c", "Tablet", "tok-3")
	require.NoError(t, err)
	assert.Len(t, store.sessions, 2)
}

func TestAdmitIsolatesAdmins(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	svc := newTestSessionService(store, now)

	ctx := context.Background()
	_, err := svc.Admit(ctx, "admin-1", "device-a", "Laptop", "tok-1")
	require.NoError(t, err)
	_, err = svc.Admit(ctx, "admin-1", "device-b", "Phone", "tok-2")
	require.NoError(t, err)

	_, err = svc.Admit(ctx, "admin-2", "device-x", "Laptop", "tok-3")
	require.NoError(t, err, "one admin's sessions must not count against another")
}

func TestRevokeUnknownDeviceIsIdempotent(t *testing.T) {
	t.Parallel()

	svc := newTestSessionService(newFakeSessionStore(), time.Now())
	require.NoError(t, svc.Revoke(context.Background(), "admin-1", "never-seen"))
}

func TestTouchSwallowsStoreErrors(t *testing.T) {
	t.Parallel()

	store := newFakeSessionStore()
	store.touchErr = errors.New("connection reset")
	svc := newTestSessionService(store, time.Now())

	svc.Touch(context.Background(), "admin-1", "device-a")
}

func TestLiveFiltersByActivityWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeSessionStore()
	store.sessions["fresh"] = models.Session{
		AdminID: "admin-1", DeviceID: "fresh",
		LoginAt: now.Add(-time.Hour), LastActiveAt: now.Add(-time.Minute),
	}
	store.sessions["stale"] = models.Session{
		AdminID: "admin-1", DeviceID: "stale",
		LoginAt: now.Add(-time.Hour), LastActiveAt: now.Add(-10 * time.Minute),
	}
	store.sessions["login-only"] = models.Session{
		AdminID: "admin-1", DeviceID: "login-only",
		LoginAt: now.Add(-time.Minute),
	}
	svc := newTestSessionService(store, now)

	live, err := svc.Live(context.Background(), "admin-1")
	require.NoError(t, err)
	require.Len(t, live, 2)

	ids := []string{live[0].DeviceID, live[1].DeviceID}
	assert.ElementsMatch(t, []string{"fresh", "login-only"}, ids)
}
