package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"spclub/api/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists admin device sessions in a dedicated table
// keyed (admin_id, device_id), one row per device.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// DeleteStale removes every session of the administrator whose last activity
// (falling back to login time) predates the cutoff. Called lazily at login,
// not from a background timer.
func (r *SessionRepository) DeleteStale(ctx context.Context, adminID string, cutoff time.Time) error {
	const query = `
		DELETE FROM admin_sessions
		WHERE admin_id = $1 AND COALESCE(last_active_at, login_at) < $2
	`
	_, err := r.pool.Exec(ctx, query, adminID, cutoff)
	return err
}

func (r *SessionRepository) ListByAdmin(ctx context.Context, adminID string) ([]models.Session, error) {
	const query = `
		SELECT admin_id, device_id, device_name, token_id, login_at, last_active_at
		FROM admin_sessions
		WHERE admin_id = $1
		ORDER BY last_active_at DESC
	`

	rows, err := r.pool.Query(ctx, query, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var session models.Session
		if err := rows.Scan(
			&session.AdminID,
			&session.DeviceID,
			&session.DeviceName,
			&session.TokenID,
			&session.LoginAt,
			&session.LastActiveAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// SaveLogin upserts the device session and stamps the administrator's
// last_login in the same transaction, so a login is a single atomic write.
func (r *SessionRepository) SaveLogin(ctx context.Context, session models.Session) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const upsert = `
		INSERT INTO admin_sessions (
			admin_id, device_id, device_name, token_id, login_at, last_active_at
		) VALUES (
			$1, $2, $3, $4, $5, $5
		)
		ON CONFLICT (admin_id, device_id)
		DO UPDATE SET
			device_name = EXCLUDED.device_name,
			token_id = EXCLUDED.token_id,
			login_at = EXCLUDED.login_at,
			last_active_at = EXCLUDED.last_active_at
	`
	if _, err := tx.Exec(ctx, upsert,
		session.AdminID,
		session.DeviceID,
		session.DeviceName,
		session.TokenID,
		session.LoginAt,
	); err != nil {
		return err
	}

	const stamp = `UPDATE admins SET last_login = $2, updated_at = NOW() WHERE id = $1`
	if _, err := tx.Exec(ctx, stamp, session.AdminID, session.LoginAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *SessionRepository) DeleteByDevice(ctx context.Context, adminID string, deviceID string) error {
	const query = `DELETE FROM admin_sessions WHERE admin_id = $1 AND device_id = $2`
	_, err := r.pool.Exec(ctx, query, adminID, deviceID)
	return err
}

func (r *SessionRepository) GetByDevice(ctx context.Context, adminID string, deviceID string) (models.Session, error) {
	const query = `
		SELECT admin_id, device_id, device_name, token_id, login_at, last_active_at
		FROM admin_sessions
		WHERE admin_id = $1 AND device_id = $2
	`

	row := r.pool.QueryRow(ctx, query, adminID, deviceID)
	var session models.Session
	if err := row.Scan(
		&session.AdminID,
		&session.DeviceID,
		&session.DeviceName,
		&session.TokenID,
		&session.LoginAt,
		&session.LastActiveAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

func (r *SessionRepository) Touch(ctx context.Context, adminID string, deviceID string, at time.Time) error {
	const query = `
		UPDATE admin_sessions
		SET last_active_at = $3
		WHERE admin_id = $1 AND device_id = $2
	`
	_, err := r.pool.Exec(ctx, query, adminID, deviceID, at)
	return err
}

// DeleteExpired purges sessions whose last activity predates the cutoff
// across all administrators. Used by the nightly housekeeping job only; the
// device-cap prune stays per-admin at login time.
func (r *SessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM admin_sessions WHERE COALESCE(last_active_at, login_at) < $1`
	cmd, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
