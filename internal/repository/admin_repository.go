package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"spclub/api/internal/models"
)

var (
	ErrAdminNotFound = errors.New("admin not found")
	ErrAdminExists   = errors.New("admin already exists")
)

const adminColumns = `
	id, username, email, password_hash, role,
	can_approve, can_reject, can_delete, can_manage_admins,
	is_active, last_login, created_at, updated_at`

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) Create(ctx context.Context, admin models.Admin) error {
	const query = `
		INSERT INTO admins (
			id, username, email, password_hash, role,
			can_approve, can_reject, can_delete, can_manage_admins,
			is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		admin.ID,
		strings.ToLower(admin.Username),
		strings.ToLower(admin.Email),
		admin.PasswordHash,
		admin.Role,
		admin.Permissions.CanApprove,
		admin.Permissions.CanReject,
		admin.Permissions.CanDelete,
		admin.Permissions.CanManageAdmins,
		admin.IsActive,
	)
	if isUniqueViolation(err) {
		return ErrAdminExists
	}
	return err
}

// FindByLogin resolves an administrator by username or email, both
// case-insensitive.
func (r *AdminRepository) FindByLogin(ctx context.Context, login string) (models.Admin, error) {
	const query = `
		SELECT ` + adminColumns + `
		FROM admins WHERE username = $1 OR email = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(login))))
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (models.Admin, error) {
	const query = `
		SELECT ` + adminColumns + `
		FROM admins WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *AdminRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AdminRepository) UpdateEmail(ctx context.Context, id string, email string) error {
	const query = `UPDATE admins SET email = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, strings.ToLower(email))
	if isUniqueViolation(err) {
		return ErrAdminExists
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func (r *AdminRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	const query = `UPDATE admins SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAdminNotFound
	}
	return nil
}

// SetActive toggles the account; admins are deactivated, never deleted.
func (r *AdminRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE admins SET is_active = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func (r *AdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	const query = `
		SELECT ` + adminColumns + `
		FROM admins ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []models.Admin
	for rows.Next() {
		admin, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, admin)
	}
	return admins, rows.Err()
}

func (r *AdminRepository) scanOne(row pgx.Row) (models.Admin, error) {
	var admin models.Admin
	if err := row.Scan(
		&admin.ID,
		&admin.Username,
		&admin.Email,
		&admin.PasswordHash,
		&admin.Role,
		&admin.Permissions.CanApprove,
		&admin.Permissions.CanReject,
		&admin.Permissions.CanDelete,
		&admin.Permissions.CanManageAdmins,
		&admin.IsActive,
		&admin.LastLogin,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Admin{}, ErrAdminNotFound
		}
		return models.Admin{}, err
	}
	return admin, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
