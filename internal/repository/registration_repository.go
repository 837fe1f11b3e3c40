package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"spclub/api/internal/models"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrDuplicateAadhar      = errors.New("aadhar number already registered")
	ErrAlreadyApproved      = errors.New("registration already approved")
	ErrAlreadyRejected      = errors.New("registration already rejected")
)

const registrationColumns = `
	id, name, fathers_name, email, phone, parent_phone, gender, date_of_birth,
	blood_group, address, aadhar_number, aadhar_front, aadhar_back, photo_url,
	role, age_group, positions, experience, club_details, message, newsletter,
	status, approved_by, approved_at, rejected_at, rejection_reason, registered_at`

// ListFilter narrows the admin registration listing. Zero values mean "no
// filter"; birth years carry the translated age band.
type ListFilter struct {
	Status       models.RegistrationStatus
	Search       string
	MinBirthYear int
	MaxBirthYear int
	Limit        int
	Offset       int
}

type RegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg models.Registration) error {
	const query = `
		INSERT INTO registrations (
			id, name, fathers_name, email, phone, parent_phone, gender, date_of_birth,
			blood_group, address, aadhar_number, aadhar_front, aadhar_back, photo_url,
			role, age_group, positions, experience, club_details, message, newsletter,
			status, registered_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21,
			$22, $23
		)
	`

	_, err := r.pool.Exec(ctx, query,
		reg.ID,
		reg.Name,
		reg.FathersName,
		reg.Email,
		reg.Phone,
		reg.ParentPhone,
		reg.Gender,
		reg.DateOfBirth,
		reg.BloodGroup,
		reg.Address,
		reg.AadharNumber,
		reg.AadharFront,
		reg.AadharBack,
		reg.PhotoURL,
		reg.Role,
		reg.AgeGroup,
		reg.Positions,
		reg.Experience,
		reg.ClubDetails,
		reg.Message,
		reg.Newsletter,
		reg.Status,
		reg.RegisteredAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateAadhar
	}
	return err
}

// ExistsByAadhar reports whether any registration carries the identity
// number, regardless of status.
func (r *RegistrationRepository) ExistsByAadhar(ctx context.Context, aadharNumber string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM registrations WHERE aadhar_number = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, aadharNumber).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (models.Registration, error) {
	const query = `
		SELECT ` + registrationColumns + `
		FROM registrations WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// Approve flips status to approved only if the record is not approved
// already; the conditional update keeps double-approval out even under
// concurrent calls. Clears rejection fields from a prior rejected state.
func (r *RegistrationRepository) Approve(ctx context.Context, id string, adminID string, at time.Time) (models.Registration, error) {
	const query = `
		UPDATE registrations
		SET status = 'approved',
		    approved_by = $2,
		    approved_at = $3,
		    rejected_at = NULL,
		    rejection_reason = NULL
		WHERE id = $1 AND status <> 'approved'
		RETURNING ` + registrationColumns

	reg, err := r.scanOne(r.pool.QueryRow(ctx, query, id, adminID, at))
	if errors.Is(err, ErrRegistrationNotFound) {
		return models.Registration{}, r.conflictOrNotFound(ctx, id, models.RegistrationStatusApproved)
	}
	return reg, err
}

// Reject mirrors Approve: conditional transition, rejection fields set,
// approval fields cleared. The record stays in storage.
func (r *RegistrationRepository) Reject(ctx context.Context, id string, reason string, at time.Time) (models.Registration, error) {
	const query = `
		UPDATE registrations
		SET status = 'rejected',
		    rejection_reason = $2,
		    rejected_at = $3,
		    approved_by = NULL,
		    approved_at = NULL
		WHERE id = $1 AND status <> 'rejected'
		RETURNING ` + registrationColumns

	reg, err := r.scanOne(r.pool.QueryRow(ctx, query, id, reason, at))
	if errors.Is(err, ErrRegistrationNotFound) {
		return models.Registration{}, r.conflictOrNotFound(ctx, id, models.RegistrationStatusRejected)
	}
	return reg, err
}

func (r *RegistrationRepository) conflictOrNotFound(ctx context.Context, id string, blocking models.RegistrationStatus) error {
	reg, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if reg.Status == blocking {
		if blocking == models.RegistrationStatusApproved {
			return ErrAlreadyApproved
		}
		return ErrAlreadyRejected
	}
	return ErrRegistrationNotFound
}

func (r *RegistrationRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM registrations WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *RegistrationRepository) List(ctx context.Context, filter ListFilter) ([]models.Registration, int, error) {
	where, args := buildRegistrationWhere(filter)

	countQuery := `SELECT COUNT(*) FROM registrations` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations%s
		ORDER BY registered_at DESC
		LIMIT $%d OFFSET $%d
	`, registrationColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var regs []models.Registration
	for rows.Next() {
		reg, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		regs = append(regs, reg)
	}
	return regs, total, rows.Err()
}

func buildRegistrationWhere(filter ListFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d OR aadhar_number ILIKE $%d)", n, n, n))
	}
	if filter.MinBirthYear > 0 {
		args = append(args, filter.MinBirthYear)
		clauses = append(clauses, fmt.Sprintf("EXTRACT(YEAR FROM date_of_birth) >= $%d", len(args)))
	}
	if filter.MaxBirthYear > 0 {
		args = append(args, filter.MaxBirthYear)
		clauses = append(clauses, fmt.Sprintf("EXTRACT(YEAR FROM date_of_birth) <= $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// StatusCounts powers the dashboard stats card.
func (r *RegistrationRepository) StatusCounts(ctx context.Context) (map[models.RegistrationStatus]int, error) {
	const query = `SELECT status, COUNT(*) FROM registrations GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.RegistrationStatus]int)
	for rows.Next() {
		var (
			status models.RegistrationStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *RegistrationRepository) Recent(ctx context.Context, limit int) ([]models.Registration, error) {
	const query = `
		SELECT ` + registrationColumns + `
		FROM registrations
		ORDER BY registered_at DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []models.Registration
	for rows.Next() {
		reg, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *RegistrationRepository) scanOne(row pgx.Row) (models.Registration, error) {
	var reg models.Registration
	if err := row.Scan(
		&reg.ID,
		&reg.Name,
		&reg.FathersName,
		&reg.Email,
		&reg.Phone,
		&reg.ParentPhone,
		&reg.Gender,
		&reg.DateOfBirth,
		&reg.BloodGroup,
		&reg.Address,
		&reg.AadharNumber,
		&reg.AadharFront,
		&reg.AadharBack,
		&reg.PhotoURL,
		&reg.Role,
		&reg.AgeGroup,
		&reg.Positions,
		&reg.Experience,
		&reg.ClubDetails,
		&reg.Message,
		&reg.Newsletter,
		&reg.Status,
		&reg.ApprovedBy,
		&reg.ApprovedAt,
		&reg.RejectedAt,
		&reg.RejectionReason,
		&reg.RegisteredAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Registration{}, ErrRegistrationNotFound
		}
		return models.Registration{}, err
	}
	return reg, nil
}
