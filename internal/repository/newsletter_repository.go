package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"spclub/api/internal/models"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrAlreadySubscribed    = errors.New("email already subscribed")
)

type NewsletterRepository struct {
	pool *pgxpool.Pool
}

func NewNewsletterRepository(pool *pgxpool.Pool) *NewsletterRepository {
	return &NewsletterRepository{pool: pool}
}

func (r *NewsletterRepository) Create(ctx context.Context, sub models.Subscription) error {
	const query = `
		INSERT INTO newsletter_subscriptions (id, email, status, subscribed_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, sub.ID, strings.ToLower(sub.Email), sub.Status, sub.SubscribedAt)
	if isUniqueViolation(err) {
		return ErrAlreadySubscribed
	}
	return err
}

func (r *NewsletterRepository) ListByStatus(ctx context.Context, status models.SubscriptionStatus) ([]models.Subscription, error) {
	query := `
		SELECT id, email, status, subscribed_at
		FROM newsletter_subscriptions
		ORDER BY subscribed_at DESC
	`
	args := []any{}
	if status != "" {
		query = `
			SELECT id, email, status, subscribed_at
			FROM newsletter_subscriptions
			WHERE status = $1
			ORDER BY subscribed_at DESC
		`
		args = append(args, status)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.Status, &sub.SubscribedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *NewsletterRepository) MarkCompleted(ctx context.Context, id string) (models.Subscription, error) {
	const query = `
		UPDATE newsletter_subscriptions
		SET status = 'completed'
		WHERE id = $1
		RETURNING id, email, status, subscribed_at
	`
	var sub models.Subscription
	if err := r.pool.QueryRow(ctx, query, id).Scan(&sub.ID, &sub.Email, &sub.Status, &sub.SubscribedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, ErrSubscriptionNotFound
		}
		return models.Subscription{}, err
	}
	return sub, nil
}

func (r *NewsletterRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM newsletter_subscriptions WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
