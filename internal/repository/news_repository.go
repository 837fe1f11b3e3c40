package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"spclub/api/internal/models"
)

var ErrNewsNotFound = errors.New("news article not found")

const newsColumns = `id, title, content, language, images, author, published, created_at, updated_at`

type NewsRepository struct {
	pool *pgxpool.Pool
}

func NewNewsRepository(pool *pgxpool.Pool) *NewsRepository {
	return &NewsRepository{pool: pool}
}

func (r *NewsRepository) Create(ctx context.Context, article models.News) error {
	const query = `
		INSERT INTO news (
			id, title, content, language, images, author, published, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Content,
		article.Language,
		article.Images,
		article.Author,
		article.Published,
	)
	return err
}

func (r *NewsRepository) Update(ctx context.Context, article models.News) error {
	const query = `
		UPDATE news
		SET title = $2, content = $3, language = $4, images = $5,
		    author = $6, published = $7, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Content,
		article.Language,
		article.Images,
		article.Author,
		article.Published,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNewsNotFound
	}
	return nil
}

func (r *NewsRepository) GetByID(ctx context.Context, id string) (models.News, error) {
	const query = `SELECT ` + newsColumns + ` FROM news WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *NewsRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM news WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNewsNotFound
	}
	return nil
}

// ListPublished returns the public feed, optionally narrowed to a language.
func (r *NewsRepository) ListPublished(ctx context.Context, language models.NewsLanguage) ([]models.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news WHERE published ORDER BY created_at DESC`
	args := []any{}
	if language != "" {
		query = `SELECT ` + newsColumns + ` FROM news WHERE published AND language = $1 ORDER BY created_at DESC`
		args = append(args, language)
	}
	return r.list(ctx, query, args...)
}

func (r *NewsRepository) ListAll(ctx context.Context) ([]models.News, error) {
	const query = `SELECT ` + newsColumns + ` FROM news ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *NewsRepository) list(ctx context.Context, query string, args ...any) ([]models.News, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []models.News
	for rows.Next() {
		article, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func (r *NewsRepository) scanOne(row pgx.Row) (models.News, error) {
	var article models.News
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.Language,
		&article.Images,
		&article.Author,
		&article.Published,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.News{}, ErrNewsNotFound
		}
		return models.News{}, err
	}
	return article, nil
}
