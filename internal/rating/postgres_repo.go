package rating

import (
	"context"
	"errors"
	"time"

	"bookreview/internal/platform/postgres"

	"github.com/jackc/pgx/v5"
)

type PostgresRepo struct {
	db      *postgres.DB
	timeout time.Duration
}

func NewPostgresRepo(db *postgres.DB, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) ListRatings(ctx context.Context, bookID string) ([]int, error) {
	const query = `SELECT rating FROM reviews WHERE book_id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Conn(ctx).Query(timeoutCtx, query, bookID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (r *PostgresRepo) GetSummary(ctx context.Context, bookID string) (Summary, error) {
	const query = `SELECT average_rating::FLOAT8, review_count FROM books WHERE id = $1`

	var s Summary
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.Conn(ctx).QueryRow(timeoutCtx, query, bookID).Scan(&s.Average, &s.Count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Summary{}, ErrBookNotFound
		}
		return Summary{}, err
	}
	return s, nil
}

// SaveSummary leaves updated_at alone: the summary is derived data, not an
// edit of the book.
func (r *PostgresRepo) SaveSummary(ctx context.Context, bookID string, s Summary) (bool, error) {
	const query = `
		WITH target AS (
			SELECT id FROM books WHERE id = $1
		), updated AS (
			UPDATE books
			SET average_rating = $2::NUMERIC, review_count = $3
			WHERE id = $1
			  AND (average_rating <> $2::NUMERIC OR review_count <> $3)
			RETURNING id
		)
		SELECT EXISTS (SELECT 1 FROM target), EXISTS (SELECT 1 FROM updated)
	`
	var found, changed bool
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.Conn(ctx).QueryRow(timeoutCtx, query, bookID, s.Average, s.Count).Scan(&found, &changed); err != nil {
		return false, err
	}
	if !found {
		return false, ErrBookNotFound
	}
	return changed, nil
}

func (r *PostgresRepo) ListBookIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT id::TEXT FROM books ORDER BY created_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Conn(ctx).Query(timeoutCtx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
