package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookreview/internal/platform/postgres"

	"github.com/jackc/pgx/v5"
)

const (
	uniqueBookUser = "reviews_book_user_key"
	bookForeignKey = "reviews_book_id_fkey"
)

const selectReview = `
	SELECT r.id::TEXT, r.rating, r.review_text, r.created_at, r.updated_at,
	       b.id::TEXT, b.title, b.author,
	       u.id::TEXT, u.name, u.email
	FROM reviews r
	JOIN books b ON b.id = r.book_id
	JOIN users u ON u.id = r.user_id`

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

func scanReview(row pgx.Row) (Review, error) {
	var rv Review
	err := row.Scan(
		&rv.ID, &rv.Rating, &rv.Text, &rv.CreatedAt, &rv.UpdatedAt,
		&rv.Book.ID, &rv.Book.Title, &rv.Book.Author,
		&rv.Author.ID, &rv.Author.Name, &rv.Author.Email,
	)
	return rv, err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Review, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rv, err := scanReview(r.db.Conn(ctx).QueryRow(timeoutCtx, selectReview+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return rv, nil
}

func (r *PostgresRepo) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]Review, int, error) {
	return r.list(ctx, "r.book_id", bookID, limit, offset)
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Review, int, error) {
	return r.list(ctx, "r.user_id", userID, limit, offset)
}

func (r *PostgresRepo) list(ctx context.Context, column, id string, limit, offset int) ([]Review, int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	conn := r.db.Conn(ctx)

	var total int
	countSQL := fmt.Sprintf(`SELECT COUNT(*) FROM reviews r WHERE %s = $1`, column)
	if err := conn.QueryRow(timeoutCtx, countSQL, id).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`%s
		WHERE %s = $1
		ORDER BY r.created_at DESC, r.id
		LIMIT $2 OFFSET $3`, selectReview, column)
	rows, err := conn.Query(timeoutCtx, dataSQL, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rv)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) Create(ctx context.Context, userID string, in CreateInput) (Review, error) {
	const sql = `
		INSERT INTO reviews (book_id, user_id, rating, review_text)
		VALUES ($1, $2, $3, $4)
		RETURNING id::TEXT`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var id string
	err := r.db.Conn(ctx).QueryRow(timeoutCtx, sql, in.BookID, userID, in.Rating, in.Text).Scan(&id)
	switch {
	case postgres.IsUniqueViolation(err, uniqueBookUser):
		return Review{}, ErrAlreadyReviewed
	case postgres.IsForeignKeyViolation(err, bookForeignKey):
		return Review{}, ErrBookNotFound
	case err != nil:
		return Review{}, err
	}
	return r.Get(ctx, id)
}

func (r *PostgresRepo) Update(ctx context.Context, id string, in UpdateInput) (Review, error) {
	const sql = `
		UPDATE reviews SET
			rating      = COALESCE($2, rating),
			review_text = COALESCE($3, review_text),
			updated_at  = now()
		WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Conn(ctx).Exec(timeoutCtx, sql, id, in.Rating, in.Text)
	if err != nil {
		return Review{}, err
	}
	if tag.RowsAffected() == 0 {
		return Review{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Conn(ctx).Exec(timeoutCtx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) DeleteAllForBook(ctx context.Context, bookID string) (int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Conn(ctx).Exec(timeoutCtx, `DELETE FROM reviews WHERE book_id = $1`, bookID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
