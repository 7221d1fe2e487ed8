package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookreview/internal/platform/postgres"

	"github.com/jackc/pgx/v5"
)

const selectBook = `
	SELECT b.id::TEXT, b.title, b.author, b.description, b.genre, b.published_year,
	       u.id::TEXT, u.name, u.email,
	       b.average_rating::FLOAT8, b.review_count, b.created_at, b.updated_at
	FROM books b
	JOIN users u ON u.id = b.owner_id`

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

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.Description, &b.Genre, &b.PublishedYear,
		&b.CreatedBy.ID, &b.CreatedBy.Name, &b.CreatedBy.Email,
		&b.AverageRating, &b.ReviewCount, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(b.title ILIKE $%d OR b.author ILIKE $%d)", argn, argn))
		args = append(args, "%"+escapeLike(q.Search)+"%")
		argn++
	}

	if q.Genre != "" {
		clauses = append(clauses, fmt.Sprintf("b.genre = $%d", argn))
		args = append(args, q.Genre)
		argn++
	}

	if q.OwnerID != "" {
		clauses = append(clauses, fmt.Sprintf("b.owner_id = $%d", argn))
		args = append(args, q.OwnerID)
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	var orderBy string
	switch q.Sort {
	case SortYear:
		orderBy = "b.published_year DESC, b.created_at DESC"
	case SortRating:
		orderBy = "b.average_rating DESC, b.created_at DESC"
	default:
		orderBy = "b.created_at DESC"
	}

	countSQL := "SELECT COUNT(*) FROM books b " + where
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	conn := r.db.Conn(ctx)
	if err := conn.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`%s
		%s
		ORDER BY %s, b.id
		LIMIT $%d OFFSET $%d`,
		selectBook, where, orderBy, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	rows, err := conn.Query(timeoutCtx, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.Conn(ctx).QueryRow(timeoutCtx, selectBook+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

// Exists reports whether a book with id is present.
func (r *PostgresRepo) Exists(ctx context.Context, id string) (bool, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var ok bool
	err := r.db.Conn(ctx).QueryRow(timeoutCtx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r *PostgresRepo) Create(ctx context.Context, ownerID string, in CreateInput) (Book, error) {
	const sql = `
		INSERT INTO books (title, author, description, genre, published_year, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::TEXT`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var id string
	err := r.db.Conn(ctx).QueryRow(timeoutCtx, sql,
		in.Title, in.Author, in.Description, in.Genre, in.PublishedYear, ownerID,
	).Scan(&id)
	if err != nil {
		return Book{}, err
	}
	return r.Get(ctx, id)
}

func (r *PostgresRepo) Update(ctx context.Context, id string, in UpdateInput) (Book, error) {
	const sql = `
		UPDATE books SET
			title          = COALESCE($2, title),
			author         = COALESCE($3, author),
			description    = COALESCE($4, description),
			genre          = COALESCE($5, genre),
			published_year = COALESCE($6, published_year),
			updated_at     = now()
		WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Conn(ctx).Exec(timeoutCtx, sql,
		id, in.Title, in.Author, in.Description, in.Genre, in.PublishedYear,
	)
	if err != nil {
		return Book{}, err
	}
	if tag.RowsAffected() == 0 {
		return Book{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Conn(ctx).Exec(timeoutCtx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
