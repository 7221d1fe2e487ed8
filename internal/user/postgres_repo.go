package user

import (
	"context"
	"errors"
	"time"

	"bookreview/internal/platform/postgres"

	"github.com/jackc/pgx/v5"
)

const uniqueEmail = "users_email_key"

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

func (r *PostgresRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (name, email, password_hash)
	VALUES ($1, $2, $3)
	RETURNING id::TEXT, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.Conn(ctx).QueryRow(timeoutCtx, query, u.Name, u.Email, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if postgres.IsUniqueViolation(err, uniqueEmail) {
		return ErrEmailTaken
	}
	return err
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PostgresRepo) getBy(ctx context.Context, column, value string) (User, error) {
	query := `
	SELECT id::TEXT, name, email, password_hash, created_at, updated_at
	FROM users WHERE ` + column + ` = $1 LIMIT 1
	`
	var u User
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.Conn(ctx).QueryRow(timeoutCtx, query, value).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}
