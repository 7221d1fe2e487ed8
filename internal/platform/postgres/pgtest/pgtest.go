// Package pgtest starts a throwaway PostgreSQL container with the schema
// migrated, for repository integration tests.
package pgtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookreview/db"
	"bookreview/internal/platform/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	mu     sync.Mutex
	shared string
)

// New returns a DB backed by a container shared across the test binary.
// Tables are truncated before returning. Skipped with -short or without Docker.
func New(t *testing.T) *postgres.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	dsn := containerDSN(t, ctx)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE reviews, books, users CASCADE`)
	require.NoError(t, err)

	return postgres.New(pool)
}

func containerDSN(t *testing.T, ctx context.Context) string {
	t.Helper()
	mu.Lock()
	defer mu.Unlock()

	if shared != "" {
		return shared
	}

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("bookreview_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.Open(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, postgres.Migrate(ctx, pool, db.Migrations, db.MigrationsDir))

	shared = dsn
	return shared
}

// CreateUser inserts a user row and returns its id.
func CreateUser(t *testing.T, pg *postgres.DB, name, email string) string {
	t.Helper()
	var id string
	err := pg.Pool().QueryRow(context.Background(),
		`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, 'x') RETURNING id`,
		name, email,
	).Scan(&id)
	require.NoError(t, err)
	return id
}
