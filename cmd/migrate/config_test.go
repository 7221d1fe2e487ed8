package main

import (
	"os"
	"path/filepath"
	"testing"

	"bookreview/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationSource_EnvOverride(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "/custom/migrations")

	fsys, dir := migrationSource()
	assert.Nil(t, fsys)
	assert.Equal(t, "/custom/migrations", dir)
}

func TestMigrationSource_DefaultEmbedded(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")

	fsys, dir := migrationSource()
	assert.Equal(t, db.Migrations, fsys)
	assert.Equal(t, db.MigrationsDir, dir)
}

func TestDatabaseDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	assert.Equal(t, defaultDSN, databaseDSN())

	t.Setenv("DB_DSN", "postgres://x@y/z")
	assert.Equal(t, "postgres://x@y/z", databaseDSN())
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, ".env"), []byte("DB_DSN=from_file\n"), 0o644))
	t.Setenv("DB_DSN", "from_env")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	loadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("DB_DSN"))
}
