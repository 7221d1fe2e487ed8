package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bookreview/internal/config"
	"bookreview/internal/platform/logger"
	"bookreview/internal/platform/postgres"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, version, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()
	log := logger.New(logger.ConfigForEnvironment(os.Getenv("APP_ENV"), "info"))
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), *command, *name, log); err != nil {
		log.Error("migration failed", zap.String("command", *command), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, command, name string, log *zap.Logger) error {
	fsys, dir := migrationSource()

	if command == "create" {
		if name == "" {
			return fmt.Errorf("name is required for 'create' command")
		}
		if fsys != nil {
			dir = "db/migrations"
		}
		if err := goose.Create(nil, dir, name, "sql"); err != nil {
			return err
		}
		log.Info("migration created", zap.String("name", name), zap.String("dir", dir))
		return nil
	}

	dsn := databaseDSN()
	pool, err := postgres.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", config.RedactDSN(dsn), err)
	}
	defer pool.Close()

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	goose.SetBaseFS(fsys)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		if err := goose.UpContext(ctx, sqlDB, dir); err != nil {
			return err
		}
		log.Info("migrations applied")
	case "down":
		if err := goose.DownContext(ctx, sqlDB, dir); err != nil {
			return err
		}
		log.Info("migration rolled back")
	case "status":
		return goose.StatusContext(ctx, sqlDB, dir)
	case "version":
		return goose.VersionContext(ctx, sqlDB, dir)
	default:
		return fmt.Errorf("unknown command %q: use up, down, status, version, create", command)
	}
	return nil
}
