package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookreview/db"
	"bookreview/internal/config"
	"bookreview/internal/platform/logger"
	"bookreview/internal/platform/postgres"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logger())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open database %s: %w", config.RedactDSN(cfg.DatabaseDSN), err)
	}
	defer pool.Close()
	log.Info("database connection OK", zap.String("dsn", config.RedactDSN(cfg.DatabaseDSN)))

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, db.Migrations, db.MigrationsDir); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
	}

	a := newApp(cfg, postgres.New(pool), log)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      a.handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return a.limiter.RunCleanup(gctx)
	})
	if cfg.ReconcileInterval > 0 {
		g.Go(func() error {
			return runReconciler(gctx, a.ratings, cfg.ReconcileInterval, log)
		})
	}

	return g.Wait()
}
