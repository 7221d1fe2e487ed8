package main

import (
	"context"
	"time"

	"bookreview/internal/rating"

	"go.uber.org/zap"
)

type reconciler interface {
	RecomputeAll(ctx context.Context) (rating.ReconcileResult, error)
}

// runReconciler repairs stale rating summaries every interval until ctx is done.
func runReconciler(ctx context.Context, r reconciler, every time.Duration, log *zap.Logger) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			res, err := r.RecomputeAll(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error("rating reconcile failed", zap.Error(err))
				continue
			}
			log.Info("rating reconcile finished",
				zap.Int("checked", res.Checked),
				zap.Int("changed", res.Changed),
			)
		}
	}
}
