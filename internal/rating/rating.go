// Package rating derives and stores the cached rating summary of a book.
//
// The summary on the books row is a denormalized view of the reviews table.
// Aggregator is its only writer: every review mutation calls Recompute in
// the same transaction, and RecomputeAll repairs drift left by concurrent
// writers (the last aggregation to commit wins).
package rating

import (
	"context"
	"errors"
	"fmt"

	"bookreview/internal/apperror"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrBookNotFound is returned when the summary target does not exist.
var ErrBookNotFound = fmt.Errorf("book %w", apperror.ErrNotFound)

// Summary is the cached aggregate stored on a book.
type Summary struct {
	Average float64 `json:"average_rating"`
	Count   int     `json:"review_count"`
}

// Compute averages ratings to one decimal place, rounding half away from
// zero. No ratings yields the zero Summary.
func Compute(ratings []int) Summary {
	if len(ratings) == 0 {
		return Summary{}
	}
	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	avg := decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(int64(len(ratings))), 1)
	return Summary{Average: avg.InexactFloat64(), Count: len(ratings)}
}

type Store interface {
	// ListRatings returns the rating of every review of bookID.
	ListRatings(ctx context.Context, bookID string) ([]int, error)
	// GetSummary returns the cached summary, or ErrBookNotFound.
	GetSummary(ctx context.Context, bookID string) (Summary, error)
	// SaveSummary writes s when it differs from the stored value and reports
	// whether a write happened. Missing books yield ErrBookNotFound.
	SaveSummary(ctx context.Context, bookID string, s Summary) (bool, error)
	// ListBookIDs returns the id of every book.
	ListBookIDs(ctx context.Context) ([]string, error)
}

type Aggregator struct {
	store  Store
	logger *zap.Logger
}

func NewAggregator(store Store, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{store: store, logger: logger.Named("rating")}
}

// Recompute rebuilds the summary of bookID from its reviews and stores it.
func (a *Aggregator) Recompute(ctx context.Context, bookID string) (Summary, error) {
	ratings, err := a.store.ListRatings(ctx, bookID)
	if err != nil {
		return Summary{}, fmt.Errorf("list ratings for book %s: %w", bookID, err)
	}
	s := Compute(ratings)
	changed, err := a.store.SaveSummary(ctx, bookID, s)
	if err != nil {
		return Summary{}, fmt.Errorf("save rating summary for book %s: %w", bookID, err)
	}
	if changed {
		a.logger.Debug("rating summary updated",
			zap.String("book_id", bookID),
			zap.Float64("average_rating", s.Average),
			zap.Int("review_count", s.Count),
		)
	}
	return s, nil
}

// Get returns the cached summary without recomputing it.
func (a *Aggregator) Get(ctx context.Context, bookID string) (Summary, error) {
	return a.store.GetSummary(ctx, bookID)
}

type ReconcileResult struct {
	Checked int
	Changed int
}

// RecomputeAll recomputes every book and reports how many summaries were
// stale. Books deleted while the sweep runs are skipped.
func (a *Aggregator) RecomputeAll(ctx context.Context) (ReconcileResult, error) {
	ids, err := a.store.ListBookIDs(ctx)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("list books: %w", err)
	}

	var res ReconcileResult
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		ratings, err := a.store.ListRatings(ctx, id)
		if err != nil {
			return res, fmt.Errorf("list ratings for book %s: %w", id, err)
		}
		changed, err := a.store.SaveSummary(ctx, id, Compute(ratings))
		if errors.Is(err, ErrBookNotFound) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("save rating summary for book %s: %w", id, err)
		}
		res.Checked++
		if changed {
			res.Changed++
			a.logger.Warn("stale rating summary repaired", zap.String("book_id", id))
		}
	}
	return res, nil
}
