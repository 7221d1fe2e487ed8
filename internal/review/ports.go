package review

import (
	"context"

	"bookreview/internal/rating"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=review

// Repository defines the contract for review data storage.
type Repository interface {
	Get(ctx context.Context, id string) (Review, error)
	ListByBook(ctx context.Context, bookID string, limit, offset int) ([]Review, int, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Review, int, error)
	// Create maps a duplicate (book, user) pair to ErrAlreadyReviewed.
	Create(ctx context.Context, userID string, in CreateInput) (Review, error)
	Update(ctx context.Context, id string, in UpdateInput) (Review, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForBook(ctx context.Context, bookID string) (int, error)
}

// BookLookup checks that a reviewed book exists.
type BookLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Aggregator refreshes the cached rating summary of a book.
type Aggregator interface {
	Recompute(ctx context.Context, bookID string) (rating.Summary, error)
}

// TxRunner runs fn inside a single database transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
