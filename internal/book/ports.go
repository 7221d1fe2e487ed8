package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Book, int, error)
	Get(ctx context.Context, id string) (Book, error)
	Create(ctx context.Context, ownerID string, in CreateInput) (Book, error)
	Update(ctx context.Context, id string, in UpdateInput) (Book, error)
	Delete(ctx context.Context, id string) error
}

// ReviewPurger removes every review of a book that is being deleted.
type ReviewPurger interface {
	DeleteAllForBook(ctx context.Context, bookID string) (int, error)
}

// TxRunner runs fn inside a single database transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
