package review

import (
	"context"
	"fmt"

	"bookreview/internal/access"
	"bookreview/internal/platform/validate"

	"github.com/google/uuid"
)

// Service owns the review lifecycle. Every mutation and the recomputation
// of the affected book's rating commit or roll back together.
type Service struct {
	repo    Repository
	books   BookLookup
	ratings Aggregator
	tx      TxRunner
}

func NewService(repo Repository, books BookLookup, ratings Aggregator, tx TxRunner) *Service {
	return &Service{repo: repo, books: books, ratings: ratings, tx: tx}
}

func (s *Service) Get(ctx context.Context, id string) (Review, error) {
	if uuid.Validate(id) != nil {
		return Review{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// ListByBook returns a page of a book's reviews, newest first.
func (s *Service) ListByBook(ctx context.Context, bookID string, limit, offset int) ([]Review, int, error) {
	if uuid.Validate(bookID) != nil {
		return nil, 0, ErrBookNotFound
	}
	ok, err := s.books.Exists(ctx, bookID)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrBookNotFound
	}
	return s.repo.ListByBook(ctx, bookID, limit, offset)
}

// ListByUser returns a page of a user's reviews, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Review, int, error) {
	if uuid.Validate(userID) != nil {
		return []Review{}, 0, nil
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// Create records requesterID's review of a book. A second review of the
// same book by the same user fails with ErrAlreadyReviewed.
func (s *Service) Create(ctx context.Context, requesterID string, in CreateInput) (Review, error) {
	if err := access.RequireUser(requesterID); err != nil {
		return Review{}, err
	}
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return Review{}, err
	}
	if uuid.Validate(in.BookID) != nil {
		return Review{}, ErrBookNotFound
	}

	var created Review
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ok, err := s.books.Exists(ctx, in.BookID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrBookNotFound
		}
		created, err = s.repo.Create(ctx, requesterID, in)
		if err != nil {
			return err
		}
		return s.recompute(ctx, created.Book.ID)
	})
	if err != nil {
		return Review{}, err
	}
	return created, nil
}

// Update changes the rating or text of a review. Only its author may update.
func (s *Service) Update(ctx context.Context, id, requesterID string, in UpdateInput) (Review, error) {
	if err := access.RequireUser(requesterID); err != nil {
		return Review{}, err
	}

	var updated Review
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if _, err := access.Authorize(requesterID, existing); err != nil {
			return err
		}
		in.normalize()
		if err := validate.Struct(in); err != nil {
			return err
		}
		updated, err = s.repo.Update(ctx, id, in)
		if err != nil {
			return err
		}
		return s.recompute(ctx, existing.Book.ID)
	})
	if err != nil {
		return Review{}, err
	}
	return updated, nil
}

// Delete removes a review. Only its author may delete.
func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	if err := access.RequireUser(requesterID); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		capability, err := access.Authorize(requesterID, existing)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, capability.Resource.ID); err != nil {
			return err
		}
		return s.recompute(ctx, capability.Resource.Book.ID)
	})
}

// DeleteAllForBook removes every review of a book that is being deleted.
// The book's rating is not recomputed.
func (s *Service) DeleteAllForBook(ctx context.Context, bookID string) (int, error) {
	return s.repo.DeleteAllForBook(ctx, bookID)
}

func (s *Service) recompute(ctx context.Context, bookID string) error {
	if _, err := s.ratings.Recompute(ctx, bookID); err != nil {
		return fmt.Errorf("recompute rating: %w", err)
	}
	return nil
}
