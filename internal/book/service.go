package book

import (
	"context"
	"fmt"

	"bookreview/internal/access"
	"bookreview/internal/platform/validate"

	"github.com/google/uuid"
)

// Service provides book-related business logic.
type Service struct {
	repo    Repository
	reviews ReviewPurger
	tx      TxRunner
}

// NewService creates a new book service.
func NewService(repo Repository, reviews ReviewPurger, tx TxRunner) *Service {
	return &Service{repo: repo, reviews: reviews, tx: tx}
}

// List returns a page of books matching the query and the total match count.
func (s *Service) List(ctx context.Context, q Query) ([]Book, int, error) {
	if q.Genre == AllGenres {
		q.Genre = ""
	}
	if q.Sort == "" {
		q.Sort = SortNewest
	}
	return s.repo.List(ctx, q)
}

// ListByOwner returns a page of the books catalogued by ownerID. A malformed
// owner id matches nothing.
func (s *Service) ListByOwner(ctx context.Context, ownerID string, q Query) ([]Book, int, error) {
	if uuid.Validate(ownerID) != nil {
		return []Book{}, 0, nil
	}
	q.OwnerID = ownerID
	return s.List(ctx, q)
}

// Get returns a book by its id.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	if uuid.Validate(id) != nil {
		return Book{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Create catalogues a new book owned by ownerID with an empty rating summary.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Book, error) {
	if err := access.RequireUser(ownerID); err != nil {
		return Book{}, err
	}
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return Book{}, err
	}
	return s.repo.Create(ctx, ownerID, in)
}

// Update changes the descriptive fields of a book. Only the owner may update.
func (s *Service) Update(ctx context.Context, id, requesterID string, in UpdateInput) (Book, error) {
	if err := access.RequireUser(requesterID); err != nil {
		return Book{}, err
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if _, err := access.Authorize(requesterID, b); err != nil {
		return Book{}, err
	}
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return Book{}, err
	}
	return s.repo.Update(ctx, id, in)
}

// Delete removes a book and all of its reviews in one transaction.
// Only the owner may delete.
func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	if err := access.RequireUser(requesterID); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		capability, err := access.Authorize(requesterID, b)
		if err != nil {
			return err
		}
		if _, err := s.reviews.DeleteAllForBook(ctx, capability.Resource.ID); err != nil {
			return fmt.Errorf("delete reviews of book %s: %w", id, err)
		}
		return s.repo.Delete(ctx, capability.Resource.ID)
	})
}
