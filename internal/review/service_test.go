package review

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bookreview/internal/apperror"
	"bookreview/internal/rating"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	authorID = "9a1f3c2e-7b6d-4e58-a0c1-2d3e4f5a6b01"
	otherID  = "9a1f3c2e-7b6d-4e58-a0c1-2d3e4f5a6b02"
	bookID   = "c4e1d2b3-a5f6-4789-9abc-def012345678"
	reviewID = "e7d6c5b4-a392-4817-8f6e-5d4c3b2a1908"
)

type serviceDeps struct {
	repo    *MockRepository
	books   *MockBookLookup
	ratings *MockAggregator
	service *Service
}

func newTestService(t *testing.T) serviceDeps {
	ctrl := gomock.NewController(t)
	tx := NewMockTxRunner(ctrl)
	tx.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()

	d := serviceDeps{
		repo:    NewMockRepository(ctrl),
		books:   NewMockBookLookup(ctrl),
		ratings: NewMockAggregator(ctrl),
	}
	d.service = NewService(d.repo, d.books, d.ratings, tx)
	return d
}

func existingReview() Review {
	return Review{
		ID:     reviewID,
		Book:   BookRef{ID: bookID, Title: "Dune"},
		Author: AuthorRef{ID: authorID},
		Rating: 4,
		Text:   "A sweeping desert epic.",
	}
}

func validInput() CreateInput {
	return CreateInput{BookID: bookID, Rating: 4, Text: "  A sweeping desert epic.  "}
}

func TestService_Create(t *testing.T) {
	t.Run("persists and recomputes", func(t *testing.T) {
		d := newTestService(t)
		gomock.InOrder(
			d.books.EXPECT().Exists(gomock.Any(), bookID).Return(true, nil),
			d.repo.EXPECT().Create(gomock.Any(), authorID, CreateInput{BookID: bookID, Rating: 4, Text: "A sweeping desert epic."}).
				Return(existingReview(), nil),
			d.ratings.EXPECT().Recompute(gomock.Any(), bookID).Return(rating.Summary{Average: 4, Count: 1}, nil),
		)

		rv, err := d.service.Create(context.Background(), authorID, validInput())
		require.NoError(t, err)
		assert.Equal(t, reviewID, rv.ID)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		d := newTestService(t)
		_, err := d.service.Create(context.Background(), "", validInput())
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	invalid := map[string]func(*CreateInput){
		"rating zero":  func(in *CreateInput) { in.Rating = 0 },
		"rating six":   func(in *CreateInput) { in.Rating = 6 },
		"short text":   func(in *CreateInput) { in.Text = "   too short   " },
		"long text":    func(in *CreateInput) { in.Text = strings.Repeat("x", 1001) },
		"missing book": func(in *CreateInput) { in.BookID = "" },
	}
	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			d := newTestService(t)
			in := validInput()
			mutate(&in)
			_, err := d.service.Create(context.Background(), authorID, in)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}

	t.Run("text bounds inclusive", func(t *testing.T) {
		for _, text := range []string{strings.Repeat("x", 10), strings.Repeat("x", 1000)} {
			d := newTestService(t)
			d.books.EXPECT().Exists(gomock.Any(), bookID).Return(true, nil)
			d.repo.EXPECT().Create(gomock.Any(), authorID, gomock.Any()).Return(existingReview(), nil)
			d.ratings.EXPECT().Recompute(gomock.Any(), bookID).Return(rating.Summary{}, nil)

			_, err := d.service.Create(context.Background(), authorID, CreateInput{BookID: bookID, Rating: 1, Text: text})
			assert.NoError(t, err)
		}
	})

	t.Run("unknown book", func(t *testing.T) {
		d := newTestService(t)
		d.books.EXPECT().Exists(gomock.Any(), bookID).Return(false, nil)

		_, err := d.service.Create(context.Background(), authorID, validInput())
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("malformed book id", func(t *testing.T) {
		d := newTestService(t)
		in := validInput()
		in.BookID = "42"

		_, err := d.service.Create(context.Background(), authorID, in)
		assert.ErrorIs(t, err, ErrBookNotFound)
	})

	t.Run("duplicate", func(t *testing.T) {
		d := newTestService(t)
		d.books.EXPECT().Exists(gomock.Any(), bookID).Return(true, nil)
		d.repo.EXPECT().Create(gomock.Any(), authorID, gomock.Any()).Return(Review{}, ErrAlreadyReviewed)

		_, err := d.service.Create(context.Background(), authorID, validInput())
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("recompute failure is surfaced", func(t *testing.T) {
		d := newTestService(t)
		d.books.EXPECT().Exists(gomock.Any(), bookID).Return(true, nil)
		d.repo.EXPECT().Create(gomock.Any(), authorID, gomock.Any()).Return(existingReview(), nil)
		d.ratings.EXPECT().Recompute(gomock.Any(), bookID).Return(rating.Summary{}, errors.New("store unavailable"))

		_, err := d.service.Create(context.Background(), authorID, validInput())
		assert.ErrorContains(t, err, "recompute rating")
	})
}

func TestService_Update(t *testing.T) {
	five := 5

	t.Run("author", func(t *testing.T) {
		d := newTestService(t)
		updated := existingReview()
		updated.Rating = 5
		gomock.InOrder(
			d.repo.EXPECT().Get(gomock.Any(), reviewID).Return(existingReview(), nil),
			d.repo.EXPECT().Update(gomock.Any(), reviewID, UpdateInput{Rating: &five}).Return(updated, nil),
			d.ratings.EXPECT().Recompute(gomock.Any(), bookID).Return(rating.Summary{Average: 5, Count: 1}, nil),
		)

		rv, err := d.service.Update(context.Background(), reviewID, authorID, UpdateInput{Rating: &five})
		require.NoError(t, err)
		assert.Equal(t, 5, rv.Rating)
	})

	t.Run("not author", func(t *testing.T) {
		d := newTestService(t)
		d.repo.EXPECT().Get(gomock.Any(), reviewID).Return(existingReview(), nil)

		_, err := d.service.Update(context.Background(), reviewID, otherID, UpdateInput{Rating: &five})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("unknown review", func(t *testing.T) {
		d := newTestService(t)
		d.repo.EXPECT().Get(gomock.Any(), reviewID).Return(Review{}, ErrNotFound)

		_, err := d.service.Update(context.Background(), reviewID, authorID, UpdateInput{Rating: &five})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("out of range", func(t *testing.T) {
		d := newTestService(t)
		d.repo.EXPECT().Get(gomock.Any(), reviewID).Return(existingReview(), nil)
		zero := 0

		_, err := d.service.Update(context.Background(), reviewID, authorID, UpdateInput{Rating: &zero})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("author", func(t *testing.T) {
		d := newTestService(t)
		gomock.InOrder(
			d.repo.EXPECT().Get(gomock.Any(), reviewID).Return(existingReview(), nil),
			d.repo.EXPECT().Delete(gomock.Any(), reviewID).Return(nil),
			d.ratings.EXPECT().Recompute(gomock.Any(), bookID).Return(rating.Summary{}, nil),
		)

		require.NoError(t, d.service.Delete(context.Background(), reviewID, authorID))
	})

	t.Run("not author", func(t *testing.T) {
		d := newTestService(t)
		d.repo.EXPECT().Get(gomock.Any(), reviewID).Return(existingReview(), nil)

		err := d.service.Delete(context.Background(), reviewID, otherID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("malformed id", func(t *testing.T) {
		d := newTestService(t)
		err := d.service.Delete(context.Background(), "abc", authorID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_DeleteAllForBookSkipsAggregation(t *testing.T) {
	d := newTestService(t)
	d.repo.EXPECT().DeleteAllForBook(gomock.Any(), bookID).Return(3, nil)

	n, err := d.service.DeleteAllForBook(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestService_ListByBook(t *testing.T) {
	d := newTestService(t)

	d.books.EXPECT().Exists(gomock.Any(), bookID).Return(true, nil)
	d.repo.EXPECT().ListByBook(gomock.Any(), bookID, 20, 0).Return([]Review{existingReview()}, 1, nil)
	reviews, total, err := d.service.ListByBook(context.Background(), bookID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Equal(t, 1, total)

	d.books.EXPECT().Exists(gomock.Any(), bookID).Return(false, nil)
	_, _, err = d.service.ListByBook(context.Background(), bookID, 20, 0)
	assert.ErrorIs(t, err, ErrBookNotFound)
}
