package review

import (
	"context"
	"testing"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/book"
	"bookreview/internal/platform/postgres"
	"bookreview/internal/platform/postgres/pgtest"
	"bookreview/internal/rating"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledger struct {
	pg       *postgres.DB
	books    *book.Service
	reviews  *Service
	ratings  *rating.Aggregator
	bookRepo *book.PostgresRepo
}

func newLedger(t *testing.T) ledger {
	pg := pgtest.New(t)
	bookRepo := book.NewPostgresRepo(pg, 5*time.Second)
	agg := rating.NewAggregator(rating.NewPostgresRepo(pg, 5*time.Second), nil)
	reviews := NewService(NewPostgresRepo(pg, 5*time.Second), bookRepo, agg, pg)
	return ledger{
		pg:       pg,
		books:    book.NewService(bookRepo, reviews, pg),
		reviews:  reviews,
		ratings:  agg,
		bookRepo: bookRepo,
	}
}

func (l ledger) createBook(t *testing.T, owner string) book.Book {
	t.Helper()
	b, err := l.books.Create(context.Background(), owner, book.CreateInput{
		Title: "Dune", Author: "Frank Herbert", Description: "Spice.",
		Genre: "Science Fiction", PublishedYear: 1965,
	})
	require.NoError(t, err)
	return b
}

func (l ledger) summary(t *testing.T, bookID string) (float64, int) {
	t.Helper()
	b, err := l.books.Get(context.Background(), bookID)
	require.NoError(t, err)
	return b.AverageRating, b.ReviewCount
}

func TestLedger_AverageFollowsReviews(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	owner := pgtest.CreateUser(t, l.pg, "Owner", "owner@example.com")
	b := l.createBook(t, owner)

	avg, count := l.summary(t, b.ID)
	assert.Equal(t, 0.0, avg)
	assert.Equal(t, 0, count)

	var firstReview Review
	for i, r := range []int{4, 5, 3} {
		user := pgtest.CreateUser(t, l.pg, "Reader", "reader"+string(rune('a'+i))+"@example.com")
		rv, err := l.reviews.Create(ctx, user, CreateInput{BookID: b.ID, Rating: r, Text: "Worth reading twice."})
		require.NoError(t, err)
		if i == 0 {
			firstReview = rv
		}
	}
	avg, count = l.summary(t, b.ID)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 3, count)

	two := 2
	_, err := l.reviews.Update(ctx, firstReview.ID, firstReview.Author.ID, UpdateInput{Rating: &two})
	require.NoError(t, err)
	avg, _ = l.summary(t, b.ID)
	assert.Equal(t, 3.3, avg)

	require.NoError(t, l.reviews.Delete(ctx, firstReview.ID, firstReview.Author.ID))
	avg, count = l.summary(t, b.ID)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 2, count)
}

func TestLedger_RecomputeIsIdempotent(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	owner := pgtest.CreateUser(t, l.pg, "Owner", "owner@example.com")
	reader := pgtest.CreateUser(t, l.pg, "Reader", "reader@example.com")
	b := l.createBook(t, owner)

	_, err := l.reviews.Create(ctx, reader, CreateInput{BookID: b.ID, Rating: 5, Text: "Worth reading twice."})
	require.NoError(t, err)
	before, err := l.books.Get(ctx, b.ID)
	require.NoError(t, err)

	s, err := l.ratings.Recompute(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, rating.Summary{Average: 5.0, Count: 1}, s)

	after, err := l.books.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
	assert.Equal(t, before.AverageRating, after.AverageRating)
}

func TestLedger_OneReviewPerUser(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	owner := pgtest.CreateUser(t, l.pg, "Owner", "owner@example.com")
	reader := pgtest.CreateUser(t, l.pg, "Reader", "reader@example.com")
	b := l.createBook(t, owner)

	first, err := l.reviews.Create(ctx, reader, CreateInput{BookID: b.ID, Rating: 3, Text: "Good but long-winded."})
	require.NoError(t, err)

	_, err = l.reviews.Create(ctx, reader, CreateInput{BookID: b.ID, Rating: 5, Text: "Changed my mind entirely."})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	avg, count := l.summary(t, b.ID)
	assert.Equal(t, 3.0, avg)
	assert.Equal(t, 1, count)

	five := 5
	updated, err := l.reviews.Update(ctx, first.ID, reader, UpdateInput{Rating: &five})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "Dune", updated.Book.Title)

	_, err = l.reviews.Update(ctx, first.ID, owner, UpdateInput{Rating: &five})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestLedger_BookDeleteRemovesReviews(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	owner := pgtest.CreateUser(t, l.pg, "Owner", "owner@example.com")
	reader := pgtest.CreateUser(t, l.pg, "Reader", "reader@example.com")
	b := l.createBook(t, owner)

	rv, err := l.reviews.Create(ctx, reader, CreateInput{BookID: b.ID, Rating: 4, Text: "Worth reading twice."})
	require.NoError(t, err)

	assert.ErrorIs(t, l.books.Delete(ctx, b.ID, reader), apperror.ErrForbidden)
	require.NoError(t, l.books.Delete(ctx, b.ID, owner))

	_, err = l.books.Get(ctx, b.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = l.reviews.Get(ctx, rv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	reviews, total, err := l.reviews.ListByUser(ctx, reader, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.Equal(t, 0, total)
}

func TestLedger_ForeignKeyCascade(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	owner := pgtest.CreateUser(t, l.pg, "Owner", "owner@example.com")
	b := l.createBook(t, owner)

	_, err := l.reviews.Create(ctx, owner, CreateInput{BookID: b.ID, Rating: 2, Text: "Reviewing my own book."})
	require.NoError(t, err)

	_, err = l.pg.Pool().Exec(ctx, `DELETE FROM books WHERE id = $1`, b.ID)
	require.NoError(t, err)

	var left int
	require.NoError(t, l.pg.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE book_id = $1`, b.ID).Scan(&left))
	assert.Zero(t, left)
}

func TestLedger_ReconcileRepairsDrift(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	owner := pgtest.CreateUser(t, l.pg, "Owner", "owner@example.com")
	b := l.createBook(t, owner)

	_, err := l.reviews.Create(ctx, owner, CreateInput{BookID: b.ID, Rating: 3, Text: "Reviewing my own book."})
	require.NoError(t, err)

	// A recomputation that lost the race leaves a stale summary behind.
	_, err = l.pg.Pool().Exec(ctx, `UPDATE books SET average_rating = 1.0, review_count = 7 WHERE id = $1`, b.ID)
	require.NoError(t, err)

	res, err := l.ratings.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, rating.ReconcileResult{Checked: 1, Changed: 1}, res)

	avg, count := l.summary(t, b.ID)
	assert.Equal(t, 3.0, avg)
	assert.Equal(t, 1, count)
}

func TestLedger_ListByBookPagination(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	owner := pgtest.CreateUser(t, l.pg, "Owner", "owner@example.com")
	b := l.createBook(t, owner)

	for i := 0; i < 12; i++ {
		user := pgtest.CreateUser(t, l.pg, "Reader", "r"+string(rune('a'+i))+"@example.com")
		_, err := l.reviews.Create(ctx, user, CreateInput{BookID: b.ID, Rating: 1 + i%5, Text: "Worth reading twice."})
		require.NoError(t, err)
	}

	reviews, total, err := l.reviews.ListByBook(ctx, b.ID, 5, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Len(t, reviews, 5)
}
