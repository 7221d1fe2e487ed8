// Package review is the review ledger: at most one review per book and
// user, and the source of truth for book ratings.
package review

import (
	"fmt"
	"strings"
	"time"

	"bookreview/internal/apperror"
)

var (
	// ErrNotFound is returned when a review is not found.
	ErrNotFound = fmt.Errorf("review %w", apperror.ErrNotFound)
	// ErrBookNotFound is returned when the reviewed book does not exist.
	ErrBookNotFound = fmt.Errorf("book %w", apperror.ErrNotFound)
	// ErrAlreadyReviewed is returned when the user already reviewed the book.
	ErrAlreadyReviewed = fmt.Errorf("you have already reviewed this book: %w", apperror.ErrConflict)
)

type AuthorRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BookRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Review is a single user's rating and text for a book.
type Review struct {
	ID        string    `json:"id"`
	Book      BookRef   `json:"book"`
	Author    AuthorRef `json:"author"`
	Rating    int       `json:"rating"`
	Text      string    `json:"review_text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owner implements access.Owned.
func (r Review) Owner() string { return r.Author.ID }

type CreateInput struct {
	BookID string `json:"book_id" validate:"required"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
	Text   string `json:"review_text" validate:"required,min=10,max=1000"`
}

func (in *CreateInput) normalize() {
	in.BookID = strings.TrimSpace(in.BookID)
	in.Text = strings.TrimSpace(in.Text)
}

// UpdateInput changes the non-nil fields only. The book and author of a
// review never change.
type UpdateInput struct {
	Rating *int    `json:"rating" validate:"omitnil,min=1,max=5"`
	Text   *string `json:"review_text" validate:"omitnil,min=10,max=1000"`
}

func (in *UpdateInput) normalize() {
	if in.Text != nil {
		*in.Text = strings.TrimSpace(*in.Text)
	}
}
