package book

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/platform/validate"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = fmt.Errorf("book %w", apperror.ErrNotFound)

// Genres is the closed set of genres a book may carry.
var Genres = []string{
	"Fiction",
	"Non-Fiction",
	"Mystery",
	"Thriller",
	"Romance",
	"Science Fiction",
	"Fantasy",
	"Biography",
	"History",
	"Self-Help",
	"Other",
}

const (
	DefaultGenre = "Other"
	// AllGenres in a list query disables the genre filter.
	AllGenres = "All"
)

func ValidGenre(g string) bool {
	return slices.Contains(Genres, g)
}

func init() {
	validate.MustRegister("genre", ValidGenre)
}

// UserRef is the public view of a user embedded in book responses.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Book represents a catalogued book. AverageRating and ReviewCount are
// maintained by the rating aggregator and never set through this package.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description"`
	Genre         string    `json:"genre"`
	PublishedYear int       `json:"published_year"`
	CreatedBy     UserRef   `json:"owner"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int       `json:"review_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Owner implements access.Owned.
func (b Book) Owner() string { return b.CreatedBy.ID }

type CreateInput struct {
	Title         string `json:"title" validate:"required,max=200"`
	Author        string `json:"author" validate:"required,max=100"`
	Description   string `json:"description" validate:"required,max=2000"`
	Genre         string `json:"genre" validate:"required,genre"`
	PublishedYear int    `json:"published_year" validate:"required,min=1000,not_future_year"`
}

func (in *CreateInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Description = strings.TrimSpace(in.Description)
	in.Genre = strings.TrimSpace(in.Genre)
	if in.Genre == "" {
		in.Genre = DefaultGenre
	}
}

// UpdateInput changes the non-nil fields only.
type UpdateInput struct {
	Title         *string `json:"title" validate:"omitnil,min=1,max=200"`
	Author        *string `json:"author" validate:"omitnil,min=1,max=100"`
	Description   *string `json:"description" validate:"omitnil,min=1,max=2000"`
	Genre         *string `json:"genre" validate:"omitnil,genre"`
	PublishedYear *int    `json:"published_year" validate:"omitnil,min=1000,not_future_year"`
}

func (in *UpdateInput) normalize() {
	for _, p := range []*string{in.Title, in.Author, in.Description, in.Genre} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

// Sort orders a book listing. All orders are descending.
type Sort string

const (
	SortNewest Sort = "newest"
	SortYear   Sort = "year"
	SortRating Sort = "rating"
)

// ParseSort maps a sort_by value to a Sort, defaulting to SortNewest.
func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(s)) {
	case SortYear:
		return SortYear
	case SortRating:
		return SortRating
	default:
		return SortNewest
	}
}

// Query defines filters and pagination for listing books.
type Query struct {
	Search  string
	Genre   string
	OwnerID string
	Sort    Sort
	Limit   int
	Offset  int
}
