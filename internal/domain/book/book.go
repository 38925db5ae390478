package book

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/geocoder89/libraryhub/internal/domain/page"
	"github.com/geocoder89/libraryhub/internal/ids"
	"github.com/geocoder89/libraryhub/internal/validation"
)

const (
	MinYear        = -3000
	maxTitleLength = 200
	// books may be announced a few years ahead of publication
	futureYearSlack = 5
)

type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	Query    *string
	AuthorID *string
	page.Request
}

var (
	ErrNotFound       = errors.New("book not found")
	ErrAuthorNotFound = errors.New("referenced author does not exist")
)

type CreateRequest struct {
	Title    string `json:"title"`
	Year     int    `json:"year"`
	AuthorID string `json:"authorId"`
}

// UpdateRequest only carries title and year. The author linkage of a book is
// fixed at creation.
type UpdateRequest struct {
	Title *string `json:"title"`
	Year  *int    `json:"year"`
}

// New builds a book ready to be stored, enforcing storage bounds.
func New(req CreateRequest, now time.Time) (Book, error) {
	b := Book{
		ID:        ids.NewAt(now),
		Title:     strings.TrimSpace(req.Title),
		Year:      req.Year,
		AuthorID:  strings.ToLower(req.AuthorID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if !ids.Valid(b.AuthorID) {
		return Book{}, ErrAuthorNotFound
	}

	if err := b.check(now); err != nil {
		return Book{}, err
	}

	return b, nil
}

// Apply merges the supplied fields of req into b. Fields left nil keep their
// current value, so a supplied zero value is still applied.
func (b *Book) Apply(req UpdateRequest, now time.Time) error {
	next := *b

	if req.Title != nil {
		next.Title = strings.TrimSpace(*req.Title)
	}
	if req.Year != nil {
		next.Year = *req.Year
	}

	if err := next.check(now); err != nil {
		return err
	}

	next.UpdatedAt = now
	*b = next
	return nil
}

func (b Book) check(now time.Time) error {
	var messages []string

	if n := utf8.RuneCountInString(b.Title); n < 1 || n > maxTitleLength {
		messages = append(messages, fmt.Sprintf("%q must be between 1 and %d characters after trimming", "title", maxTitleLength))
	}

	if maxYear := now.Year() + futureYearSlack; b.Year < MinYear || b.Year > maxYear {
		messages = append(messages, fmt.Sprintf("%q must be between %d and %d", "year", MinYear, maxYear))
	}

	if len(messages) > 0 {
		return validation.NewError(messages...)
	}
	return nil
}
