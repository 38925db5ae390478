package author

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/page"
	"github.com/geocoder89/libraryhub/internal/ids"
	"github.com/geocoder89/libraryhub/internal/validation"
)

const maxNameLength = 50

type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BirthYear int       `json:"birthYear"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Books is only populated when the caller asked for it; a nil slice is
	// left out of the JSON while an empty one renders as [].
	Books []book.Book `json:"books,omitzero"`
}

type ListFilter struct {
	Name         *string
	IncludeBooks bool
	page.Request
}

var (
	ErrNotFound = errors.New("author not found")
	ErrHasBooks = errors.New("cannot delete author with associated books")
)

type CreateRequest struct {
	Name      string `json:"name"`
	BirthYear int    `json:"birthYear"`
}

type UpdateRequest struct {
	Name      *string `json:"name"`
	BirthYear *int    `json:"birthYear"`
}

// New builds an author ready to be stored, enforcing storage bounds.
func New(req CreateRequest, now time.Time) (Author, error) {
	a := Author{
		ID:        ids.NewAt(now),
		Name:      strings.TrimSpace(req.Name),
		BirthYear: req.BirthYear,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := a.check(now); err != nil {
		return Author{}, err
	}

	return a, nil
}

// Apply merges the supplied fields of req into a. Presence, not truthiness,
// decides what changes.
func (a *Author) Apply(req UpdateRequest, now time.Time) error {
	next := *a

	if req.Name != nil {
		next.Name = strings.TrimSpace(*req.Name)
	}
	if req.BirthYear != nil {
		next.BirthYear = *req.BirthYear
	}

	if err := next.check(now); err != nil {
		return err
	}

	next.UpdatedAt = now
	*a = next
	return nil
}

// storage bounds, checked on every write independently of the request schema
func (a Author) check(now time.Time) error {
	var messages []string

	if n := utf8.RuneCountInString(a.Name); n < 1 || n > maxNameLength {
		messages = append(messages, fmt.Sprintf("%q must be between 1 and %d characters after trimming", "name", maxNameLength))
	}

	if a.BirthYear < 0 || a.BirthYear > now.Year() {
		messages = append(messages, fmt.Sprintf("%q must be between 0 and %d", "birthYear", now.Year()))
	}

	if len(messages) > 0 {
		return validation.NewError(messages...)
	}
	return nil
}
