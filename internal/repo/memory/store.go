// Package memory is an in-process catalog store. One lock guards users,
// authors and books together, so cross-entity checks and the writes that
// depend on them happen atomically.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/libraryhub/internal/domain/author"
	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/user"
)

type Store struct {
	mu sync.RWMutex

	users       map[string]user.User
	userByEmail map[string]string
	authors     map[string]author.Author
	authorOrder []string
	books       map[string]book.Book
	bookOrder   []string

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]user.User),
		userByEmail: make(map[string]string),
		authors:     make(map[string]author.Author),
		books:       make(map[string]book.Book),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() *UsersRepo {
	return &UsersRepo{s: s}
}

func (s *Store) Authors() *AuthorsRepo {
	return &AuthorsRepo{s: s}
}

func (s *Store) Books() *BooksRepo {
	return &BooksRepo{s: s}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

// booksOfLocked returns the books referencing authorID in insertion order.
// Callers hold s.mu.
func (s *Store) booksOfLocked(authorID string) []book.Book {
	out := []book.Book{}
	for _, id := range s.bookOrder {
		if b := s.books[id]; b.AuthorID == authorID {
			out = append(out, b)
		}
	}
	return out
}
