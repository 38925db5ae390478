package memory

import (
	"context"
	"strings"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/page"
)

type BooksRepo struct {
	s *Store
}

func (r *BooksRepo) List(ctx context.Context, filter book.ListFilter) ([]book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var needle, authorID string
	if filter.Query != nil {
		needle = strings.ToLower(*filter.Query)
	}
	if filter.AuthorID != nil {
		authorID = strings.ToLower(*filter.AuthorID)
	}

	matched := make([]book.Book, 0, len(r.s.bookOrder))
	for _, id := range r.s.bookOrder {
		b := r.s.books[id]
		if needle != "" && !strings.Contains(strings.ToLower(b.Title), needle) {
			continue
		}
		if filter.AuthorID != nil && b.AuthorID != authorID {
			continue
		}
		matched = append(matched, b)
	}

	return page.Slice(matched, filter.Request.Clamp()), nil
}

func (r *BooksRepo) GetByID(ctx context.Context, id string) (book.Book, error) {
	if err := ctx.Err(); err != nil {
		return book.Book{}, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.books[strings.ToLower(id)]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

// Create stores a book after confirming, under the store lock, that its
// author exists.
func (r *BooksRepo) Create(ctx context.Context, req book.CreateRequest) (book.Book, error) {
	if err := ctx.Err(); err != nil {
		return book.Book{}, err
	}

	b, err := book.New(req, r.s.now())
	if err != nil {
		return book.Book{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.authors[b.AuthorID]; !ok {
		return book.Book{}, book.ErrAuthorNotFound
	}

	r.s.books[b.ID] = b
	r.s.bookOrder = append(r.s.bookOrder, b.ID)
	return b, nil
}

func (r *BooksRepo) Update(ctx context.Context, id string, req book.UpdateRequest) (book.Book, error) {
	if err := ctx.Err(); err != nil {
		return book.Book{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.books[strings.ToLower(id)]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}

	if err := b.Apply(req, r.s.now()); err != nil {
		return book.Book{}, err
	}

	r.s.books[b.ID] = b
	return b, nil
}

func (r *BooksRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id = strings.ToLower(id)
	if _, ok := r.s.books[id]; !ok {
		return book.ErrNotFound
	}

	delete(r.s.books, id)
	r.s.bookOrder = removeID(r.s.bookOrder, id)
	return nil
}
