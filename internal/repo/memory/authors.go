package memory

import (
	"context"
	"strings"

	"github.com/geocoder89/libraryhub/internal/domain/author"
	"github.com/geocoder89/libraryhub/internal/domain/page"
)

type AuthorsRepo struct {
	s *Store
}

func (r *AuthorsRepo) List(ctx context.Context, filter author.ListFilter) ([]author.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var needle string
	if filter.Name != nil {
		needle = strings.ToLower(*filter.Name)
	}

	matched := make([]author.Author, 0, len(r.s.authorOrder))
	for _, id := range r.s.authorOrder {
		a := r.s.authors[id]
		if needle != "" && !strings.Contains(strings.ToLower(a.Name), needle) {
			continue
		}
		matched = append(matched, a)
	}

	out := page.Slice(matched, filter.Request.Clamp())

	if filter.IncludeBooks {
		for i := range out {
			out[i].Books = r.s.booksOfLocked(out[i].ID)
		}
	}

	return out, nil
}

func (r *AuthorsRepo) GetByID(ctx context.Context, id string, includeBooks bool) (author.Author, error) {
	if err := ctx.Err(); err != nil {
		return author.Author{}, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.authors[strings.ToLower(id)]
	if !ok {
		return author.Author{}, author.ErrNotFound
	}

	if includeBooks {
		a.Books = r.s.booksOfLocked(a.ID)
	}
	return a, nil
}

func (r *AuthorsRepo) Create(ctx context.Context, req author.CreateRequest) (author.Author, error) {
	if err := ctx.Err(); err != nil {
		return author.Author{}, err
	}

	a, err := author.New(req, r.s.now())
	if err != nil {
		return author.Author{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.authors[a.ID] = a
	r.s.authorOrder = append(r.s.authorOrder, a.ID)
	return a, nil
}

func (r *AuthorsRepo) Update(ctx context.Context, id string, req author.UpdateRequest) (author.Author, error) {
	if err := ctx.Err(); err != nil {
		return author.Author{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.authors[strings.ToLower(id)]
	if !ok {
		return author.Author{}, author.ErrNotFound
	}

	if err := a.Apply(req, r.s.now()); err != nil {
		return author.Author{}, err
	}

	r.s.authors[a.ID] = a
	return a, nil
}

// Delete removes an author only while no book references it. The check and
// the removal share one critical section with book creation.
func (r *AuthorsRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id = strings.ToLower(id)
	if _, ok := r.s.authors[id]; !ok {
		return author.ErrNotFound
	}

	for _, b := range r.s.books {
		if b.AuthorID == id {
			return author.ErrHasBooks
		}
	}

	delete(r.s.authors, id)
	r.s.authorOrder = removeID(r.s.authorOrder, id)
	return nil
}
