package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/libraryhub/internal/domain/author"
	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthorsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

const authorColumns = `id, name, birth_year, created_at, updated_at`

func scanAuthor(row pgx.Row) (author.Author, error) {
	var a author.Author
	err := row.Scan(&a.ID, &a.Name, &a.BirthYear, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *AuthorsRepo) List(ctx context.Context, filter author.ListFilter) ([]author.Author, error) {
	req := filter.Request.Clamp()

	query := `SELECT ` + authorColumns + ` FROM authors`

	var conds []string
	var args []any
	argsPosition := 1

	if filter.Name != nil && *filter.Name != "" {
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", argsPosition))
		args = append(args, likePattern(*filter.Name))
		argsPosition++
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)
	args = append(args, req.Limit, req.Offset())

	out := []author.Author{}

	err := r.prom.ObserveDB("authors.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			a, err := scanAuthor(rows)
			if err != nil {
				return err
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	if filter.IncludeBooks && len(out) > 0 {
		ids := make([]string, len(out))
		for i, a := range out {
			ids[i] = a.ID
		}

		byAuthor, err := r.booksOf(ctx, ids)
		if err != nil {
			return nil, err
		}

		for i := range out {
			out[i].Books = byAuthor[out[i].ID]
			if out[i].Books == nil {
				out[i].Books = []book.Book{}
			}
		}
	}

	return out, nil
}

// booksOf loads the books of every author in ids with one query.
func (r *AuthorsRepo) booksOf(ctx context.Context, ids []string) (map[string][]book.Book, error) {
	out := make(map[string][]book.Book, len(ids))

	err := r.prom.ObserveDB("authors.books_of", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+bookColumns+` FROM books
			 WHERE author_id = ANY($1)
			 ORDER BY created_at, id`,
			ids,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			b, err := scanBook(rows)
			if err != nil {
				return err
			}
			out[b.AuthorID] = append(out[b.AuthorID], b)
		}
		return rows.Err()
	})

	return out, err
}

func (r *AuthorsRepo) GetByID(ctx context.Context, id string, includeBooks bool) (author.Author, error) {
	id = strings.ToLower(id)

	var a author.Author
	err := r.prom.ObserveDB("authors.get_by_id", func() error {
		var err error
		a, err = scanAuthor(r.pool.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return author.Author{}, author.ErrNotFound
		}
		return author.Author{}, err
	}

	if includeBooks {
		byAuthor, err := r.booksOf(ctx, []string{a.ID})
		if err != nil {
			return author.Author{}, err
		}
		a.Books = byAuthor[a.ID]
		if a.Books == nil {
			a.Books = []book.Book{}
		}
	}

	return a, nil
}

func (r *AuthorsRepo) Create(ctx context.Context, req author.CreateRequest) (author.Author, error) {
	a, err := author.New(req, time.Now().UTC())
	if err != nil {
		return author.Author{}, err
	}

	err = r.prom.ObserveDB("authors.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO authors (id, name, birth_year, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			a.ID, a.Name, a.BirthYear, a.CreatedAt, a.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return author.Author{}, err
	}

	return a, nil
}

func (r *AuthorsRepo) Update(ctx context.Context, id string, req author.UpdateRequest) (author.Author, error) {
	id = strings.ToLower(id)

	var out author.Author

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var a author.Author
		err := r.prom.ObserveDB("authors.update.lock", func() error {
			var err error
			a, err = scanAuthor(tx.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id = $1 FOR UPDATE`, id))
			return err
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return author.ErrNotFound
			}
			return err
		}

		if err := a.Apply(req, time.Now().UTC()); err != nil {
			return err
		}

		err = r.prom.ObserveDB("authors.update", func() error {
			_, err := tx.Exec(ctx,
				`UPDATE authors SET name = $2, birth_year = $3, updated_at = $4 WHERE id = $1`,
				a.ID, a.Name, a.BirthYear, a.UpdatedAt,
			)
			return err
		})
		if err != nil {
			return err
		}

		out = a
		return nil
	})

	if err != nil {
		return author.Author{}, err
	}
	return out, nil
}

// Delete removes the author only while no book references it. The author row
// is locked first, so a concurrent book insert waiting on FOR SHARE either
// lands before the check or sees the author gone. The RESTRICT foreign key
// backs this up.
func (r *AuthorsRepo) Delete(ctx context.Context, id string) error {
	id = strings.ToLower(id)

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var locked string
		err := r.prom.ObserveDB("authors.delete.lock", func() error {
			return tx.QueryRow(ctx, `SELECT id FROM authors WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return author.ErrNotFound
			}
			return err
		}

		var hasBooks bool
		err = r.prom.ObserveDB("authors.delete.books_check", func() error {
			return tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE author_id = $1)`, id).Scan(&hasBooks)
		})
		if err != nil {
			return err
		}
		if hasBooks {
			return author.ErrHasBooks
		}

		return r.prom.ObserveDB("authors.delete", func() error {
			_, err := tx.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
			return err
		})
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return author.ErrHasBooks
	}
	return err
}
