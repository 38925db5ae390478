package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BooksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

const bookColumns = `id, title, year, author_id, created_at, updated_at`

func scanBook(row pgx.Row) (book.Book, error) {
	var b book.Book
	err := row.Scan(&b.ID, &b.Title, &b.Year, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *BooksRepo) List(ctx context.Context, filter book.ListFilter) ([]book.Book, error) {
	req := filter.Request.Clamp()

	query := `SELECT ` + bookColumns + ` FROM books`

	var conds []string
	var args []any
	argsPosition := 1

	if filter.Query != nil && *filter.Query != "" {
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", argsPosition))
		args = append(args, likePattern(*filter.Query))
		argsPosition++
	}

	if filter.AuthorID != nil {
		conds = append(conds, fmt.Sprintf("author_id = $%d", argsPosition))
		args = append(args, strings.ToLower(*filter.AuthorID))
		argsPosition++
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)
	args = append(args, req.Limit, req.Offset())

	out := []book.Book{}

	err := r.prom.ObserveDB("books.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			b, err := scanBook(rows)
			if err != nil {
				return err
			}
			out = append(out, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *BooksRepo) GetByID(ctx context.Context, id string) (book.Book, error) {
	var b book.Book

	err := r.prom.ObserveDB("books.get_by_id", func() error {
		var err error
		b, err = scanBook(r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, strings.ToLower(id)))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}
	return b, nil
}

// Create inserts the book while holding a share lock on its author, so the
// author cannot be deleted between the existence check and the insert.
func (r *BooksRepo) Create(ctx context.Context, req book.CreateRequest) (book.Book, error) {
	b, err := book.New(req, time.Now().UTC())
	if err != nil {
		return book.Book{}, err
	}

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var locked string
		err := r.prom.ObserveDB("books.create.author_lock", func() error {
			return tx.QueryRow(ctx, `SELECT id FROM authors WHERE id = $1 FOR SHARE`, b.AuthorID).Scan(&locked)
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return book.ErrAuthorNotFound
			}
			return err
		}

		return r.prom.ObserveDB("books.create", func() error {
			_, err := tx.Exec(ctx,
				`INSERT INTO books (id, title, year, author_id, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				b.ID, b.Title, b.Year, b.AuthorID, b.CreatedAt, b.UpdatedAt,
			)
			return err
		})
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return book.Book{}, book.ErrAuthorNotFound
		}
		return book.Book{}, err
	}

	return b, nil
}

// Update changes title and year only. author_id is never written here.
func (r *BooksRepo) Update(ctx context.Context, id string, req book.UpdateRequest) (book.Book, error) {
	id = strings.ToLower(id)

	var out book.Book

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var b book.Book
		err := r.prom.ObserveDB("books.update.lock", func() error {
			var err error
			b, err = scanBook(tx.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1 FOR UPDATE`, id))
			return err
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return book.ErrNotFound
			}
			return err
		}

		if err := b.Apply(req, time.Now().UTC()); err != nil {
			return err
		}

		err = r.prom.ObserveDB("books.update", func() error {
			_, err := tx.Exec(ctx,
				`UPDATE books SET title = $2, year = $3, updated_at = $4 WHERE id = $1`,
				b.ID, b.Title, b.Year, b.UpdatedAt,
			)
			return err
		})
		if err != nil {
			return err
		}

		out = b
		return nil
	})

	if err != nil {
		return book.Book{}, err
	}
	return out, nil
}

func (r *BooksRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.prom.ObserveDB("books.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, strings.ToLower(id))
		return err
	})
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return book.ErrNotFound
	}
	return nil
}
