// Package postgres implements the catalog repositories on pgx. Cross-entity
// checks run inside the transaction that performs the write, with row locks
// on the author involved.
package postgres

import (
	"context"
	"strings"

	"github.com/geocoder89/libraryhub/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewStore(pool *pgxpool.Pool, prom *observability.Prom) *Store {
	return &Store{pool: pool, prom: prom}
}

func (s *Store) Users() *UsersRepo {
	return &UsersRepo{pool: s.pool, prom: s.prom}
}

func (s *Store) Authors() *AuthorsRepo {
	return &AuthorsRepo{pool: s.pool, prom: s.prom}
}

func (s *Store) Books() *BooksRepo {
	return &BooksRepo{pool: s.pool, prom: s.prom}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// likePattern turns a user substring into an ILIKE pattern matching it
// literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
