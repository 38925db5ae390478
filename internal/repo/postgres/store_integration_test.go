package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/geocoder89/libraryhub/internal/db"
	"github.com/geocoder89/libraryhub/internal/domain/author"
	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/page"
	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/ids"
	"github.com/geocoder89/libraryhub/internal/repo/postgres"
)

func ptr[T any](v T) *T { return &v }

func setupStore(t *testing.T) *postgres.Store {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn, 10)
	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := pool.Exec(ctx, `TRUNCATE books, authors, users`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	return postgres.NewStore(pool, nil)
}

func TestUsers_DuplicateEmail(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if _, err := store.Users().Create(ctx, user.New("a@x.com", "hash", user.RoleUser)); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := store.Users().Create(ctx, user.New("a@x.com", "hash", user.RoleUser))
	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := store.Users().GetByEmail(ctx, "A@x.com"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("email lookup is case-sensitive, got %v", err)
	}
}

func TestAuthors_CatalogLifecycle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	poe, err := store.Authors().Create(ctx, author.CreateRequest{Name: "  Edgar Allan Poe ", BirthYear: 1809})
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	if poe.Name != "Edgar Allan Poe" {
		t.Fatalf("name not trimmed: %q", poe.Name)
	}

	ligeia, err := store.Books().Create(ctx, book.CreateRequest{Title: "Ligeia", Year: 1838, AuthorID: poe.ID})
	if err != nil {
		t.Fatalf("create book: %v", err)
	}

	got, err := store.Authors().GetByID(ctx, poe.ID, true)
	if err != nil {
		t.Fatalf("get author: %v", err)
	}
	if len(got.Books) != 1 || got.Books[0].ID != ligeia.ID {
		t.Fatalf("includeBooks: %+v", got.Books)
	}

	if err := store.Authors().Delete(ctx, poe.ID); !errors.Is(err, author.ErrHasBooks) {
		t.Fatalf("expected ErrHasBooks, got %v", err)
	}

	updated, err := store.Books().Update(ctx, ligeia.ID, book.UpdateRequest{Year: ptr(1839)})
	if err != nil {
		t.Fatalf("update book: %v", err)
	}
	if updated.AuthorID != poe.ID || updated.Title != "Ligeia" || updated.Year != 1839 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := store.Books().Delete(ctx, ligeia.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	if err := store.Books().Delete(ctx, ligeia.ID); !errors.Is(err, book.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if err := store.Authors().Delete(ctx, poe.ID); err != nil {
		t.Fatalf("delete author: %v", err)
	}
	if _, err := store.Authors().GetByID(ctx, poe.ID, false); !errors.Is(err, author.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBooks_CreateWithUnknownAuthor(t *testing.T) {
	store := setupStore(t)

	_, err := store.Books().Create(context.Background(), book.CreateRequest{Title: "Orphan", Year: 2000, AuthorID: ids.New()})
	if !errors.Is(err, book.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}
}

func TestAuthors_ListPaginatesAndEscapesPatterns(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, name := range []string{"Ann 1", "Ann 2", "Ann 3", "Bob_%"} {
		if _, err := store.Authors().Create(ctx, author.CreateRequest{Name: name, BirthYear: 1900}); err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
	}

	second, err := store.Authors().List(ctx, author.ListFilter{Name: ptr("ann"), Request: page.Request{Page: 2, Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(second) != 1 || second[0].Name != "Ann 3" {
		t.Fatalf("page 2: %+v", second)
	}

	literal, err := store.Authors().List(ctx, author.ListFilter{Name: ptr("_%"), Request: page.Request{Page: 1, Limit: 10}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(literal) != 1 || literal[0].Name != "Bob_%" {
		t.Fatalf("wildcards must match literally: %+v", literal)
	}
}

func TestDeleteAuthorRacesBookCreation(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		a, err := store.Authors().Create(ctx, author.CreateRequest{Name: "Racer", BirthYear: 1950})
		if err != nil {
			t.Fatalf("create author: %v", err)
		}

		var (
			wg       sync.WaitGroup
			delErr   error
			createEr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			delErr = store.Authors().Delete(ctx, a.ID)
		}()
		go func() {
			defer wg.Done()
			_, createEr = store.Books().Create(ctx, book.CreateRequest{Title: "Race", Year: 2000, AuthorID: a.ID})
		}()
		wg.Wait()

		switch {
		case delErr == nil && errors.Is(createEr, book.ErrAuthorNotFound):
		case errors.Is(delErr, author.ErrHasBooks) && createEr == nil:
		default:
			t.Fatalf("inconsistent outcome: delete=%v create=%v", delErr, createEr)
		}
	}
}
