package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/geocoder89/libraryhub/internal/domain/author"
	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/page"
	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/repo/memory"
)

func ptr[T any](v T) *T { return &v }

func mustAuthor(t *testing.T, repo *memory.AuthorsRepo, name string, year int) author.Author {
	t.Helper()
	a, err := repo.Create(context.Background(), author.CreateRequest{Name: name, BirthYear: year})
	if err != nil {
		t.Fatalf("create author %q: %v", name, err)
	}
	return a
}

func mustBook(t *testing.T, repo *memory.BooksRepo, title string, year int, authorID string) book.Book {
	t.Helper()
	b, err := repo.Create(context.Background(), book.CreateRequest{Title: title, Year: year, AuthorID: authorID})
	if err != nil {
		t.Fatalf("create book %q: %v", title, err)
	}
	return b
}

func TestUsersRepo_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()

	u := user.New("a@x.com", "hash", user.RoleUser)
	if _, err := users.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := users.Create(ctx, user.New("a@x.com", "hash2", user.RoleUser)); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("got %v, want ErrEmailTaken", err)
	}

	// matching is case-sensitive
	if _, err := users.GetByEmail(ctx, "A@x.com"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	got, err := users.GetByEmail(ctx, "a@x.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("get: %v %+v", err, got)
	}
}

func TestAuthorsRepo_ListPaginationAndFilter(t *testing.T) {
	ctx := context.Background()
	authors := memory.NewStore().Authors()

	var created []author.Author
	for i := 1; i <= 12; i++ {
		created = append(created, mustAuthor(t, authors, fmt.Sprintf("Author %02d", i), 1900+i))
	}

	got, err := authors.List(ctx, author.ListFilter{Request: page.Request{Page: 2, Limit: 5}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d authors, want 5", len(got))
	}
	for i, a := range got {
		if a.ID != created[5+i].ID {
			t.Fatalf("item %d = %q, want %q", i, a.Name, created[5+i].Name)
		}
	}

	got, err = authors.List(ctx, author.ListFilter{Request: page.Request{Page: 4, Limit: 5}})
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("page beyond end: err=%v got=%#v", err, got)
	}

	got, err = authors.List(ctx, author.ListFilter{Name: ptr("AUTHOR 1"), Request: page.Request{Page: 1, Limit: 10}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 { // 10, 11, 12
		t.Fatalf("case-insensitive filter returned %d authors", len(got))
	}
}

func TestAuthorsRepo_IncludeBooks(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	authors, books := store.Authors(), store.Books()

	poe := mustAuthor(t, authors, "Poe", 1809)
	hugo := mustAuthor(t, authors, "Hugo", 1802)
	mustBook(t, books, "Ligeia", 1838, poe.ID)
	mustBook(t, books, "The Raven", 1845, poe.ID)

	list, err := authors.List(ctx, author.ListFilter{IncludeBooks: true, Request: page.Request{Page: 1, Limit: 10}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list[0].Books) != 2 || list[0].Books[0].Title != "Ligeia" {
		t.Fatalf("poe books = %+v", list[0].Books)
	}
	if list[1].Books == nil || len(list[1].Books) != 0 {
		t.Fatalf("hugo should carry an empty, non-nil book list: %#v", list[1].Books)
	}

	plain, err := authors.GetByID(ctx, hugo.ID, false)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if plain.Books != nil {
		t.Fatalf("books must not be attached unless requested")
	}
}

func TestAuthorsRepo_DeleteRespectsBooks(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	authors, books := store.Authors(), store.Books()

	poe := mustAuthor(t, authors, "Poe", 1809)
	ligeia := mustBook(t, books, "Ligeia", 1838, poe.ID)

	if err := authors.Delete(ctx, poe.ID); !errors.Is(err, author.ErrHasBooks) {
		t.Fatalf("got %v, want ErrHasBooks", err)
	}

	if _, err := authors.GetByID(ctx, poe.ID, false); err != nil {
		t.Fatalf("author should survive failed delete: %v", err)
	}
	if _, err := books.GetByID(ctx, ligeia.ID); err != nil {
		t.Fatalf("book should survive failed delete: %v", err)
	}

	if err := books.Delete(ctx, ligeia.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	if err := authors.Delete(ctx, poe.ID); err != nil {
		t.Fatalf("delete author: %v", err)
	}
	if _, err := authors.GetByID(ctx, poe.ID, false); !errors.Is(err, author.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := authors.Delete(ctx, poe.ID); !errors.Is(err, author.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestBooksRepo_CreateRequiresExistingAuthor(t *testing.T) {
	books := memory.NewStore().Books()

	_, err := books.Create(context.Background(), book.CreateRequest{Title: "Orphan", Year: 1900, AuthorID: "507f1f77bcf86cd799439011"})
	if !errors.Is(err, book.ErrAuthorNotFound) {
		t.Fatalf("got %v, want ErrAuthorNotFound", err)
	}
}

func TestBooksRepo_UpdateNeverMovesBook(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	authors, books := store.Authors(), store.Books()

	poe := mustAuthor(t, authors, "Poe", 1809)
	b := mustBook(t, books, "Ligeia", 1838, poe.ID)

	updated, err := books.Update(ctx, b.ID, book.UpdateRequest{Year: ptr(1839)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AuthorID != poe.ID || updated.Title != "Ligeia" || updated.Year != 1839 {
		t.Fatalf("unexpected book: %+v", updated)
	}

	if _, err := books.Update(ctx, "507f1f77bcf86cd799439011", book.UpdateRequest{}); !errors.Is(err, book.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestBooksRepo_ListFilters(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	authors, books := store.Authors(), store.Books()

	poe := mustAuthor(t, authors, "Poe", 1809)
	hugo := mustAuthor(t, authors, "Hugo", 1802)
	mustBook(t, books, "Ligeia", 1838, poe.ID)
	mustBook(t, books, "The Raven", 1845, poe.ID)
	mustBook(t, books, "Les Misérables", 1862, hugo.ID)

	got, err := books.List(ctx, book.ListFilter{Query: ptr("the"), Request: page.Request{Page: 1, Limit: 10}})
	if err != nil || len(got) != 1 || got[0].Title != "The Raven" {
		t.Fatalf("title filter: %v %+v", err, got)
	}

	got, err = books.List(ctx, book.ListFilter{AuthorID: ptr(hugo.ID), Request: page.Request{Page: 1, Limit: 10}})
	if err != nil || len(got) != 1 || got[0].AuthorID != hugo.ID {
		t.Fatalf("author filter: %v %+v", err, got)
	}
}

// Deleting an author while books are being created for it must never leave a
// book pointing at a missing author.
func TestDeleteAuthorRacesBookCreation(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 50; round++ {
		store := memory.NewStore()
		authors, books := store.Authors(), store.Books()
		a := mustAuthor(t, authors, "Racer", 1900)

		var wg sync.WaitGroup
		wg.Add(2)

		var created *book.Book
		go func() {
			defer wg.Done()
			b, err := books.Create(ctx, book.CreateRequest{Title: "Late", Year: 1950, AuthorID: a.ID})
			if err == nil {
				created = &b
			}
		}()

		var deleteErr error
		go func() {
			defer wg.Done()
			deleteErr = authors.Delete(ctx, a.ID)
		}()

		wg.Wait()

		if created != nil && deleteErr == nil {
			t.Fatalf("round %d: book %s created and its author deleted", round, created.ID)
		}
	}
}
