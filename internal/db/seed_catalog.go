package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geocoder89/libraryhub/internal/domain/author"
	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/page"
)

type AuthorStore interface {
	List(ctx context.Context, filter author.ListFilter) ([]author.Author, error)
	Create(ctx context.Context, req author.CreateRequest) (author.Author, error)
}

type BookStore interface {
	Create(ctx context.Context, req book.CreateRequest) (book.Book, error)
}

type SeedBook struct {
	Title string
	Year  int
}

type SeedAuthor struct {
	Name      string
	BirthYear int
	Books     []SeedBook
}

var DemoCatalog = []SeedAuthor{
	{Name: "Victor Hugo", BirthYear: 1802, Books: []SeedBook{{"Les Misérables", 1862}, {"Notre-Dame de Paris", 1831}}},
	{Name: "George Orwell", BirthYear: 1903, Books: []SeedBook{{"1984", 1949}, {"Animal Farm", 1945}}},
	{Name: "J.K. Rowling", BirthYear: 1965, Books: []SeedBook{{"Harry Potter and the Philosopher's Stone", 1997}, {"Harry Potter and the Chamber of Secrets", 1998}}},
	{Name: "Agatha Christie", BirthYear: 1890, Books: []SeedBook{{"Murder on the Orient Express", 1934}}},
	{Name: "Stephen King", BirthYear: 1947, Books: []SeedBook{{"It", 1986}, {"The Shining", 1977}}},
	{Name: "Haruki Murakami", BirthYear: 1949, Books: []SeedBook{{"Kafka on the Shore", 2002}}},
	{Name: "Jane Austen", BirthYear: 1775, Books: []SeedBook{{"Pride and Prejudice", 1813}}},
	{Name: "Albert Camus", BirthYear: 1913, Books: []SeedBook{{"The Stranger", 1942}}},
	{Name: "Gabriel García Márquez", BirthYear: 1927, Books: []SeedBook{{"One Hundred Years of Solitude", 1967}}},
	{Name: "J.R.R. Tolkien", BirthYear: 1892, Books: []SeedBook{{"The Hobbit", 1937}, {"The Lord of the Rings", 1954}}},
	{Name: "Franz Kafka", BirthYear: 1883, Books: []SeedBook{{"The Metamorphosis", 1915}}},
	{Name: "Ray Bradbury", BirthYear: 1920, Books: []SeedBook{{"Fahrenheit 451", 1953}, {"The Martian Chronicles", 1950}}},
	{Name: "Neil Gaiman", BirthYear: 1960, Books: []SeedBook{{"American Gods", 2001}, {"Neverwhere", 1996}}},
	{Name: "Toni Morrison", BirthYear: 1931, Books: []SeedBook{{"Beloved", 1987}}},
	{Name: "Homer", BirthYear: 0, Books: []SeedBook{{"The Iliad", -750}, {"The Odyssey", -725}}},
}

type SeedResult struct {
	AuthorsCreated int
	AuthorsSkipped int
	BooksCreated   int
}

// SeedCatalog loads catalog into the stores. Authors already present under
// the same name (case-insensitive) are skipped together with their books, so
// running it twice is harmless.
func SeedCatalog(ctx context.Context, authors AuthorStore, books BookStore, catalog []SeedAuthor) (SeedResult, error) {
	var res SeedResult

	for _, sa := range catalog {
		exists, err := authorExists(ctx, authors, sa.Name)
		if err != nil {
			return res, err
		}
		if exists {
			res.AuthorsSkipped++
			continue
		}

		a, err := authors.Create(ctx, author.CreateRequest{Name: sa.Name, BirthYear: sa.BirthYear})
		if err != nil {
			return res, fmt.Errorf("seed author %q: %w", sa.Name, err)
		}
		res.AuthorsCreated++

		for _, sb := range sa.Books {
			if _, err := books.Create(ctx, book.CreateRequest{Title: sb.Title, Year: sb.Year, AuthorID: a.ID}); err != nil {
				return res, fmt.Errorf("seed book %q: %w", sb.Title, err)
			}
			res.BooksCreated++
		}
	}

	slog.InfoContext(ctx, "catalog seeded",
		"authors_created", res.AuthorsCreated,
		"authors_skipped", res.AuthorsSkipped,
		"books_created", res.BooksCreated,
	)
	return res, nil
}

func authorExists(ctx context.Context, authors AuthorStore, name string) (bool, error) {
	req := page.Request{Page: 1, Limit: page.MaxLimit}

	for {
		found, err := authors.List(ctx, author.ListFilter{Name: &name, Request: req})
		if err != nil {
			return false, err
		}
		for _, a := range found {
			if strings.EqualFold(a.Name, name) {
				return true, nil
			}
		}
		if len(found) < req.Limit {
			return false, nil
		}
		req.Page++
	}
}
