package catalog_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libris-app/libris/internal/catalog"
	"github.com/libris-app/libris/internal/platform/apperr"
	"github.com/libris-app/libris/internal/platform/dberr"
)

// fakeRepository is an in-memory Repository used to exercise the service
// without a database.
type fakeRepository struct {
	authors []*catalog.Author
	books   []*catalog.Book

	// createAuthorErr is returned (once) by the next CreateAuthor call.
	createAuthorErr error

	// lookupMisses forces that many GetAuthorByName calls to miss, letting
	// tests stage a lookup/insert race.
	lookupMisses int
}

func (repository *fakeRepository) CountBooks(_ context.Context) (int, error) {
	return len(repository.books), nil
}

func (repository *fakeRepository) CountAuthors(_ context.Context) (int, error) {
	return len(repository.authors), nil
}

func (repository *fakeRepository) ListBooks(_ context.Context, f catalog.Filter) ([]*catalog.Book, error) {
	matched := []*catalog.Book{}
	for _, book := range repository.books {
		if f.Title != "" && book.Title != f.Title {
			continue
		}
		if f.Author != "" && book.Author.Name != f.Author {
			continue
		}
		if f.Genre != "" && !hasGenre(book, f.Genre) {
			continue
		}
		matched = append(matched, book)
	}
	return matched, nil
}

func (repository *fakeRepository) ListAuthors(_ context.Context, name string) ([]*catalog.Author, error) {
	matched := []*catalog.Author{}
	for _, author := range repository.authors {
		if name != "" && author.Name != name {
			continue
		}
		counted := *author
		counted.BookCount = 0
		for _, book := range repository.books {
			if book.Author.ID == author.ID {
				counted.BookCount++
			}
		}
		matched = append(matched, &counted)
	}
	return matched, nil
}

func (repository *fakeRepository) GetAuthorByName(_ context.Context, name string) (*catalog.Author, error) {
	if repository.lookupMisses > 0 {
		repository.lookupMisses--
		return nil, dberr.ErrNotFound
	}
	for _, author := range repository.authors {
		if author.Name == name {
			return author, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (repository *fakeRepository) CreateAuthor(_ context.Context, a *catalog.Author) error {
	if repository.createAuthorErr != nil {
		err := repository.createAuthorErr
		repository.createAuthorErr = nil
		return err
	}
	repository.authors = append(repository.authors, a)
	return nil
}

func (repository *fakeRepository) UpdateAuthorBorn(_ context.Context, a *catalog.Author) error {
	for _, author := range repository.authors {
		if author.ID == a.ID {
			author.Born = a.Born
			return nil
		}
	}
	return dberr.ErrNotFound
}

func (repository *fakeRepository) CreateBook(_ context.Context, b *catalog.Book) error {
	repository.books = append(repository.books, b)
	return nil
}

func hasGenre(book *catalog.Book, genre string) bool {
	for _, g := range book.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

func newTestService() (*catalog.Service, *fakeRepository) {
	repo := &fakeRepository{}
	return catalog.NewService(repo, slog.Default()), repo
}

func addBook(t *testing.T, service *catalog.Service, title, author string, published *int, genres ...string) *catalog.Book {
	t.Helper()
	book, err := service.AddBook(context.Background(), catalog.AddBookInput{
		Title:      title,
		AuthorName: author,
		Published:  published,
		Genres:     genres,
	})
	require.NoError(t, err)
	return book
}

func year(y int) *int { return &y }

/*
TestService_AddBook covers book creation and the author find-or-create flow.
*/
func TestService_AddBook(t *testing.T) {
	t.Run("new_author_creates_author_and_book", func(t *testing.T) {
		service, repo := newTestService()

		book := addBook(t, service, "Refactoring", "Martin Fowler", year(1999), "refactoring")

		assert.Len(t, repo.authors, 1)
		assert.Len(t, repo.books, 1)
		assert.Equal(t, "Martin Fowler", book.Author.Name)
		assert.Nil(t, book.Author.Born)
		assert.Equal(t, "refactoring", book.Slug)
	})

	t.Run("existing_author_is_reused", func(t *testing.T) {
		service, repo := newTestService()

		first := addBook(t, service, "Refactoring", "Martin Fowler", year(1999))
		second := addBook(t, service, "Patterns of Enterprise Application Architecture", "Martin Fowler", year(2002))

		assert.Len(t, repo.authors, 1)
		assert.Len(t, repo.books, 2)
		assert.Equal(t, first.Author.ID, second.Author.ID)
	})

	t.Run("nil_genres_become_empty_list", func(t *testing.T) {
		service, _ := newTestService()

		book := addBook(t, service, "Refactoring", "Martin Fowler", nil)
		require.NotNil(t, book.Genres)
		assert.Empty(t, book.Genres)
	})

	t.Run("future_published_year_is_rejected", func(t *testing.T) {
		service, repo := newTestService()

		_, err := service.AddBook(context.Background(), catalog.AddBookInput{
			Title:      "From the Future",
			AuthorName: "Nobody Yet",
			Published:  year(9999),
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)

		// All-or-nothing: neither entity may exist after a failed mutation.
		assert.Empty(t, repo.authors)
		assert.Empty(t, repo.books)
	})

	t.Run("missing_title_is_rejected", func(t *testing.T) {
		service, _ := newTestService()

		_, err := service.AddBook(context.Background(), catalog.AddBookInput{
			AuthorName: "Martin Fowler",
		})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("lost_insert_race_falls_back_to_lookup", func(t *testing.T) {
		service, repo := newTestService()

		// A concurrent request persists this author between our lookup and
		// our insert: the first lookup misses, the insert conflicts, and the
		// retry lookup finds the winner's row.
		repo.authors = append(repo.authors, &catalog.Author{ID: "winner", Name: "Sandi Metz"})
		repo.lookupMisses = 1
		repo.createAuthorErr = dberr.Wrap(&pgconn.PgError{
			Code:    pgerrcode.UniqueViolation,
			Message: "duplicate key value violates unique constraint \"author_name_unique\"",
		}, "create_author")

		book, err := service.AddBook(context.Background(), catalog.AddBookInput{
			Title:      "Practical Object-Oriented Design in Ruby",
			AuthorName: "Sandi Metz",
		})
		require.NoError(t, err)
		assert.Equal(t, "winner", book.Author.ID)
		assert.Len(t, repo.authors, 1)
	})
}

/*
TestService_EditAuthor covers the born-year update and its not-found policy.
*/
func TestService_EditAuthor(t *testing.T) {
	t.Run("overwrites_existing_born_year", func(t *testing.T) {
		service, _ := newTestService()
		addBook(t, service, "Refactoring", "Martin Fowler", year(1999))

		author, err := service.EditAuthor(context.Background(), "Martin Fowler", year(1952))
		require.NoError(t, err)
		require.NotNil(t, author.Born)
		assert.Equal(t, 1952, *author.Born)

		author, err = service.EditAuthor(context.Background(), "Martin Fowler", year(1963))
		require.NoError(t, err)
		assert.Equal(t, 1963, *author.Born)
	})

	t.Run("unknown_author_is_not_found", func(t *testing.T) {
		service, _ := newTestService()

		_, err := service.EditAuthor(context.Background(), "Sandi Metz", year(1952))
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("missing_born_year_is_rejected", func(t *testing.T) {
		service, _ := newTestService()
		addBook(t, service, "Refactoring", "Martin Fowler", year(1999))

		_, err := service.EditAuthor(context.Background(), "Martin Fowler", nil)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

/*
TestService_Queries covers the read facade over a small seeded catalog.
*/
func TestService_Queries(t *testing.T) {
	seed := func(t *testing.T) (*catalog.Service, *fakeRepository) {
		service, repo := newTestService()
		addBook(t, service, "Clean Code", "Robert Martin", year(2008), "refactoring")
		addBook(t, service, "Agile Software Development", "Robert Martin", year(2002), "agile", "design")
		addBook(t, service, "Refactoring", "Martin Fowler", year(1999), "refactoring", "design")
		return service, repo
	}

	t.Run("counts", func(t *testing.T) {
		service, _ := seed(t)

		books, err := service.BookCount(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, books)

		authors, err := service.AuthorCount(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, authors)
	})

	t.Run("all_books_filters_conjunctively", func(t *testing.T) {
		service, _ := seed(t)

		books, err := service.AllBooks(context.Background(), "", "")
		require.NoError(t, err)
		assert.Len(t, books, 3)

		books, err = service.AllBooks(context.Background(), "Robert Martin", "")
		require.NoError(t, err)
		assert.Len(t, books, 2)

		books, err = service.AllBooks(context.Background(), "Robert Martin", "refactoring")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Clean Code", books[0].Title)
	})

	t.Run("find_books_matches_title_too", func(t *testing.T) {
		service, _ := seed(t)

		books, err := service.FindBooks(context.Background(), catalog.Filter{Title: "Refactoring"})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Martin Fowler", books[0].Author.Name)

		books, err = service.FindBooks(context.Background(), catalog.Filter{Title: "Refactoring", Genre: "agile"})
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	t.Run("all_authors_carries_derived_book_count", func(t *testing.T) {
		service, repo := seed(t)

		// An author with no books at all must still appear, with count 0.
		repo.authors = append(repo.authors, &catalog.Author{ID: "idle", Name: "Sandi Metz"})

		authors, err := service.AllAuthors(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, authors, 3)

		counts := map[string]int{}
		for _, author := range authors {
			counts[author.Name] = author.BookCount
		}
		assert.Equal(t, 2, counts["Robert Martin"])
		assert.Equal(t, 1, counts["Martin Fowler"])
		assert.Equal(t, 0, counts["Sandi Metz"])
	})

	t.Run("all_authors_filters_by_name", func(t *testing.T) {
		service, _ := seed(t)

		authors, err := service.AllAuthors(context.Background(), "Martin Fowler")
		require.NoError(t, err)
		require.Len(t, authors, 1)
		assert.Equal(t, "Martin Fowler", authors[0].Name)
	})
}
