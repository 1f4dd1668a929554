package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/libris-app/libris/internal/platform/dberr"
	"github.com/libris-app/libris/internal/platform/validate"
	"github.com/libris-app/libris/pkg/slug"
	"github.com/libris-app/libris/pkg/uuidv7"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// # Mutations

// AddBookInput holds the caller-supplied fields for a new book.
type AddBookInput struct {
	Title      string
	AuthorName string
	Published  *int
	Genres     []string
}

// AddBook validates the input, resolves (or creates) the author, and
// persists a new book referencing them.
//
// The returned book always carries the resolved author.
func (service *Service) AddBook(context context.Context, input AddBookInput) (*Book, error) {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MaxLen(FieldTitle, input.Title, 500).
		Required(FieldAuthorName, input.AuthorName).
		MaxLen(FieldAuthorName, input.AuthorName, 200).
		YearNotFuture(FieldPublished, input.Published)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	author, err := service.findOrCreateAuthor(context, input.AuthorName)
	if err != nil {
		return nil, err
	}

	genres := input.Genres
	if genres == nil {
		genres = []string{}
	}

	book := &Book{
		ID:        uuidv7.New(),
		Title:     input.Title,
		Slug:      slug.From(input.Title),
		Published: input.Published,
		Author:    author,
		Genres:    genres,
	}

	if err := service.repo.CreateBook(context, book); err != nil {
		return nil, err
	}

	service.logger.Info("book_added",
		slog.String("book_id", book.ID),
		slog.String("author_id", author.ID),
	)
	return book, nil
}

// EditAuthor sets the born year of an existing author.
//
// A missing author is a request-level NOT_FOUND failure, never a silent
// null result.
func (service *Service) EditAuthor(context context.Context, name string, setBornTo *int) (*Author, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, name).
		Custom(FieldSetBornTo, setBornTo == nil, "This field is required").
		YearNotFuture(FieldSetBornTo, setBornTo)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	author, err := service.repo.GetAuthorByName(context, name)
	if err != nil {
		return nil, err
	}

	author.Born = setBornTo
	if err := service.repo.UpdateAuthorBorn(context, author); err != nil {
		return nil, err
	}

	service.logger.Info("author_edited",
		slog.String("author_id", author.ID),
		slog.Int("born", *setBornTo),
	)
	return author, nil
}

// findOrCreateAuthor resolves an author by exact name, creating one with
// only the name set when absent.
//
// A concurrent creator can win the insert race; the unique constraint on
// the name column turns our insert into a conflict, which is mapped back
// to a successful lookup of the winner's row.
func (service *Service) findOrCreateAuthor(context context.Context, name string) (*Author, error) {
	author, err := service.repo.GetAuthorByName(context, name)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return nil, err
	}

	author = &Author{
		ID:   uuidv7.New(),
		Name: name,
	}

	createErr := service.repo.CreateAuthor(context, author)
	if createErr == nil {
		service.logger.Info("author_created", slog.String("name", name))
		return author, nil
	}

	if dberr.IsUniqueViolation(createErr) {
		// Lost the race: another request persisted this author first.
		return service.repo.GetAuthorByName(context, name)
	}

	return nil, createErr
}

// # Query Facade

func (service *Service) BookCount(context context.Context) (int, error) {
	return service.repo.CountBooks(context)
}

func (service *Service) AuthorCount(context context.Context) (int, error) {
	return service.repo.CountAuthors(context)
}

// AllBooks lists books, optionally narrowed by author name and genre.
func (service *Service) AllBooks(context context.Context, authorName, genre string) ([]*Book, error) {
	return service.repo.ListBooks(context, Filter{Author: authorName, Genre: genre})
}

// AllAuthors lists authors with their derived book counts, optionally
// narrowed to an exact author name.
func (service *Service) AllAuthors(context context.Context, name string) ([]*Author, error) {
	return service.repo.ListAuthors(context, name)
}

// FindBooks applies the full conjunctive filter (title, author name, genre).
func (service *Service) FindBooks(context context.Context, filter Filter) ([]*Book, error) {
	return service.repo.ListBooks(context, filter)
}
