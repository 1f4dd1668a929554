package catalog

import "context"

// Repository is the persistence gateway for the catalog.
//
// Implementations map storage errors through dberr so the service layer
// only ever sees [apperr.AppError] values: a missing row is NOT_FOUND and a
// constraint violation is PERSISTENCE_ERROR with the store's message intact.
type Repository interface {
	CountBooks(context context.Context) (int, error)
	CountAuthors(context context.Context) (int, error)

	// ListBooks returns books matching the conjunctive filter, each with its
	// author joined. An empty result is not an error.
	ListBooks(context context.Context, f Filter) ([]*Book, error)

	// ListAuthors returns authors annotated with their derived book count.
	// A non-empty name restricts the listing to that exact author name.
	ListAuthors(context context.Context, name string) ([]*Author, error)

	// GetAuthorByName performs a case-sensitive exact-name lookup.
	GetAuthorByName(context context.Context, name string) (*Author, error)

	CreateAuthor(context context.Context, a *Author) error

	// UpdateAuthorBorn persists the author's born year. Earlier values are
	// overwritten, never accumulated.
	UpdateAuthorBorn(context context.Context, a *Author) error

	CreateBook(context context.Context, b *Book) error
}
