/*
Package catalog implements the book and author domain of Libris.

It owns the consistency rules between the two entities: every book must
reference an existing author at the moment it is persisted (creating the
author on the fly when needed), and an author's book count is derived at
query time rather than stored.

# Architecture

Entities defined here have no transport dependencies. The [Service]
orchestrates validation and the find-or-create flow; the [Repository]
interface abstracts the persistence gateway.
*/
package catalog

import "time"

// Author represents the writer of one or more books in the catalog.
//
// BookCount is never stored; it is computed on read as the number of books
// referencing this author.
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Born      *int      `json:"born"`
	BookCount int       `json:"book_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Book represents a single catalogued publication.
//
// Author is always resolved (joined) when a book leaves the service layer,
// so callers never need a second round trip.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Published *int      `json:"published"`
	Author    *Author   `json:"author"`
	Genres    []string  `json:"genres"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter holds the conjunctive search criteria for book listings.
//
// Zero-valued fields are not constraints. Author filters by the *name* of
// the related author, Genre by membership in a book's genre list.
type Filter struct {
	Title  string
	Author string
	Genre  string
}

// Global field names for validation
const (
	FieldTitle      = "title"
	FieldAuthorName = "author_name"
	FieldPublished  = "published"
	FieldName       = "name"
	FieldSetBornTo  = "set_born_to"
)
