package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/libris-app/libris/internal/platform/database/schema"
	"github.com/libris-app/libris/internal/platform/dberr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) CountBooks(context context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, schema.CatalogBook.Table)

	var total int
	err := repository.db.QueryRow(context, query).Scan(&total)
	return total, dberr.Wrap(err, "count_books")
}

func (repository *PostgresRepository) CountAuthors(context context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, schema.CatalogAuthor.Table)

	var total int
	err := repository.db.QueryRow(context, query).Scan(&total)
	return total, dberr.Wrap(err, "count_authors")
}

func (repository *PostgresRepository) ListBooks(context context.Context, f Filter) ([]*Book, error) {
	query := fmt.Sprintf(`
		SELECT b.%s, b.%s, b.%s, b.%s, b.%s, b.%s, b.%s,
		       a.%s, a.%s, a.%s, a.%s, a.%s
		FROM %s b
		JOIN %s a ON a.%s = b.%s
	`,
		schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.Slug,
		schema.CatalogBook.Published, schema.CatalogBook.Genres,
		schema.CatalogBook.CreatedAt, schema.CatalogBook.UpdatedAt,
		schema.CatalogAuthor.ID, schema.CatalogAuthor.Name, schema.CatalogAuthor.Born,
		schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
		schema.CatalogBook.Table,
		schema.CatalogAuthor.Table, schema.CatalogAuthor.ID, schema.CatalogBook.AuthorID,
	)

	// Conjunctive filter: absent criteria add no predicate.
	args := []any{}
	predicates := []string{}

	if f.Title != "" {
		args = append(args, f.Title)
		predicates = append(predicates, fmt.Sprintf("b.%s = $%d", schema.CatalogBook.Title, len(args)))
	}
	if f.Author != "" {
		args = append(args, f.Author)
		predicates = append(predicates, fmt.Sprintf("a.%s = $%d", schema.CatalogAuthor.Name, len(args)))
	}
	if f.Genre != "" {
		args = append(args, f.Genre)
		predicates = append(predicates, fmt.Sprintf("$%d = ANY(b.%s)", len(args), schema.CatalogBook.Genres))
	}

	if len(predicates) > 0 {
		query += " WHERE " + strings.Join(predicates, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY b.%s ASC", schema.CatalogBook.ID)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		b := &Book{Author: &Author{}}
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Slug, &b.Published, &b.Genres, &b.CreatedAt, &b.UpdatedAt,
			&b.Author.ID, &b.Author.Name, &b.Author.Born, &b.Author.CreatedAt, &b.Author.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "scan_book")
		}
		books = append(books, b)
	}

	return books, dberr.Wrap(rows.Err(), "list_books")
}

func (repository *PostgresRepository) ListAuthors(context context.Context, name string) ([]*Author, error) {
	// Derived book count: join on read, never stored.
	query := fmt.Sprintf(`
		SELECT a.%s, a.%s, a.%s, a.%s, a.%s, count(b.%s)
		FROM %s a
		LEFT JOIN %s b ON b.%s = a.%s
	`,
		schema.CatalogAuthor.ID, schema.CatalogAuthor.Name, schema.CatalogAuthor.Born,
		schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
		schema.CatalogBook.ID,
		schema.CatalogAuthor.Table,
		schema.CatalogBook.Table, schema.CatalogBook.AuthorID, schema.CatalogAuthor.ID,
	)

	args := []any{}
	if name != "" {
		query += fmt.Sprintf(" WHERE a.%s = $1", schema.CatalogAuthor.Name)
		args = append(args, name)
	}

	query += fmt.Sprintf(`
		GROUP BY a.%s, a.%s, a.%s, a.%s, a.%s
		ORDER BY a.%s ASC`,
		schema.CatalogAuthor.ID, schema.CatalogAuthor.Name, schema.CatalogAuthor.Born,
		schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
		schema.CatalogAuthor.ID,
	)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_authors")
	}
	defer rows.Close()

	authors := []*Author{}
	for rows.Next() {
		a := &Author{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Born, &a.CreatedAt, &a.UpdatedAt, &a.BookCount); err != nil {
			return nil, dberr.Wrap(err, "scan_author")
		}
		authors = append(authors, a)
	}

	return authors, dberr.Wrap(rows.Err(), "list_authors")
}

func (repository *PostgresRepository) GetAuthorByName(context context.Context, name string) (*Author, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.CatalogAuthor.ID, schema.CatalogAuthor.Name, schema.CatalogAuthor.Born,
		schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
		schema.CatalogAuthor.Table, schema.CatalogAuthor.Name,
	)
	a := &Author{}

	err := repository.db.QueryRow(context, query, name).Scan(
		&a.ID, &a.Name, &a.Born, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_author_by_name")
	}

	return a, nil
}

func (repository *PostgresRepository) CreateAuthor(context context.Context, a *Author) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.CatalogAuthor.Table, schema.CatalogAuthor.ID, schema.CatalogAuthor.Name,
		schema.CatalogAuthor.Born, schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
		schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, a.ID, a.Name, a.Born).Scan(&a.CreatedAt, &a.UpdatedAt)
	return dberr.Wrap(err, "create_author")
}

func (repository *PostgresRepository) UpdateAuthorBorn(context context.Context, a *Author) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CatalogAuthor.Table, schema.CatalogAuthor.Born, schema.CatalogAuthor.UpdatedAt,
		schema.CatalogAuthor.ID, schema.CatalogAuthor.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, a.ID, a.Born).Scan(&a.UpdatedAt)
	return dberr.Wrap(err, "update_author_born")
}

func (repository *PostgresRepository) CreateBook(context context.Context, b *Book) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.CatalogBook.Table, schema.CatalogBook.ID, schema.CatalogBook.Title,
		schema.CatalogBook.Slug, schema.CatalogBook.Published, schema.CatalogBook.AuthorID,
		schema.CatalogBook.Genres, schema.CatalogBook.CreatedAt, schema.CatalogBook.UpdatedAt,
		schema.CatalogBook.CreatedAt, schema.CatalogBook.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		b.ID, b.Title, b.Slug, b.Published, b.Author.ID, b.Genres,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	return dberr.Wrap(err, "create_book")
}
