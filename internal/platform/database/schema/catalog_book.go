package schema

// CatalogBookTable represents the 'catalog.book' table
type CatalogBookTable struct {
	Table     string
	ID        string
	Title     string
	Slug      string
	Published string
	AuthorID  string
	Genres    string
	CreatedAt string
	UpdatedAt string
}

// CatalogBook is the schema definition for catalog.book
var CatalogBook = CatalogBookTable{
	Table:     "catalog.book",
	ID:        "id",
	Title:     "title",
	Slug:      "slug",
	Published: "published",
	AuthorID:  "authorid",
	Genres:    "genres",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CatalogBookTable) Columns() []string {
	return []string{t.ID, t.Title, t.Slug, t.Published, t.AuthorID, t.Genres, t.CreatedAt, t.UpdatedAt}
}
