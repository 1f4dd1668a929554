package resolver_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libris-app/libris/internal/catalog"
	"github.com/libris-app/libris/internal/platform/apperr"
	"github.com/libris-app/libris/internal/platform/ctxutil"
	"github.com/libris-app/libris/internal/platform/dberr"
	"github.com/libris-app/libris/internal/platform/sec"
	"github.com/libris-app/libris/internal/resolver"
	"github.com/libris-app/libris/internal/users/auth"
)

// # Fakes

type fakeCatalogRepository struct {
	authors []*catalog.Author
	books   []*catalog.Book
}

func (repository *fakeCatalogRepository) CountBooks(_ context.Context) (int, error) {
	return len(repository.books), nil
}

func (repository *fakeCatalogRepository) CountAuthors(_ context.Context) (int, error) {
	return len(repository.authors), nil
}

func (repository *fakeCatalogRepository) ListBooks(_ context.Context, f catalog.Filter) ([]*catalog.Book, error) {
	matched := []*catalog.Book{}
	for _, book := range repository.books {
		if f.Title != "" && book.Title != f.Title {
			continue
		}
		if f.Author != "" && book.Author.Name != f.Author {
			continue
		}
		if f.Genre != "" && !contains(book.Genres, f.Genre) {
			continue
		}
		matched = append(matched, book)
	}
	return matched, nil
}

func (repository *fakeCatalogRepository) ListAuthors(_ context.Context, name string) ([]*catalog.Author, error) {
	matched := []*catalog.Author{}
	for _, author := range repository.authors {
		if name != "" && author.Name != name {
			continue
		}
		matched = append(matched, author)
	}
	return matched, nil
}

func (repository *fakeCatalogRepository) GetAuthorByName(_ context.Context, name string) (*catalog.Author, error) {
	for _, author := range repository.authors {
		if author.Name == name {
			return author, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (repository *fakeCatalogRepository) CreateAuthor(_ context.Context, a *catalog.Author) error {
	repository.authors = append(repository.authors, a)
	return nil
}

func (repository *fakeCatalogRepository) UpdateAuthorBorn(_ context.Context, a *catalog.Author) error {
	return nil
}

func (repository *fakeCatalogRepository) CreateBook(_ context.Context, b *catalog.Book) error {
	repository.books = append(repository.books, b)
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

type fakeUserRepository struct {
	users map[string]*auth.User
}

func (repository *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	for _, user := range repository.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	if user, ok := repository.users[username]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	repository.users[user.Username] = user
	return nil
}

type fakeRevokedTokenRepository struct {
	revoked map[string]bool
}

func (repository *fakeRevokedTokenRepository) Revoke(_ context.Context, tokenID string) error {
	repository.revoked[tokenID] = true
	return nil
}

func (repository *fakeRevokedTokenRepository) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return repository.revoked[tokenID], nil
}

type fakeTokenProvider struct {
	issued map[string]*sec.AuthClaims
}

func (provider *fakeTokenProvider) Sign(userID, username, tokenID string) (string, error) {
	token := fmt.Sprintf("token-%d", len(provider.issued))
	provider.issued[token] = &sec.AuthClaims{UserID: userID, Username: username, TokenID: tokenID}
	return token, nil
}

func (provider *fakeTokenProvider) Verify(tokenString string) (*sec.AuthClaims, error) {
	if claims, ok := provider.issued[tokenString]; ok {
		return claims, nil
	}
	return nil, fmt.Errorf("unknown token")
}

func newTestResolver() (*resolver.Resolver, *fakeCatalogRepository) {
	repo := &fakeCatalogRepository{}
	catalogService := catalog.NewService(repo, slog.Default())
	authService := auth.NewService(
		&fakeUserRepository{users: map[string]*auth.User{}},
		&fakeRevokedTokenRepository{revoked: map[string]bool{}},
		&fakeTokenProvider{issued: map[string]*sec.AuthClaims{}},
		slog.Default(),
	)
	return resolver.NewResolver(catalogService, authService), repo
}

func authenticated() context.Context {
	return ctxutil.WithAuthUser(context.Background(), &sec.AuthClaims{
		UserID:   "user-1",
		Username: "mellas",
		TokenID:  "jti-1",
	})
}

func rawVariables(t *testing.T, variables any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(variables)
	require.NoError(t, err)
	return raw
}

// # Dispatch

/*
TestResolver_Queries covers the anonymous read operations.
*/
func TestResolver_Queries(t *testing.T) {
	t.Run("hello", func(t *testing.T) {
		r, _ := newTestResolver()

		result, err := r.Dispatch(context.Background(), resolver.Request{Operation: resolver.OpHello})
		require.NoError(t, err)
		assert.Equal(t, "hello", result.Payload)
	})

	t.Run("book_count", func(t *testing.T) {
		r, repo := newTestResolver()
		repo.books = append(repo.books, &catalog.Book{Title: "Refactoring"})

		result, err := r.Dispatch(context.Background(), resolver.Request{Operation: resolver.OpBookCount})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Payload)
	})

	t.Run("me_is_null_for_anonymous", func(t *testing.T) {
		r, _ := newTestResolver()

		result, err := r.Dispatch(context.Background(), resolver.Request{Operation: resolver.OpMe})
		require.NoError(t, err)
		assert.Nil(t, result.Payload)
	})

	t.Run("unknown_operation", func(t *testing.T) {
		r, _ := newTestResolver()

		_, err := r.Dispatch(context.Background(), resolver.Request{Operation: "dropAllBooks"})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})
}

/*
TestResolver_AddBook covers the token gate and the create flow.
*/
func TestResolver_AddBook(t *testing.T) {
	t.Run("gate_fires_before_validation", func(t *testing.T) {
		r, repo := newTestResolver()

		// Invalid payload AND missing token: the gate must win.
		_, err := r.Dispatch(context.Background(), resolver.Request{
			Operation: resolver.OpAddBook,
			Variables: rawVariables(t, map[string]any{"title": ""}),
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "UNAUTHORIZED", ae.Code)
		assert.Empty(t, repo.books)
	})

	t.Run("creates_book_and_author", func(t *testing.T) {
		r, repo := newTestResolver()

		published := 1999
		result, err := r.Dispatch(authenticated(), resolver.Request{
			Operation: resolver.OpAddBook,
			Variables: rawVariables(t, map[string]any{
				"title":     "Refactoring",
				"author":    "Martin Fowler",
				"published": published,
				"genres":    []string{"refactoring"},
			}),
		})
		require.NoError(t, err)
		assert.True(t, result.Created)

		book, ok := result.Payload.(*catalog.Book)
		require.True(t, ok)
		assert.Equal(t, "Refactoring", book.Title)
		assert.Equal(t, "Martin Fowler", book.Author.Name)
		assert.Len(t, repo.authors, 1)
		assert.Len(t, repo.books, 1)
	})
}

/*
TestResolver_EditAuthor covers the gated update and its not-found policy.
*/
func TestResolver_EditAuthor(t *testing.T) {
	t.Run("requires_token", func(t *testing.T) {
		r, _ := newTestResolver()

		born := 1952
		_, err := r.Dispatch(context.Background(), resolver.Request{
			Operation: resolver.OpEditAuthor,
			Variables: rawVariables(t, map[string]any{"name": "Sandi Metz", "setBornTo": born}),
		})
		require.Error(t, err)
		assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	})

	t.Run("unknown_author_is_not_found", func(t *testing.T) {
		r, _ := newTestResolver()

		born := 1952
		_, err := r.Dispatch(authenticated(), resolver.Request{
			Operation: resolver.OpEditAuthor,
			Variables: rawVariables(t, map[string]any{"name": "Sandi Metz", "setBornTo": born}),
		})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestResolver_AuthFlow covers createUser, login, and the login payload shape.
*/
func TestResolver_AuthFlow(t *testing.T) {
	r, _ := newTestResolver()

	result, err := r.Dispatch(context.Background(), resolver.Request{
		Operation: resolver.OpCreateUser,
		Variables: rawVariables(t, map[string]any{
			"username": "mellas",
			"password": "correct horse battery",
		}),
	})
	require.NoError(t, err)
	assert.True(t, result.Created)

	result, err = r.Dispatch(context.Background(), resolver.Request{
		Operation: resolver.OpLogin,
		Variables: rawVariables(t, map[string]any{
			"username": "mellas",
			"password": "correct horse battery",
		}),
	})
	require.NoError(t, err)

	// The token travels under "value"
	raw, err := json.Marshal(result.Payload)
	require.NoError(t, err)
	var payload struct {
		Value string `json:"value"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.NotEmpty(t, payload.Value)
}
