/*
Package resolver implements the single typed query endpoint of the Libris API.

Every read and write goes through one dispatch surface: the client posts an
operation name plus a variables object, and the resolver routes it to the
catalog or auth service. This keeps the wire contract to a single envelope
while the domain stays split into focused services.

# Authorization

Mutating operations are token-gated with an all-or-nothing policy: the gate
runs before variables are even decoded, so an unauthenticated caller always
sees the same UNAUTHORIZED failure regardless of payload validity.
*/
package resolver

import (
	"context"
	"encoding/json"

	"github.com/libris-app/libris/internal/catalog"
	"github.com/libris-app/libris/internal/platform/apperr"
	"github.com/libris-app/libris/internal/platform/ctxutil"
	"github.com/libris-app/libris/internal/platform/validate"
	"github.com/libris-app/libris/internal/users/auth"
)

// Operation names accepted by [Resolver.Dispatch].
const (
	OpHello       = "hello"
	OpBookCount   = "bookCount"
	OpAuthorCount = "authorCount"
	OpAllBooks    = "allBooks"
	OpAllAuthors  = "allAuthors"
	OpFindBooks   = "findBooks"
	OpMe          = "me"
	OpAddBook     = "addBook"
	OpEditAuthor  = "editAuthor"
	OpCreateUser  = "createUser"
	OpLogin       = "login"
	OpLogout      = "logout"
)

// Request is the wire envelope for every API call.
type Request struct {
	Operation string          `json:"operation"`
	Variables json.RawMessage `json:"variables"`
}

// Result carries a dispatched operation's payload plus enough transport
// intent for the HTTP layer to pick a status code.
type Result struct {
	Payload any
	Created bool
}

// Resolver routes operation requests to the underlying domain services.
type Resolver struct {
	catalogService *catalog.Service
	authService    *auth.Service
}

// NewResolver constructs a [Resolver] over the two domain services.
func NewResolver(catalogService *catalog.Service, authService *auth.Service) *Resolver {
	return &Resolver{
		catalogService: catalogService,
		authService:    authService,
	}
}

// # Variable Payloads

type allBooksVariables struct {
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

type allAuthorsVariables struct {
	Author string `json:"author"`
}

type findBooksVariables struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

type addBookVariables struct {
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	Published *int     `json:"published"`
	Genres    []string `json:"genres"`
}

type editAuthorVariables struct {
	Name      string `json:"name"`
	SetBornTo *int   `json:"setBornTo"`
}

type createUserVariables struct {
	Username      string  `json:"username"`
	Password      string  `json:"password"`
	FavoriteGenre *string `json:"favoriteGenre"`
}

type loginVariables struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenPayload is the login response shape: the signed token under "value".
type tokenPayload struct {
	Value string `json:"value"`
}

/*
Dispatch executes a single operation request.

Queries (hello, bookCount, authorCount, allBooks, allAuthors, findBooks, me)
are open to anonymous callers. Mutations (addBook, editAuthor, logout) require
a verified token; createUser and login are the unauthenticated entry points
into the auth flow.

An unknown operation name is a validation failure, not a transport error.
*/
func (resolver *Resolver) Dispatch(context context.Context, request Request) (*Result, error) {
	switch request.Operation {

	// # Queries

	case OpHello:
		return &Result{Payload: "hello"}, nil

	case OpBookCount:
		count, err := resolver.catalogService.BookCount(context)
		if err != nil {
			return nil, err
		}
		return &Result{Payload: count}, nil

	case OpAuthorCount:
		count, err := resolver.catalogService.AuthorCount(context)
		if err != nil {
			return nil, err
		}
		return &Result{Payload: count}, nil

	case OpAllBooks:
		var variables allBooksVariables
		if err := decodeVariables(request.Variables, &variables); err != nil {
			return nil, err
		}
		books, err := resolver.catalogService.AllBooks(context, variables.Author, variables.Genre)
		if err != nil {
			return nil, err
		}
		return &Result{Payload: books}, nil

	case OpAllAuthors:
		var variables allAuthorsVariables
		if err := decodeVariables(request.Variables, &variables); err != nil {
			return nil, err
		}
		authors, err := resolver.catalogService.AllAuthors(context, variables.Author)
		if err != nil {
			return nil, err
		}
		return &Result{Payload: authors}, nil

	case OpFindBooks:
		var variables findBooksVariables
		if err := decodeVariables(request.Variables, &variables); err != nil {
			return nil, err
		}
		books, err := resolver.catalogService.FindBooks(context, catalog.Filter{
			Title:  variables.Title,
			Author: variables.Author,
			Genre:  variables.Genre,
		})
		if err != nil {
			return nil, err
		}
		return &Result{Payload: books}, nil

	case OpMe:
		user, err := resolver.authService.Me(context, ctxutil.GetAuthUser(context))
		if err != nil {
			return nil, err
		}
		return &Result{Payload: user}, nil

	// # Gated Mutations

	case OpAddBook:
		if ctxutil.GetAuthUser(context) == nil {
			return nil, apperr.Unauthorized("missing or invalid token")
		}
		var variables addBookVariables
		if err := decodeVariables(request.Variables, &variables); err != nil {
			return nil, err
		}
		book, err := resolver.catalogService.AddBook(context, catalog.AddBookInput{
			Title:      variables.Title,
			AuthorName: variables.Author,
			Published:  variables.Published,
			Genres:     variables.Genres,
		})
		if err != nil {
			return nil, err
		}
		return &Result{Payload: book, Created: true}, nil

	case OpEditAuthor:
		if ctxutil.GetAuthUser(context) == nil {
			return nil, apperr.Unauthorized("missing or invalid token")
		}
		var variables editAuthorVariables
		if err := decodeVariables(request.Variables, &variables); err != nil {
			return nil, err
		}
		author, err := resolver.catalogService.EditAuthor(context, variables.Name, variables.SetBornTo)
		if err != nil {
			return nil, err
		}
		return &Result{Payload: author}, nil

	case OpLogout:
		claims := ctxutil.GetAuthUser(context)
		if claims == nil {
			return nil, apperr.Unauthorized("missing or invalid token")
		}
		if err := resolver.authService.Logout(context, claims); err != nil {
			return nil, err
		}
		return &Result{Payload: true}, nil

	// # Auth Entry Points

	case OpCreateUser:
		var variables createUserVariables
		if err := decodeVariables(request.Variables, &variables); err != nil {
			return nil, err
		}
		user, err := resolver.authService.CreateUser(context, auth.CreateUserInput{
			Username:      variables.Username,
			Password:      variables.Password,
			FavoriteGenre: variables.FavoriteGenre,
		})
		if err != nil {
			return nil, err
		}
		return &Result{Payload: user, Created: true}, nil

	case OpLogin:
		var variables loginVariables
		if err := decodeVariables(request.Variables, &variables); err != nil {
			return nil, err
		}
		session, err := resolver.authService.Login(context, auth.LoginInput{
			Username: variables.Username,
			Password: variables.Password,
		})
		if err != nil {
			return nil, err
		}
		return &Result{Payload: tokenPayload{Value: session.Token}}, nil

	default:
		return nil, apperr.ValidationError("Unknown operation: " + request.Operation)
	}
}

// decodeVariables unmarshals the raw variables object. A missing or empty
// variables block is treated as an empty object.
func decodeVariables(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}
