package resolver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/libris-app/libris/internal/platform/request"
	"github.com/libris-app/libris/internal/platform/respond"
	"github.com/libris-app/libris/internal/platform/validate"
)

// Handler exposes the resolver over HTTP.
type Handler struct {
	resolver *Resolver
}

// NewHandler constructs a new [Handler] around a [Resolver].
func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Routes returns a [chi.Router] mounting the dispatch endpoint.
//
// # Endpoints
//   - POST / : Executes one operation envelope.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", handler.query)
	return router
}

/*
query decodes the operation envelope and dispatches it.

POST /api/v1/query

Request:
  - Body: Request (Operation, Variables)

Response:
  - 200: Result payload for queries and non-creating mutations
  - 201: Result payload for addBook and createUser
  - 400: Validation failure or malformed envelope
  - 401: Missing, invalid, or revoked token on a gated operation
*/
func (handler *Handler) query(writer http.ResponseWriter, request *http.Request) {
	var envelope Request

	if err := requestutil.DecodeJSON(request, &envelope); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.resolver.Dispatch(request.Context(), envelope)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.Created {
		respond.Created(writer, result.Payload)
		return
	}
	respond.OK(writer, result.Payload)
}
