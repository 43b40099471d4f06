// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/bookshelf/internal/form"
	"github.com/taibuivan/bookshelf/internal/inventory"
	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	requestutil "github.com/taibuivan/bookshelf/internal/platform/request"
	"github.com/taibuivan/bookshelf/internal/platform/respond"
	"github.com/taibuivan/bookshelf/internal/platform/validate"
	"github.com/taibuivan/bookshelf/pkg/convert"
	"github.com/taibuivan/bookshelf/pkg/pagination"
)

// APIHandler serves the JSON API.
type APIHandler struct {
	inventory    Inventory
	requireOwner func(http.Handler) http.Handler
	logger       *slog.Logger
}

// NewAPIHandler builds the JSON API. requireOwner guards the mutating routes.
func NewAPIHandler(inventory Inventory, requireOwner func(http.Handler) http.Handler, logger *slog.Logger) *APIHandler {
	return &APIHandler{inventory: inventory, requireOwner: requireOwner, logger: logger}
}

// Routes returns the API router.
//
// # Endpoints
//   - GET    /books          : Paginated list, filtered by q and origin.
//   - GET    /books/{id}     : One record.
//   - POST   /books          : Create through the form rules.
//   - PUT    /books/{id}     : Edit a local record.
//   - DELETE /books/{id}     : Delete a local record; requires confirm=true.
//   - GET    /catalog/status : Progress of the startup catalog fetch.
func (handler *APIHandler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public
	router.Get("/books", handler.listBooks)
	router.Get("/books/{id}", handler.getBook)
	router.Get("/catalog/status", handler.catalogStatus)

	// Owner only
	router.Group(func(ownerRoute chi.Router) {
		ownerRoute.Use(handler.requireOwner)

		ownerRoute.Post("/books", handler.createBook)
		ownerRoute.Put("/books/{id}", handler.updateBook)
		ownerRoute.Delete("/books/{id}", handler.deleteBook)
	})

	return router
}

func (handler *APIHandler) listBooks(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	filter := inventory.Filter{
		Query:  query.Get("q"),
		Origin: inventory.Origin(query.Get("origin")),
	}

	if filter.Origin != "" {
		validator := &validate.Validator{}
		validator.OneOf("origin", string(filter.Origin), string(inventory.OriginLocal), string(inventory.OriginRemote))
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	books := handler.inventory.List(filter)
	paginationParams := pagination.FromRequest(request)

	respond.Paginated(writer,
		pagination.Page(books, paginationParams),
		pagination.NewMeta(paginationParams.Page, paginationParams.Limit, len(books)),
	)
}

func (handler *APIHandler) getBook(writer http.ResponseWriter, request *http.Request) {
	book, err := handler.inventory.Get(requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

func (handler *APIHandler) createBook(writer http.ResponseWriter, request *http.Request) {
	input, err := readSubmission(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Each API call runs its own form; the browser form is not shared.
	controller := form.NewController(handler.inventory, handler.logger)
	if err := input.apply(request.Context(), controller, handler.logger); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := controller.Submit(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, book)
}

func (handler *APIHandler) updateBook(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	controller := form.NewController(handler.inventory, handler.logger)
	if err := controller.BeginEdit(bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := readSubmission(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.apply(request.Context(), controller, handler.logger); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := controller.Submit(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

func (handler *APIHandler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")
	confirmed := convert.ToBool(request.URL.Query().Get("confirm"))

	removed, err := handler.inventory.Delete(request.Context(), bookID, confirmed)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if !removed {
		respond.Error(writer, request, apperr.ConfirmationRequired("Are you sure you want to delete this book? Repeat with confirm=true"))
		return
	}
	respond.NoContent(writer)
}

// catalogStatus reports the fetch state machine.
type catalogStatus struct {
	State inventory.FetchStatus `json:"state"`
	Error string                `json:"error,omitempty"`
}

func (handler *APIHandler) catalogStatus(writer http.ResponseWriter, request *http.Request) {
	snapshot := handler.inventory.Snapshot()
	respond.OK(writer, catalogStatus{State: snapshot.Fetch, Error: snapshot.FetchError})
}
