package book

import (
	"net/http"
	"strings"

	"bookreview/internal/apperror"
	"bookreview/internal/httpx"
)

const defaultPageSize = 5

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// List handles GET /v1/books
// @Summary List books
// @Description Paginated book listing with title/author search, genre filter and sorting
// @Tags books
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size (max 100)" default(5)
// @Param search query string false "Case-insensitive match on title or author"
// @Param genre query string false "Genre, or All"
// @Param sort_by query string false "newest, year or rating" default(newest)
// @Success 200 {array} Book
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	page := httpx.ParsePage(r, defaultPageSize)
	books, total, err := h.service.List(r.Context(), listQuery(r, page))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, books, page.Meta(total))
}

// ListByOwner handles GET /v1/users/{id}/books
// @Summary List a user's books
// @Description Books catalogued by the given user, with the same filters as the book listing
// @Tags books
// @Produce json
// @Param id path string true "User ID"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size (max 100)" default(5)
// @Success 200 {array} Book
// @Router /v1/users/{id}/books [get]
func (h *HTTPHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	h.listByOwner(w, r, r.PathValue("id"))
}

// ListMine handles GET /v1/me/books
// @Summary List my books
// @Tags books
// @Produce json
// @Security BearerAuth
// @Success 200 {array} Book
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/me/books [get]
func (h *HTTPHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.WriteError(w, r, apperror.ErrUnauthorized)
		return
	}
	h.listByOwner(w, r, userID)
}

func (h *HTTPHandler) listByOwner(w http.ResponseWriter, r *http.Request, ownerID string) {
	page := httpx.ParsePage(r, defaultPageSize)
	books, total, err := h.service.ListByOwner(r.Context(), ownerID, listQuery(r, page))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, books, page.Meta(total))
}

func listQuery(r *http.Request, page httpx.Page) Query {
	query := r.URL.Query()
	return Query{
		Search: strings.TrimSpace(query.Get("search")),
		Genre:  strings.TrimSpace(query.Get("genre")),
		Sort:   ParseSort(query.Get("sort_by")),
		Limit:  page.Limit(),
		Offset: page.Offset(),
	}
}

// Get handles GET /v1/books/{id}
// @Summary Get book
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} Book
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Create handles POST /v1/books
// @Summary Create book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param body body CreateInput true "Book"
// @Success 201 {object} Book
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	b, err := h.service.Create(r.Context(), httpx.UserIDFrom(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, b)
}

// Update handles PUT /v1/books/{id}
// @Summary Update book
// @Description Only the book's owner may update it. Rating fields are not writable.
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param body body UpdateInput true "Fields to change"
// @Success 200 {object} Book
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	b, err := h.service.Update(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Delete handles DELETE /v1/books/{id}
// @Summary Delete book
// @Description Deletes the book together with all of its reviews
// @Tags books
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 204 "No Content"
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r)); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
