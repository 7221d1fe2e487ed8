package review

import (
	"net/http"

	"bookreview/internal/httpx"
)

const defaultPageSize = 20

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// ListByBook handles GET /v1/books/{id}/reviews
// @Summary List reviews of a book
// @Tags reviews
// @Produce json
// @Param id path string true "Book ID"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size (max 100)" default(20)
// @Success 200 {array} Review
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id}/reviews [get]
func (h *HTTPHandler) ListByBook(w http.ResponseWriter, r *http.Request) {
	page := httpx.ParsePage(r, defaultPageSize)
	reviews, total, err := h.service.ListByBook(r.Context(), r.PathValue("id"), page.Limit(), page.Offset())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, reviews, page.Meta(total))
}

// ListByUser handles GET /v1/users/{id}/reviews
// @Summary List reviews written by a user
// @Tags reviews
// @Produce json
// @Param id path string true "User ID"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size (max 100)" default(20)
// @Success 200 {array} Review
// @Router /v1/users/{id}/reviews [get]
func (h *HTTPHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	page := httpx.ParsePage(r, defaultPageSize)
	reviews, total, err := h.service.ListByUser(r.Context(), r.PathValue("id"), page.Limit(), page.Offset())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, reviews, page.Meta(total))
}

// Get handles GET /v1/reviews/{id}
// @Summary Get review
// @Tags reviews
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} Review
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/reviews/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	rv, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rv, nil)
}

// Create handles POST /v1/reviews
// @Summary Review a book
// @Description One review per book and user; a second attempt returns 409
// @Tags reviews
// @Accept json
// @Produce json
// @Security Bearer
// @Param body body CreateInput true "Review"
// @Success 201 {object} Review
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/reviews [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	rv, err := h.service.Create(r.Context(), httpx.UserIDFrom(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, rv)
}

// Update handles PUT /v1/reviews/{id}
// @Summary Update review
// @Description Only the author may change the rating or text
// @Tags reviews
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Review ID"
// @Param body body UpdateInput true "Fields to change"
// @Success 200 {object} Review
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/reviews/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	rv, err := h.service.Update(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rv, nil)
}

// Delete handles DELETE /v1/reviews/{id}
// @Summary Delete review
// @Tags reviews
// @Security Bearer
// @Param id path string true "Review ID"
// @Success 204 "No Content"
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/reviews/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r)); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
