package rating

import (
	"net/http"

	"bookreview/internal/httpx"

	"github.com/google/uuid"
)

type HTTPHandler struct {
	aggregator *Aggregator
}

func NewHTTPHandler(aggregator *Aggregator) *HTTPHandler {
	return &HTTPHandler{aggregator: aggregator}
}

// Get handles GET /v1/books/{id}/rating
// @Summary Get the cached rating summary of a book
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} Summary
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id}/rating [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if uuid.Validate(id) != nil {
		httpx.WriteError(w, r, ErrBookNotFound)
		return
	}

	summary, err := h.aggregator.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, summary, nil)
}
