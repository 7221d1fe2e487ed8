package user

import (
	"errors"
	"net/http"

	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Register handles POST /v1/users/register
// @Summary Register a new user
// @Description Create a new user account
// @Tags users
// @Accept json
// @Produce json
// @Param request body RegisterInput true "Registration request"
// @Success 201 {object} User
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/users/register [post]
func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	u, err := h.service.Register(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, u)
}

// Me handles GET /v1/me
// @Summary Get current user
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} User
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/me [get]
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetByID(r.Context(), httpx.UserIDFrom(r))
	if errors.Is(err, ErrNotFound) {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}
