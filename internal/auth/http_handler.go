package auth

import (
	"net/http"

	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Login handles POST /v1/users/login
// @Summary User login
// @Description Authenticate user and receive a bearer access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login request"
// @Success 200 {object} Token
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /v1/users/login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	token, err := h.service.Login(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, token, nil)
}
