package http

import (
	"errors"
	"net/http"

	"github.com/quayside/authd/internal/auth/service"
	"github.com/quayside/authd/pkg/httpx"
	"github.com/quayside/authd/pkg/slogx"
)

type RegisterHandler struct {
	Auth *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		User Registration Endpoint
//	@Description	Create a new user account. Registration does not log the user in; call the login endpoint afterwards.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RegisterRequest	true	"username, email, password"
//	@Success		201		{object}	MessageResponse
//	@Failure		400		{object}	ValidationErrorResponse	"validation failure or duplicate user"
//	@Failure		500		{object}	MessageResponse
//	@Router			/api/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	_, err := h.Auth.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			httpx.WriteJSON(w, http.StatusBadRequest, MessageResponse{Message: "User already exists"})
			return
		}
		log.Error("registration failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, MessageResponse{Message: "Server error"})
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, MessageResponse{Message: "User registered successfully"})
}
