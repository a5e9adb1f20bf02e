package http

import (
	"errors"
	"net/http"

	"github.com/quayside/authd/internal/auth/service"
	"github.com/quayside/authd/internal/auth/session"
	"github.com/quayside/authd/pkg/httpx"
	"github.com/quayside/authd/pkg/slogx"
)

type LoginHandler struct {
	Auth     *service.AuthService
	Sessions *session.Manager
}

// ServeHTTP godoc
//
//	@Summary		User Login Endpoint
//	@Description	Verify credentials and establish a server-side session. The opaque session id is returned in an HttpOnly cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"email, password"
//	@Success		200		{object}	MessageResponse	"session cookie set"
//	@Failure		401		{object}	MessageResponse	"invalid credentials"
//	@Failure		500		{object}	MessageResponse
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteJSON(w, http.StatusUnauthorized, MessageResponse{Message: "Invalid credentials"})
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, MessageResponse{Message: "Server error"})
		return
	}

	h.Sessions.SetCookie(w, sess)
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logged in successfully"})
}
