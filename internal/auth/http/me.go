package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/quayside/authd/internal/auth/service"
	"github.com/quayside/authd/pkg/httpx"
	"github.com/quayside/authd/pkg/slogx"
)

type MeHandler struct {
	Auth *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Current User Endpoint
//	@Description	Return the public profile of the authenticated user, read through the by-id cache projection.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	MessageResponse	"no active session"
//	@Failure		500	{object}	MessageResponse
//	@Router			/api/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)

	user, err := h.Auth.CurrentUser(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// Session outlived the account; nothing sensible to serve.
			httpx.WriteJSON(w, http.StatusUnauthorized, MessageResponse{Message: "Not authenticated"})
			return
		}
		log.Error("current-user lookup failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, MessageResponse{Message: "Server error"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	})
}
