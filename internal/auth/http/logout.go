package http

import (
	"net/http"

	"github.com/quayside/authd/internal/auth/service"
	"github.com/quayside/authd/internal/auth/session"
	"github.com/quayside/authd/pkg/httpx"
	"github.com/quayside/authd/pkg/slogx"
)

type LogoutHandler struct {
	Auth     *service.AuthService
	Sessions *session.Manager
}

// ServeHTTP godoc
//
//	@Summary		User Logout Endpoint
//	@Description	Destroy the server-side session and clear the session cookie. Idempotent: logging out without a session still succeeds.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	MessageResponse	"cookie cleared"
//	@Failure		500	{object}	MessageResponse
//	@Router			/api/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sessionID := httpx.SessionIDFromContext(ctx)
	if sessionID == "" {
		// No verified session in context, but the raw cookie may still point
		// at a record; destroy whatever it names.
		sessionID, _ = h.Sessions.IDFromRequest(r)
	}

	if err := h.Auth.Logout(ctx, sessionID); err != nil {
		log.Error("logout failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, MessageResponse{Message: "Server error"})
		return
	}

	h.Sessions.ClearCookie(w)
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
