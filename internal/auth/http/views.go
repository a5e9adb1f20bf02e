package http

import (
	"fmt"
	"net/http"

	"github.com/quayside/authd/internal/auth/session"
	"github.com/quayside/authd/pkg/httpx"
	"github.com/quayside/authd/pkg/slogx"
)

type ViewsHandler struct {
	Sessions *session.Manager
}

// ServeHTTP godoc
//
//	@Summary		Session Probe Endpoint
//	@Description	Increment and report a per-session view counter. Establishes an anonymous session when the request has none; handy for verifying cookie and session-store plumbing.
//	@Tags			Health
//	@Produce		plain
//	@Success		200	{string}	string	"Number of views: n"
//	@Failure		500	{object}	MessageResponse
//	@Router			/ [get].
func (h *ViewsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var err error
	sess, loaded := h.Sessions.FromRequest(ctx, r)
	if !loaded {
		// Anonymous session: no user bound, just the counter.
		sess, err = h.Sessions.Create(ctx, "")
		if err != nil {
			log.Error("failed to create session", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, MessageResponse{Message: "Server error"})
			return
		}
		h.Sessions.SetCookie(w, sess)
	}

	sess.Views++
	if err := h.Sessions.Save(ctx, sess); err != nil {
		log.Error("failed to save session", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, MessageResponse{Message: "Server error"})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Number of views: %d", sess.Views)
}
