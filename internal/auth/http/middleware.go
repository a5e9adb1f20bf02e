package http

import (
	"errors"
	"net/http"

	"github.com/quayside/authd/internal/auth/session"
	"github.com/quayside/authd/pkg/httpx"
	"github.com/quayside/authd/pkg/slogx"
)

// AttachSession resolves the session cookie, if any, and injects the session
// identity into the request context. Requests without a live session pass
// through untouched; handlers that demand one use RequireSession instead.
func AttachSession(mgr *session.Manager) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id, ok := mgr.IDFromRequest(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			s, err := mgr.Get(ctx, id)
			if err != nil {
				// Unknown or expired cookie: treat as anonymous. Backend
				// failures also degrade to anonymous here; operations that
				// genuinely need the session will fail on their own terms.
				if !errors.Is(err, session.ErrNotFound) {
					slogx.FromContext(ctx).Warn("session lookup failed", "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx = httpx.ContextWithSession(ctx, s.ID, s.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that did not resolve to an authenticated
// session. Must run after AttachSession.
func RequireSession() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpx.UserIDFromContext(r.Context()) == "" {
				httpx.WriteJSON(w, http.StatusUnauthorized, MessageResponse{Message: "Not authenticated"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
