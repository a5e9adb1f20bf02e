package http

import (
	"errors"
	"net/http"

	"github.com/quayside/authd/internal/auth/service"
	"github.com/quayside/authd/pkg/httpx"
	"github.com/quayside/authd/pkg/slogx"
)

type ForgotPasswordHandler struct {
	Auth *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Initiate Password Reset Endpoint
//	@Description	Issue a time-bound single-use reset token for the account and email a reset link. Mail delivery is best effort.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ForgotPasswordRequest	true	"email"
//	@Success		200		{object}	MsgResponse
//	@Failure		400		{object}	MsgResponse	"no account with that email"
//	@Failure		500		{object}	MsgResponse
//	@Router			/api/auth/forgot-password [post].
func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ForgotPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Auth.ForgotPassword(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteJSON(w, http.StatusBadRequest, MsgResponse{Msg: "User with this email does not exist"})
			return
		}
		log.Error("forgot-password failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, MsgResponse{Msg: "Server error"})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MsgResponse{Msg: "Password reset email sent"})
}
