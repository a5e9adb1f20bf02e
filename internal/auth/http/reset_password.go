package http

import (
	"errors"
	"net/http"

	"github.com/quayside/authd/internal/auth/service"
	"github.com/quayside/authd/pkg/httpx"
	"github.com/quayside/authd/pkg/slogx"
)

type ResetPasswordHandler struct {
	Auth *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Complete Password Reset Endpoint
//	@Description	Redeem a reset token from the emailed link and set a new password. Tokens are single use; invalid and expired tokens are indistinguishable.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string					true	"raw reset token from the emailed link"
//	@Param			body	body		ResetPasswordRequest	true	"password"
//	@Success		200		{object}	MsgResponse
//	@Failure		400		{object}	MsgResponse	"invalid or expired token, or user not found"
//	@Failure		500		{object}	MsgResponse
//	@Router			/api/auth/reset-password/{token} [put].
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.PathValue("token")

	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Auth.ResetPassword(ctx, token, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrExpiredToken):
			httpx.WriteJSON(w, http.StatusBadRequest, MsgResponse{Msg: "Invalid or expired token"})
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteJSON(w, http.StatusBadRequest, MsgResponse{Msg: "User not found"})
		default:
			log.Error("reset-password failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, MsgResponse{Msg: "Server error"})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MsgResponse{Msg: "Password reset successful"})
}
