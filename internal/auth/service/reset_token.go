package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/quayside/authd/internal/auth/domain"
	"github.com/quayside/authd/internal/auth/store"
	"github.com/quayside/authd/pkg/cryptox"
	"github.com/quayside/authd/pkg/idx"
	"github.com/quayside/authd/pkg/slogx"
)

// DefaultResetTokenTTL is how long a reset link stays redeemable.
const DefaultResetTokenTTL = time.Hour

// ErrInvalidOrExpiredToken covers both a token that never existed and one
// past its expiry. Callers cannot tell the two apart, so a response never
// confirms whether a guessed token was once valid.
var ErrInvalidOrExpiredToken = errors.New("reset token is invalid or expired")

// ResetTokenService issues and redeems opaque password-reset tokens. Only
// the SHA-256 digest of a token is ever persisted; the raw secret lives in
// the reset link and nowhere else.
type ResetTokenService struct {
	Store store.Store

	// TTL is the token lifetime. Zero means DefaultResetTokenTTL; a
	// negative value issues tokens that are already expired.
	TTL time.Duration
}

// Issue mints a fresh single-use token for userID and returns the raw
// secret. Multiple outstanding tokens per user are allowed; each is
// independently redeemable until it expires.
func (s *ResetTokenService) Issue(ctx context.Context, userID string) (string, error) {
	log := slogx.FromContext(ctx)

	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate reset token", slog.Any("error", err))
		return "", err
	}

	ttl := s.TTL
	if ttl == 0 {
		ttl = DefaultResetTokenTTL
	}

	rec := domain.ResetToken{
		ID:          idx.New().String(),
		UserID:      userID,
		TokenDigest: cryptox.FingerprintToken(raw),
		ExpiresAt:   time.Now().UTC().Add(ttl),
	}

	if err := s.Store.ResetTokens().CreateResetToken(ctx, rec); err != nil {
		log.Error("failed to store reset token",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return "", err
	}

	log.Debug("reset token issued",
		slog.String("token_id", rec.ID),
		slog.String("user_id", userID),
		slog.Time("expires_at", rec.ExpiresAt),
	)

	return raw, nil
}

// Redeem exchanges a raw token for the userID it references and consumes the
// stored record, so a second redemption of the same token fails. Any miss,
// whether the digest is unknown or the record expired, is
// ErrInvalidOrExpiredToken.
func (s *ResetTokenService) Redeem(ctx context.Context, rawToken string) (string, error) {
	log := slogx.FromContext(ctx)

	if rawToken == "" {
		return "", ErrInvalidOrExpiredToken
	}

	digest := cryptox.FingerprintToken(rawToken)
	rec, err := s.Store.ResetTokens().GetActiveResetTokenByDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("reset token redemption failed")
			return "", ErrInvalidOrExpiredToken
		}
		log.Error("failed to look up reset token", slog.Any("error", err))
		return "", err
	}

	// Consume the record before handing back the user id. Lookup and delete
	// are two calls with no atomicity guarantee; a racing redemption of the
	// same token within that window is a known, accepted gap.
	if err := s.Store.ResetTokens().DeleteResetToken(ctx, rec.ID); err != nil {
		log.Error("failed to consume reset token",
			slog.String("token_id", rec.ID),
			slog.Any("error", err),
		)
		return "", err
	}

	log.Debug("reset token redeemed",
		slog.String("token_id", rec.ID),
		slog.String("user_id", rec.UserID),
	)

	return rec.UserID, nil
}
