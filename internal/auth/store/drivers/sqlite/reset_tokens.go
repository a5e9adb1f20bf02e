package sqlite

import (
	"context"
	"time"

	"github.com/quayside/authd/internal/auth/domain"
	"github.com/quayside/authd/internal/auth/store/drivers/sqlite/gen"
)

type resetTokensRepo struct {
	q *gen.Queries
}

func (r *resetTokensRepo) CreateResetToken(ctx context.Context, t domain.ResetToken) error {
	return r.q.CreateResetToken(ctx, gen.CreateResetTokenParams{
		ID:          t.ID,
		UserID:      t.UserID,
		TokenDigest: t.TokenDigest,
		ExpiresAt:   t.ExpiresAt.UTC(),
	})
}

func (r *resetTokensRepo) GetActiveResetTokenByDigest(
	ctx context.Context,
	digest string,
) (domain.ResetToken, error) {
	row, err := r.q.GetActiveResetTokenByDigest(ctx, gen.GetActiveResetTokenByDigestParams{
		TokenDigest: digest,
		ExpiresAt:   time.Now().UTC(),
	})
	if err != nil {
		return domain.ResetToken{}, mapNotFound(err)
	}
	return mapResetToken(row), nil
}

func (r *resetTokensRepo) DeleteResetToken(ctx context.Context, id string) error {
	return r.q.DeleteResetToken(ctx, id)
}

func (r *resetTokensRepo) DeleteExpiredResetTokens(ctx context.Context) error {
	return r.q.DeleteExpiredResetTokens(ctx, time.Now().UTC())
}
