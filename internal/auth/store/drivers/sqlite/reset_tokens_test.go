package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quayside/authd/internal/auth/domain"
	"github.com/quayside/authd/internal/auth/store"
	"github.com/quayside/authd/pkg/idx"
)

func seedResetToken(t *testing.T, st store.Store, userID, digest string, expiresAt time.Time) domain.ResetToken {
	t.Helper()

	rec := domain.ResetToken{
		ID:          idx.New().String(),
		UserID:      userID,
		TokenDigest: digest,
		ExpiresAt:   expiresAt,
	}
	require.NoError(t, st.ResetTokens().CreateResetToken(context.Background(), rec))
	return rec
}

func TestResetTokenLookup(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "alice", "alice@example.com")

	t.Run("active token found by digest", func(t *testing.T) {
		rec := seedResetToken(t, st, user.ID, "digest-active", time.Now().UTC().Add(time.Hour))

		got, err := st.ResetTokens().GetActiveResetTokenByDigest(ctx, "digest-active")
		require.NoError(t, err)
		require.Equal(t, rec.ID, got.ID)
		require.Equal(t, user.ID, got.UserID)
	})

	t.Run("expired token indistinguishable from absent", func(t *testing.T) {
		seedResetToken(t, st, user.ID, "digest-expired", time.Now().UTC().Add(-time.Minute))

		_, err := st.ResetTokens().GetActiveResetTokenByDigest(ctx, "digest-expired")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unknown digest not found", func(t *testing.T) {
		_, err := st.ResetTokens().GetActiveResetTokenByDigest(ctx, "no-such-digest")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestDeleteResetToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "bob", "bob@example.com")

	rec := seedResetToken(t, st, user.ID, "digest-1", time.Now().UTC().Add(time.Hour))

	require.NoError(t, st.ResetTokens().DeleteResetToken(ctx, rec.ID))

	_, err := st.ResetTokens().GetActiveResetTokenByDigest(ctx, "digest-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Deleting an absent record is a no-op.
	require.NoError(t, st.ResetTokens().DeleteResetToken(ctx, rec.ID))
}

func TestDeleteExpiredResetTokens(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "carol", "carol@example.com")

	old := seedResetToken(t, st, user.ID, "digest-old", time.Now().UTC().Add(-time.Hour))
	live := seedResetToken(t, st, user.ID, "digest-live", time.Now().UTC().Add(time.Hour))

	require.NoError(t, st.ResetTokens().DeleteExpiredResetTokens(ctx))

	// The expired row itself is gone, not just filtered from lookups.
	var count int
	require.NoError(t, st.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reset_tokens WHERE id = ?", old.ID).Scan(&count))
	require.Zero(t, count)

	got, err := st.ResetTokens().GetActiveResetTokenByDigest(ctx, "digest-live")
	require.NoError(t, err)
	require.Equal(t, live.ID, got.ID)
}

func TestResetTokensCascadeWithUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "dave", "dave@example.com")

	seedResetToken(t, st, user.ID, "digest-cascade", time.Now().UTC().Add(time.Hour))

	// Token rows reference users with ON DELETE CASCADE.
	_, err := st.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", user.ID)
	require.NoError(t, err)

	_, err = st.ResetTokens().GetActiveResetTokenByDigest(ctx, "digest-cascade")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDuplicateDigestConflicts(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	user := seedUser(t, st, "erin", "erin@example.com")

	seedResetToken(t, st, user.ID, "digest-dup", time.Now().UTC().Add(time.Hour))

	err := st.ResetTokens().CreateResetToken(ctx, domain.ResetToken{
		ID:          idx.New().String(),
		UserID:      user.ID,
		TokenDigest: "digest-dup",
		ExpiresAt:   time.Now().UTC().Add(time.Hour),
	})
	require.Error(t, err)
}
