package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/quayside/authd/internal/auth/cache"
	"github.com/quayside/authd/internal/auth/session"
	"github.com/quayside/authd/internal/auth/store/drivers/sqlite"
	"github.com/quayside/authd/pkg/cryptox"
)

// captureSender records outbound mail so tests can pull the reset link out of
// the body the way a user would out of their inbox.
type captureSender struct {
	to      []string
	subject []string
	body    []string
}

func (s *captureSender) Send(ctx context.Context, to, subject, body string) error {
	s.to = append(s.to, to)
	s.subject = append(s.subject, subject)
	s.body = append(s.body, body)
	return nil
}

// lastResetToken extracts the raw token from the most recent reset email.
func (s *captureSender) lastResetToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, s.body)

	body := s.body[len(s.body)-1]
	i := strings.LastIndex(body, "/reset-password/")
	require.GreaterOrEqual(t, i, 0, "no reset link in mail body: %q", body)
	return body[i+len("/reset-password/"):]
}

type authFixture struct {
	svc  *AuthService
	mr   *miniredis.Miniredis
	mail *captureSender
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sender := &captureSender{}
	svc := &AuthService{
		Store:      st,
		Cache:      cache.New(rdb),
		Sessions:   session.NewManager(rdb, time.Hour, session.DefaultCookieName, false),
		Tokens:     &ResetTokenService{Store: st},
		Mail:       sender,
		ClientURL:  "http://localhost:3000",
		BcryptCost: 4, // bcrypt.MinCost keeps the suite fast
	}

	return &authFixture{svc: svc, mr: mr, mail: sender}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	t.Run("creates account and seeds public cache", func(t *testing.T) {
		user, err := fx.svc.Register(ctx, "alice", "alice@example.com", "password123")
		require.NoError(t, err)
		require.NotEmpty(t, user.ID)
		require.False(t, user.CreatedAt.IsZero())

		// Public projection cached under user:<id>, no password hash in it.
		cached, err := fx.mr.Get(cache.UserKey(user.ID))
		require.NoError(t, err)
		require.Contains(t, cached, "alice@example.com")
		require.NotContains(t, cached, user.PasswordHash)

		// Credentials keyspace is left for the first login's read-through.
		require.False(t, fx.mr.Exists(cache.UserEmailKey("alice@example.com")))
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := fx.svc.Register(ctx, "alice2", "alice@example.com", "password123")
		require.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := fx.svc.Register(ctx, "alice", "other@example.com", "password123")
		require.ErrorIs(t, err, ErrUserExists)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	user, err := fx.svc.Register(ctx, "bob", "bob@example.com", "password123")
	require.NoError(t, err)

	t.Run("valid credentials establish a session", func(t *testing.T) {
		sess, err := fx.svc.Login(ctx, "bob@example.com", "password123")
		require.NoError(t, err)
		require.Equal(t, user.ID, sess.UserID)

		got, err := fx.svc.Sessions.Get(ctx, sess.ID)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.UserID)
	})

	t.Run("login repopulates both cache keyspaces", func(t *testing.T) {
		require.True(t, fx.mr.Exists(cache.UserKey(user.ID)))
		require.True(t, fx.mr.Exists(cache.UserEmailKey("bob@example.com")))

		// The email keyspace holds the full projection for later logins.
		cached, err := fx.mr.Get(cache.UserEmailKey("bob@example.com"))
		require.NoError(t, err)
		require.Contains(t, cached, "password_hash")
	})

	t.Run("second login served from cache", func(t *testing.T) {
		// Change the stored hash out from under the cache; the cached
		// credentials still verify the old password until the entry lapses.
		require.NoError(t, fx.svc.Store.Users().UpdatePasswordHash(ctx, user.ID, "replaced"))

		sess, err := fx.svc.Login(ctx, "bob@example.com", "password123")
		require.NoError(t, err)
		require.Equal(t, user.ID, sess.UserID)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := fx.svc.Login(ctx, "bob@example.com", "not-the-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email rejected identically", func(t *testing.T) {
		_, err := fx.svc.Login(ctx, "nobody@example.com", "password123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginSurvivesCacheOutage(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	_, err := fx.svc.Register(ctx, "carol", "carol@example.com", "password123")
	require.NoError(t, err)

	// Sessions live in the same Redis, so point the login's session manager at
	// a live instance while the cache side stays down.
	liveMr := miniredis.RunT(t)
	liveRdb := redis.NewClient(&redis.Options{Addr: liveMr.Addr()})
	t.Cleanup(func() { _ = liveRdb.Close() })
	fx.svc.Sessions = session.NewManager(liveRdb, time.Hour, session.DefaultCookieName, false)

	fx.mr.Close()

	sess, err := fx.svc.Login(ctx, "carol@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	_, err := fx.svc.Register(ctx, "dave", "dave@example.com", "password123")
	require.NoError(t, err)
	sess, err := fx.svc.Login(ctx, "dave@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, fx.svc.Logout(ctx, sess.ID))

	_, err = fx.svc.Sessions.Get(ctx, sess.ID)
	require.ErrorIs(t, err, session.ErrNotFound)

	// Idempotent: repeated and empty logouts succeed.
	require.NoError(t, fx.svc.Logout(ctx, sess.ID))
	require.NoError(t, fx.svc.Logout(ctx, ""))
}

func TestForgotPassword(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	_, err := fx.svc.Register(ctx, "erin", "erin@example.com", "password123")
	require.NoError(t, err)

	t.Run("sends reset link to the account email", func(t *testing.T) {
		require.NoError(t, fx.svc.ForgotPassword(ctx, "erin@example.com"))

		require.Equal(t, []string{"erin@example.com"}, fx.mail.to)
		require.Equal(t, []string{"Password Reset"}, fx.mail.subject)
		require.Contains(t, fx.mail.body[0], "http://localhost:3000/reset-password/")
	})

	t.Run("unknown email reported to caller", func(t *testing.T) {
		err := fx.svc.ForgotPassword(ctx, "nobody@example.com")
		require.ErrorIs(t, err, ErrUserNotFound)
		require.Len(t, fx.mail.to, 1, "no mail for unknown accounts")
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	_, err := fx.svc.Register(ctx, "frank", "frank@example.com", "oldpassword1")
	require.NoError(t, err)

	require.NoError(t, fx.svc.ForgotPassword(ctx, "frank@example.com"))
	raw := fx.mail.lastResetToken(t)

	t.Run("valid token changes the password", func(t *testing.T) {
		require.NoError(t, fx.svc.ResetPassword(ctx, raw, "newpassword1"))

		user, err := fx.svc.Store.Users().GetUserByEmail(ctx, "frank@example.com")
		require.NoError(t, err)
		require.True(t, cryptox.VerifyPassword("newpassword1", user.PasswordHash))
		require.False(t, cryptox.VerifyPassword("oldpassword1", user.PasswordHash))
	})

	t.Run("token is single-use", func(t *testing.T) {
		err := fx.svc.ResetPassword(ctx, raw, "anotherpassword1")
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		err := fx.svc.ResetPassword(ctx, "definitely-not-a-token", "newpassword2")
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})
}

func TestResetPasswordExpiredToken(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)
	fx.svc.Tokens.TTL = -time.Minute // everything issued is already expired

	_, err := fx.svc.Register(ctx, "grace", "grace@example.com", "oldpassword1")
	require.NoError(t, err)

	require.NoError(t, fx.svc.ForgotPassword(ctx, "grace@example.com"))
	raw := fx.mail.lastResetToken(t)

	err = fx.svc.ResetPassword(ctx, raw, "newpassword1")
	require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)

	user, err := fx.svc.Register(ctx, "henry", "henry@example.com", "password123")
	require.NoError(t, err)

	t.Run("returns public projection", func(t *testing.T) {
		pub, err := fx.svc.CurrentUser(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, user.ID, pub.ID)
		require.Equal(t, user.Username, pub.Username)
		require.Equal(t, user.Email, pub.Email)
		require.True(t, pub.CreatedAt.Equal(user.CreatedAt))
	})

	t.Run("read-through repopulates after cache flush", func(t *testing.T) {
		fx.mr.FlushAll()

		pub, err := fx.svc.CurrentUser(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, user.ID, pub.ID)
		require.True(t, fx.mr.Exists(cache.UserKey(user.ID)))
	})

	t.Run("unknown user not found", func(t *testing.T) {
		_, err := fx.svc.CurrentUser(ctx, "missing")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}
