package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quayside/authd/internal/auth/cache"
	"github.com/quayside/authd/internal/auth/domain"
	"github.com/quayside/authd/internal/auth/mail"
	"github.com/quayside/authd/internal/auth/session"
	"github.com/quayside/authd/internal/auth/store"
	"github.com/quayside/authd/pkg/cryptox"
	"github.com/quayside/authd/pkg/idx"
	"github.com/quayside/authd/pkg/slogx"
)

var (
	// ErrUserExists reports a registration against an email or username
	// that is already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. The two cases are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound reports an operation against a user that does not
	// exist (forgot-password for an unknown email, reset for a deleted
	// account).
	ErrUserNotFound = errors.New("user not found")
)

// AuthService orchestrates the authentication workflow: registration, the
// session-backed login/logout pair, and the password-reset flow. It owns the
// consistency rules between the cache and the store; the store is always
// authoritative and the cache is refreshed on its terms.
type AuthService struct {
	Store    store.Store
	Cache    *cache.Cache
	Sessions *session.Manager
	Tokens   *ResetTokenService
	Mail     mail.Sender

	// ClientURL is the external base for reset links, e.g. https://app.example.com.
	ClientURL string

	// BcryptCost tunes the password hashing work factor (cryptox.DefaultCost
	// when <= 0).
	BcryptCost int

	// CacheTTL bounds user projection staleness (cache.DefaultTTL when <= 0).
	CacheTTL time.Duration
}

// Register creates a new account. The existence check goes to the store, not
// the cache, so it always sees the latest state. Check-then-insert is still
// two calls; the schema's UNIQUE constraints resolve the concurrent-duplicate
// race and surface here as ErrUserExists.
//
// Registration does not establish a session; the caller logs in separately.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	_, err := s.Store.Users().GetUserByEmailOrUsername(ctx, email, username)
	if err == nil {
		log.Warn("registration attempted for existing user")
		return domain.User{}, ErrUserExists
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check user existence", slog.Any("error", err))
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password, s.BcryptCost)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	created, err := s.Store.Users().CreateUser(ctx, domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUserExists
		}
		log.Error("failed to create user", slog.Any("error", err))
		return domain.User{}, err
	}

	// Seed the public projection. The credentials keyspace is left to the
	// first login's read-through so both entries are refreshed together.
	s.Cache.Set(ctx, cache.UserKey(created.ID), created.Public(), s.CacheTTL)

	log.Info("user registered",
		slog.String("user_id", created.ID),
		slog.String("username", created.Username),
	)

	return created, nil
}

// Login verifies credentials and establishes a session. The full projection
// under user:email:<email> is consulted first; on a miss the store is
// queried and both cache keyspaces are repopulated together. A cache that is
// down only costs the round-trip to the store, never the login.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	log := slogx.FromContext(ctx)

	var creds domain.Credentials
	if !s.Cache.Get(ctx, cache.UserEmailKey(email), &creds) {
		user, err := s.Store.Users().GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				log.Warn("login attempted for unknown email")
				return domain.Session{}, ErrInvalidCredentials
			}
			log.Error("failed to look up user for login", slog.Any("error", err))
			return domain.Session{}, err
		}

		// Both keyspaces are written together or not at all meaningfully:
		// each Set fails soft on its own, and a partial write only means a
		// later read-through repeats this refresh.
		s.Cache.Set(ctx, cache.UserKey(user.ID), user.Public(), s.CacheTTL)
		s.Cache.Set(ctx, cache.UserEmailKey(email), user.Credentials(), s.CacheTTL)

		creds = user.Credentials()
	}

	if !cryptox.VerifyPassword(password, creds.PasswordHash) {
		log.Warn("login attempted with wrong password", slog.String("user_id", creds.ID))
		return domain.Session{}, ErrInvalidCredentials
	}

	sess, err := s.Sessions.Create(ctx, creds.ID)
	if err != nil {
		log.Error("failed to create session",
			slog.String("user_id", creds.ID),
			slog.Any("error", err),
		)
		return domain.Session{}, err
	}

	log.Info("user logged in", slog.String("user_id", creds.ID))
	return sess, nil
}

// Logout destroys the session record. Absent or already-destroyed sessions
// are fine; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.Sessions.Destroy(ctx, sessionID); err != nil {
		slogx.FromContext(ctx).Error("failed to destroy session", slog.Any("error", err))
		return err
	}

	slogx.FromContext(ctx).Info("user logged out")
	return nil
}

// ForgotPassword issues a reset token for the account behind email and sends
// the reset link. An unknown email is reported to the caller, which leaks
// account existence; clients rely on that response. Mail delivery is best
// effort: a failure is logged and the request still succeeds.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("password reset requested for unknown email")
			return ErrUserNotFound
		}
		log.Error("failed to look up user for password reset", slog.Any("error", err))
		return err
	}

	raw, err := s.Tokens.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(s.ClientURL, "/"), raw)
	body := "You requested a password reset. Please make a PUT request to: " + resetURL

	if err := s.Mail.Send(ctx, user.Email, "Password Reset", body); err != nil {
		log.Error("failed to send password reset email",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	log.Info("password reset initiated", slog.String("user_id", user.ID))
	return nil
}

// ResetPassword redeems a raw reset token and replaces the referenced user's
// password hash. The token is consumed by the redemption even if the user
// has since disappeared.
//
// Deliberately NOT done here: invalidating the user:email:<email> cache entry
// (which still holds the old hash until its TTL lapses) or destroying the
// user's other live sessions. Both are known, accepted windows.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	log := slogx.FromContext(ctx)

	userID, err := s.Tokens.Redeem(ctx, rawToken)
	if err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("reset token referenced missing user", slog.String("user_id", userID))
			return ErrUserNotFound
		}
		log.Error("failed to look up user for reset", slog.Any("error", err))
		return err
	}

	hash, err := cryptox.HashPassword(newPassword, s.BcryptCost)
	if err != nil {
		log.Error("failed to hash new password", slog.Any("error", err))
		return err
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		log.Error("failed to update password hash",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return err
	}

	log.Info("password reset completed", slog.String("user_id", user.ID))
	return nil
}

// CurrentUser returns the public projection for userID, read through the
// user:<id> cache keyspace.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (domain.PublicUser, error) {
	var pub domain.PublicUser
	if s.Cache.Get(ctx, cache.UserKey(userID), &pub) {
		return pub, nil
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PublicUser{}, ErrUserNotFound
		}
		return domain.PublicUser{}, err
	}

	s.Cache.Set(ctx, cache.UserKey(userID), user.Public(), s.CacheTTL)
	return user.Public(), nil
}
