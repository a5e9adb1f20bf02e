package store

import (
	"context"
	"errors"

	"github.com/quayside/authd/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. It exposes sub-repositories to keep concerns
// tidy and testable.
type Store interface {
	Users() Users
	ResetTokens() ResetTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is the authoritative login-path lookup.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByEmailOrUsername serves the registration existence check.
	// Note this check and the subsequent insert are two separate calls with
	// no atomicity guarantee; the UNIQUE constraints on username and email
	// are the backstop for the concurrent-registration race.
	GetUserByEmailOrUsername(ctx context.Context, email, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID) and
	// returns the stored row including database-assigned timestamps.
	// A duplicate username or email surfaces as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// UpdatePasswordHash sets the password_hash (bcrypt) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
}

type ResetTokens interface {
	// CreateResetToken stores a new reset token record (digest only).
	CreateResetToken(ctx context.Context, t domain.ResetToken) error

	// GetActiveResetTokenByDigest returns a not-yet-expired token record by
	// its digest. Expired records are indistinguishable from absent ones.
	GetActiveResetTokenByDigest(ctx context.Context, digest string) (domain.ResetToken, error)

	// DeleteResetToken removes a token record by id (single-use consumption).
	DeleteResetToken(ctx context.Context, id string) error

	// DeleteExpiredResetTokens is housekeeping; expired tokens are already
	// unredeemable before this runs.
	DeleteExpiredResetTokens(ctx context.Context) error
}
