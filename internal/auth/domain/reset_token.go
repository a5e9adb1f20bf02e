package domain

import "time"

// ResetToken models a stored password-reset token record. Only the SHA-256
// fingerprint of the raw secret is persisted; the secret itself exists once,
// inside the reset link handed to the user. Records are single use: redeeming
// one deletes it. Expired records merely become unmatchable until
// housekeeping removes them.
type ResetToken struct {
	ID          string
	UserID      string
	TokenDigest string // deterministic fingerprint (base64url SHA-256)
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
