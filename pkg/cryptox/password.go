package cryptox

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when no explicit cost is
// configured. Matches the usual interactive-login budget.
const DefaultCost = 10

// HashPassword hashes a plaintext password with bcrypt at the given cost.
// The salt is generated internally and embedded in the output, so hashing
// the same password twice never yields the same string. A cost below
// bcrypt.MinCost falls back to DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// bcrypt hash. Malformed or truncated hashes simply verify as false; this
// function never panics and never leaks why the comparison failed.
func VerifyPassword(password, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}
