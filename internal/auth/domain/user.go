package domain

import "time"

// User is the persistent account record. PasswordHash never leaves the
// service boundary: API responses and the by-id cache projection carry
// PublicUser instead.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the externally visible projection of a user. It is what gets
// cached under the user:<id> keyspace and returned from the API.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials is the full projection cached under user:email:<email>. It
// exists solely to serve the login lookup without a store round-trip and is
// never serialized into an API response.
type Credentials struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns the cacheable public projection of u.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Credentials returns the full login-path projection of u.
func (u User) Credentials() Credentials {
	return Credentials{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}
