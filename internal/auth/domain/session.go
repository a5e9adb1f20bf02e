package domain

import "time"

// Session is the server-side record behind the session cookie. It lives in
// Redis keyed by the opaque session id, with a TTL independent of the
// per-user cache entries.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Views     int       `json:"views"` // session-scoped request counter
	CreatedAt time.Time `json:"created_at"`
}
