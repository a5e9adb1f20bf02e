// Package session maps an authenticated request onto a server-side session
// record. The browser holds only an opaque, unguessable id in an HttpOnly
// cookie; the record itself lives in Redis under session:<id> with its own
// TTL, independent of the per-user cache entries.
//
// Unlike the cache package, session operations do not fail soft: Redis is
// authoritative for sessions, so a backend failure here aborts the request.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quayside/authd/internal/auth/domain"
	"github.com/quayside/authd/pkg/cryptox"
)

const (
	// DefaultTTL bounds a session's lifetime absent an explicit logout.
	DefaultTTL = 24 * time.Hour

	// DefaultCookieName is the session cookie written on login.
	DefaultCookieName = "authd_session"
)

// ErrNotFound reports that no live session exists for the presented id.
var ErrNotFound = errors.New("session: not found")

type Manager struct {
	rdb redis.UniversalClient

	TTL           time.Duration
	CookieName    string
	SecureCookies bool // set on prod deployments behind TLS
}

func NewManager(rdb redis.UniversalClient, ttl time.Duration, cookieName string, secure bool) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Manager{
		rdb:           rdb,
		TTL:           ttl,
		CookieName:    cookieName,
		SecureCookies: secure,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Create establishes a new session bound to userID and persists it with the
// manager's TTL. The returned session id is the only credential the client
// ever sees.
func (m *Manager) Create(ctx context.Context, userID string) (domain.Session, error) {
	id, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to generate session id: %w", err)
	}

	s := domain.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.write(ctx, s, m.TTL); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

// Get loads the session record for id. Returns ErrNotFound for unknown or
// expired ids.
func (m *Manager) Get(ctx context.Context, id string) (domain.Session, error) {
	data, err := m.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return domain.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return s, nil
}

// Save writes back a mutated session record (e.g. the views counter) without
// extending its remaining lifetime. The write is conditional on the record
// still existing, so a session that expired since it was loaded stays gone
// and Save reports ErrNotFound.
func (m *Manager) Save(ctx context.Context, s domain.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	err = m.rdb.SetArgs(ctx, sessionKey(s.ID), data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Destroy removes the session record. Destroying an absent session is a
// no-op, which makes logout idempotent.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if err := m.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

func (m *Manager) write(ctx context.Context, s domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := m.rdb.Set(ctx, sessionKey(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// SetCookie writes the session cookie for s onto the response.
func (m *Manager) SetCookie(w http.ResponseWriter, s domain.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.CookieName,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(m.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie instructs the client to drop the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// IDFromRequest extracts the session id from the request cookie, if present.
func (m *Manager) IDFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// FromRequest resolves the request's cookie to a live session record.
// Any failure, missing cookie included, reads as "no session".
func (m *Manager) FromRequest(ctx context.Context, r *http.Request) (domain.Session, bool) {
	id, ok := m.IDFromRequest(r)
	if !ok {
		return domain.Session{}, false
	}

	s, err := m.Get(ctx, id)
	if err != nil {
		return domain.Session{}, false
	}
	return s, true
}
