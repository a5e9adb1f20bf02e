package authd_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/quayside/authd/internal/auth/cache"
	httpapi "github.com/quayside/authd/internal/auth/http"
	"github.com/quayside/authd/internal/auth/service"
	"github.com/quayside/authd/internal/auth/session"
	"github.com/quayside/authd/internal/auth/store/drivers/sqlite"
)

/*
 * End-to-end test of the full auth workflow against a real Redis container:
 * register, login, authenticated reads, the view counter, the password-reset
 * round trip, and logout. The SQLite store runs on a temp file and the HTTP
 * stack is the production router.
 */

// mailbox captures outbound reset mail in place of an SMTP relay.
type mailbox struct {
	bodies []string
}

func (m *mailbox) Send(ctx context.Context, to, subject, body string) error {
	m.bodies = append(m.bodies, body)
	return nil
}

func (m *mailbox) lastResetToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.bodies)

	body := m.bodies[len(m.bodies)-1]
	i := strings.LastIndex(body, "/reset-password/")
	require.GreaterOrEqual(t, i, 0)
	return body[i+len("/reset-password/"):]
}

func setupRedisContainer(t *testing.T) goredis.UniversalClient {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := goredis.ParseURL(uri)
	require.NoError(t, err)

	rdb := goredis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func setupService(t *testing.T, rdb goredis.UniversalClient) (*httptest.Server, *mailbox) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "authd-e2e.db")
	st, err := sqlite.NewStore("file:" + dbPath + "?_busy_timeout=5000&_journal_mode=WAL")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sessions := session.NewManager(rdb, 24*time.Hour, session.DefaultCookieName, false)
	mail := &mailbox{}

	router := httpapi.NewRouter("e2e", st, rdb, sessions, slog.New(slog.DiscardHandler))
	router.AuthService = &service.AuthService{
		Store:      st,
		Cache:      cache.New(rdb),
		Sessions:   sessions,
		Tokens:     &service.ResetTokenService{Store: st},
		Mail:       mail,
		ClientURL:  "http://localhost:3000",
		BcryptCost: 4,
	}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, mail
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp.StatusCode, data
}

func TestAuthWorkflowEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	rdb := setupRedisContainer(t)
	srv, mail := setupService(t, rdb)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	// Register and log in.
	status, body := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/register", map[string]string{
		"username": "zoe",
		"email":    "zoe@example.com",
		"password": "initial-password",
	})
	require.Equal(t, http.StatusCreated, status, "register: %s", body)

	status, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", map[string]string{
		"email":    "zoe@example.com",
		"password": "initial-password",
	})
	require.Equal(t, http.StatusOK, status, "login: %s", body)

	// Session-backed identity.
	status, body = doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
	var me struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(body, &me))
	require.Equal(t, "zoe", me.Username)
	require.Equal(t, "zoe@example.com", me.Email)

	// View counter rides the same session cookie.
	status, body = doJSON(t, client, http.MethodGet, srv.URL+"/", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Number of views: 1", string(body))

	status, body = doJSON(t, client, http.MethodGet, srv.URL+"/", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Number of views: 2", string(body))

	// Password reset round trip.
	status, body = doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/forgot-password", map[string]string{
		"email": "zoe@example.com",
	})
	require.Equal(t, http.StatusOK, status, "forgot-password: %s", body)

	token := mail.lastResetToken(t)
	status, body = doJSON(t, client, http.MethodPut, srv.URL+"/api/auth/reset-password/"+token, map[string]string{
		"password": "rotated-password",
	})
	require.Equal(t, http.StatusOK, status, "reset-password: %s", body)

	// The consumed token cannot be replayed.
	status, _ = doJSON(t, client, http.MethodPut, srv.URL+"/api/auth/reset-password/"+token, map[string]string{
		"password": "again-password",
	})
	require.Equal(t, http.StatusBadRequest, status)

	// Log out and confirm the session is gone.
	status, _ = doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	// Fresh client logs in with the rotated password only. The credentials
	// cache still holds the pre-reset hash, so flush it the way an expiring
	// TTL eventually would.
	require.NoError(t, rdb.Del(context.Background(), "user:email:zoe@example.com").Err())

	fresh := &http.Client{}
	status, _ = doJSON(t, fresh, http.MethodPost, srv.URL+"/api/auth/login", map[string]string{
		"email":    "zoe@example.com",
		"password": "initial-password",
	})
	require.Equal(t, http.StatusUnauthorized, status)

	status, body = doJSON(t, fresh, http.MethodPost, srv.URL+"/api/auth/login", map[string]string{
		"email":    "zoe@example.com",
		"password": "rotated-password",
	})
	require.Equal(t, http.StatusOK, status, "login after reset: %s", body)
}

func TestHealthProbesEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	rdb := setupRedisContainer(t)
	srv, _ := setupService(t, rdb)

	client := &http.Client{}

	status, body := doJSON(t, client, http.MethodGet, srv.URL+"/livez", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(body), `"status":"ok"`)

	status, body = doJSON(t, client, http.MethodGet, srv.URL+"/readyz", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(body), `"database":"ok"`)
	require.Contains(t, string(body), `"redis":"ok"`)
}
