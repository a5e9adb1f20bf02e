package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quayside/authd/internal/auth/service"
	"github.com/quayside/authd/internal/auth/session"
	"github.com/quayside/authd/internal/auth/store"
	"github.com/quayside/authd/pkg/httpx"
	"github.com/quayside/authd/pkg/slogx"

	_ "github.com/quayside/authd/api/authd" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	rdb   redis.UniversalClient

	Sessions    *session.Manager
	AuthService *service.AuthService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	rdb redis.UniversalClient,
	sessions *session.Manager,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		rdb:          rdb,
		Sessions:     sessions,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		AttachSession(r.Sessions),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			authd API
//	@version		0.1.0
//	@description	Session-backed authentication service: registration, login/logout via
//	@description	server-side sessions, and single-use password-reset tokens. Authenticated
//	@description	requests carry an opaque session id in an HttpOnly cookie.
//
//	@contact.name	Quayside Engineering
//	@contact.url	https://github.com/quayside/authd
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	r.Mux.Handle("POST /api/auth/register", &RegisterHandler{Auth: r.AuthService})
	r.Mux.Handle("POST /api/auth/login", &LoginHandler{Auth: r.AuthService, Sessions: r.Sessions})
	r.Mux.Handle("POST /api/auth/logout", &LogoutHandler{Auth: r.AuthService, Sessions: r.Sessions})
	r.Mux.Handle("POST /api/auth/forgot-password", &ForgotPasswordHandler{Auth: r.AuthService})
	r.Mux.Handle("PUT /api/auth/reset-password/{token}", &ResetPasswordHandler{Auth: r.AuthService})

	// Requires an authenticated session (attached by the global chain).
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(&MeHandler{Auth: r.AuthService},
			RequireSession(),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /{$}", &ViewsHandler{Sessions: r.Sessions})
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.rdb))
}
