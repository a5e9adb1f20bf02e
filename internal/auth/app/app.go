package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quayside/authd/internal/auth/cache"
	httpapi "github.com/quayside/authd/internal/auth/http"
	"github.com/quayside/authd/internal/auth/mail"
	"github.com/quayside/authd/internal/auth/service"
	"github.com/quayside/authd/internal/auth/session"
	"github.com/quayside/authd/internal/auth/store"
	"github.com/quayside/authd/internal/auth/store/drivers/sqlite"
	"github.com/quayside/authd/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	rdb      redis.UniversalClient
	cache    *cache.Cache
	sessions *session.Manager
	mailer   mail.Sender

	// Services
	authService         *service.AuthService
	resetTokenService   *service.ResetTokenService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initRedis(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initMail()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close the Redis connection
	if err := app.rdb.Close(); err != nil {
		app.logger.Error("error closing redis client", "error", err)
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initRedis connects the Redis client backing both the user cache and the
// session store, and verifies it is reachable before the server starts.
func (app *Application) initRedis() error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("failed to connect to redis at %s: %w", app.cfg.RedisAddr, err)
	}
	app.rdb = rdb

	app.cache = cache.New(rdb)
	app.sessions = session.NewManager(
		rdb,
		app.cfg.SessionTTL,
		app.cfg.SessionCookieName,
		app.cfg.Env == "prod",
	)

	return nil
}

// initMail selects the outbound mail transport. Without an SMTP host the
// service logs reset emails instead of sending them, which is what you want
// in dev.
func (app *Application) initMail() {
	if app.cfg.SMTPHost == "" {
		app.mailer = &mail.LogSender{Logger: app.logger}
		app.logger.Info("no SMTP host configured, logging outbound mail")
		return
	}

	app.mailer = mail.NewSMTPSender(
		app.cfg.SMTPHost,
		app.cfg.SMTPPort,
		app.cfg.SMTPUsername,
		app.cfg.SMTPPassword,
		app.cfg.MailFrom,
	)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.resetTokenService = &service.ResetTokenService{
		Store: app.db,
		TTL:   app.cfg.ResetTokenTTL,
	}

	app.authService = &service.AuthService{
		Store:      app.db,
		Cache:      app.cache,
		Sessions:   app.sessions,
		Tokens:     app.resetTokenService,
		Mail:       app.mailer,
		ClientURL:  app.cfg.ClientURL,
		BcryptCost: app.cfg.BcryptCost,
		CacheTTL:   app.cfg.CacheTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.rdb,
		app.sessions,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
