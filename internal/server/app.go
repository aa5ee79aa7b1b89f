// Package server wires the FalconTrade server together: database and
// migrations, the revocation backend, services, and the HTTP and gRPC
// endpoints, and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/falcontrade/internal/logging"
	"github.com/dmitrijs2005/falcontrade/internal/server/auth"
	"github.com/dmitrijs2005/falcontrade/internal/server/config"
	"github.com/dmitrijs2005/falcontrade/internal/server/httpapi"
	"github.com/dmitrijs2005/falcontrade/internal/server/metrics"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/falcontrade/internal/server/revocation"
	"github.com/dmitrijs2005/falcontrade/internal/server/services"
	"github.com/dmitrijs2005/falcontrade/internal/server/storage"

	gs "github.com/dmitrijs2005/falcontrade/internal/server/grpc"
)

// Version is reported by GET /version. Overridden at build time with -ldflags.
var Version = "v1.0"

var (
	sqlOpen              = sql.Open
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	newRedisClient       = revocation.NewRedisClient
	newPresigner         = func(ctx context.Context, c *config.Config) (services.Presigner, error) {
		return storage.NewS3Presigner(ctx, c)
	}
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	auth        *Auth
	purger      revocation.Purger
	httpHandler http.Handler
}

// Store bundles an open, migrated database with its repository manager.
type Store struct {
	DB          *sql.DB
	RepoManager repomanager.RepositoryManager
}

// OpenStore connects to PostgreSQL and applies pending migrations.
func OpenStore(ctx context.Context, c *config.Config) (*Store, error) {
	db, err := sqlOpen("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	return &Store{DB: db, RepoManager: rm}, nil
}

// Auth is the account service together with the token machinery it uses.
type Auth struct {
	Accounts *services.AccountService
	Tokens   *services.TokenService
	Registry revocation.Registry

	redis *redis.Client
}

// NewAuth builds the token service on the configured revocation backend and
// the account service on top of it.
func NewAuth(ctx context.Context, c *config.Config, st *Store, logger logging.Logger) (*Auth, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	registry, client, err := newRegistry(ctx, c, st)
	if err != nil {
		return nil, err
	}

	signer := auth.NewTokenSigner([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	tokens := services.NewTokenService(st.DB, st.RepoManager, signer, registry)
	hasher := auth.NewPasswordHasher(c.BcryptCost)

	return &Auth{
		Accounts: services.NewAccountService(st.DB, st.RepoManager, hasher, tokens, logger),
		Tokens:   tokens,
		Registry: registry,
		redis:    client,
	}, nil
}

// Close releases the Redis connection, if any.
func (a *Auth) Close() error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Close()
}

func newRegistry(ctx context.Context, c *config.Config, st *Store) (revocation.Registry, *redis.Client, error) {
	switch c.RevocationBackend {
	case config.RevocationBackendPostgres, "":
		return revocation.NewPostgresRegistry(st.DB, st.RepoManager), nil, nil
	case config.RevocationBackendRedis:
		client, err := newRedisClient(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return revocation.NewRedisRegistry(client), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown revocation backend %q", c.RevocationBackend)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	st, err := OpenStore(ctx, c)
	if err != nil {
		return nil, err
	}

	app, err := newApp(ctx, c, st, logger)
	if err != nil {
		_ = st.DB.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, st *Store, logger logging.Logger) (*App, error) {
	a, err := NewAuth(ctx, c, st, logger)
	if err != nil {
		return nil, err
	}

	presigner, err := newPresigner(ctx, c)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("s3 init error: %w", err)
	}

	handler := httpapi.NewHandler(httpapi.Deps{
		Accounts:    a.Accounts,
		Gate:        services.NewGate(a.Tokens),
		Listings:    services.NewListingService(st.DB, st.RepoManager),
		Discovery:   services.NewDiscoveryService(st.DB, st.RepoManager),
		Messages:    services.NewMessageService(st.DB, st.RepoManager),
		Attachments: services.NewAttachmentService(st.DB, st.RepoManager, presigner),
		Metrics:     metrics.New(),
		Logger:      logger,
		Version:     Version,
	})

	app := &App{
		config:      c,
		logger:      logger,
		db:          st.DB,
		auth:        a,
		httpHandler: handler.Routes(),
	}
	if p, ok := a.Registry.(revocation.Purger); ok {
		app.purger = p
	}
	return app, nil
}

// bootstrapAdmin ensures the configured administrator exists. Nothing happens
// when either the email or the password is unset.
func (app *App) bootstrapAdmin(ctx context.Context) (*models.Account, error) {
	if app.config.AdminEmail == "" || app.config.AdminPassword == "" {
		return nil, nil
	}
	account, created, err := app.auth.Accounts.EnsureAdmin(ctx, app.config.AdminEmail, app.config.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("admin bootstrap error: %w", err)
	}
	app.logger.Info(ctx, "admin account ready", "email", account.Email, "created", created)
	return account, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.httpHandler, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db, app.config.HealthCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or until one endpoint fails,
// then waits for every component to stop and releases connections.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if _, err := app.bootstrapAdmin(ctx); err != nil {
		app.close(ctx)
		return err
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.purger != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			revocation.NewPurgeLoop(app.purger, app.config.RevocationPurgeInterval, app.logger).Run(ctx)
		}()
	}

	wg.Wait()
	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
	return nil
}

func (app *App) close(ctx context.Context) {
	if err := app.auth.Close(); err != nil {
		app.logger.Warn(ctx, "redis close", "error", err.Error())
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err.Error())
	}
}
