// Package server initializes and runs the gophauth server: storage, password
// hashing, token signing, the HTTP API and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gin-gonic/gin"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	metrics     *metrics.Metrics
	userService *services.UserService
}

// newRepositoryManager is a seam for tests.
var newRepositoryManager = func(c *config.Config) (repomanager.RepositoryManager, error) {
	if c.UseMemoryStore {
		return repomanager.NewMemoryRepositoryManager(), nil
	}
	return repomanager.NewPostgresRepositoryManager(c.DatabaseDSN)
}

// NewApp wires every component from c. Errors wrapping
// common.ErrConfiguration mean the process must not start.
func NewApp(c *config.Config, logOut io.Writer) (*App, error) {
	logger := logging.New(logOut, c.LogLevel, c.LogFormat)

	hasher, err := password.NewHasher(c.PasswordConfig())
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewIssuer(c.TokenConfig())
	if err != nil {
		return nil, err
	}

	rm, err := newRepositoryManager(c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := metrics.New()

	us, err := services.NewUserService(rm, hasher, issuer, logger.With("module", "users"), m,
		services.Options{EqualizeMissTiming: c.EqualizeMissTiming})
	if err != nil {
		_ = rm.Close()
		return nil, err
	}

	return &App{config: c, logger: logger, repomanager: rm, metrics: m, userService: us}, nil
}

// Handler returns the HTTP handler serving the API.
func (app *App) Handler() *gin.Engine {
	return httpapi.NewRouter(app.userService, app.logger, app.repomanager.Ping, app.metrics.Handler())
}

// Prepare runs migrations and seeds the admin account if configured.
func (app *App) Prepare(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx); err != nil {
		return err
	}

	if app.config.HasAdminSeed() {
		created, err := app.userService.SeedAdmin(ctx, app.config.AdminUsername, app.config.AdminEmail, app.config.AdminPasswordHash)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if created {
			app.logger.Info(ctx, "Admin account created", "username", app.config.AdminUsername)
		}
	}
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	gin.SetMode(gin.ReleaseMode)
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.Handler(), app.logger, app.config.ShutdownTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run prepares storage and serves until a signal arrives or ctx ends.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	defer func() {
		if err := app.repomanager.Close(); err != nil {
			app.logger.Error(ctx, "close storage", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	if err := app.Prepare(ctx); err != nil {
		app.logger.Error(ctx, "startup failed", "error", err)
		return err
	}

	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return runErr
}
