// Package server wires the provider server: configuration, PostgreSQL,
// account and record services, and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/clinicauth/internal/logging"
	"github.com/dmitrijs2005/clinicauth/internal/server/config"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/clinicauth/internal/server/services"

	gs "github.com/dmitrijs2005/clinicauth/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = func(ctx context.Context, dsn string, m repomanager.RepositoryManager) (*sql.DB, error) {
	return repomanager.Open(ctx, dsn, m)
}

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	accountService *services.AccountService
	recordService  *services.RecordService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, "json", c.LogLevel)

	m := repomanager.NewPostgresRepositoryManager()
	db, err := openDB(ctx, c.DatabaseDSN, m)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		accountService: services.NewAccountService(db, m, c),
		recordService:  services.NewRecordService(db, m),
	}, nil
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accountService, app.recordService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// SetDisabled blocks or unblocks sign-in for email.
func (app *App) SetDisabled(ctx context.Context, email string, disabled bool) error {
	if err := app.accountService.SetDisabled(ctx, email, disabled); err != nil {
		return fmt.Errorf("set disabled for %s: %w", email, err)
	}
	app.logger.Info(ctx, "account updated", "email", email, "disabled", disabled)
	return nil
}

func (app *App) Close() error {
	return app.db.Close()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
}
