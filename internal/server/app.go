// Package server initializes and runs the register service: it opens the
// database, applies migrations, wires the session store and services, and
// starts the HTTP server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-contrib/sessions/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vmatveev/registerd/internal/logging"
	"github.com/vmatveev/registerd/internal/server/config"
	"github.com/vmatveev/registerd/internal/server/httpapi"
	"github.com/vmatveev/registerd/internal/server/repositories/repomanager"
	"github.com/vmatveev/registerd/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := postgres.NewStore(db, []byte(cfg.SessionSecret))
	if err != nil {
		return nil, fmt.Errorf("session store init error: %w", err)
	}
	store.Options(httpapi.SessionOptions())

	us, err := services.NewUserService(db, m)
	if err != nil {
		return nil, fmt.Errorf("user service init error: %w", err)
	}
	rs := services.NewRegisterService(db, m)

	srv := httpapi.NewServer(cfg, logger, us, rs, store)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
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
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
