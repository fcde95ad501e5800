package app

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/gitpulse-io/gitpulse/api"
	"github.com/gitpulse-io/gitpulse/config"
	"github.com/gitpulse-io/gitpulse/db"
	"github.com/gitpulse-io/gitpulse/internal/server"
	"github.com/gitpulse-io/gitpulse/pkg/accesslog"
	"github.com/gitpulse-io/gitpulse/pkg/log"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

var (
	ErrApplicationStarted = errors.New("already started")
	ErrApplicationStopped = errors.New("already stopped")
)

type Application struct {
	cfg *config.Config

	mux     sync.Mutex
	started bool

	stop chan struct{}

	log *zap.SugaredLogger
	db  *db.DB
	srv *server.Server
}

func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		cfg:  cfg,
		stop: make(chan struct{}),
	}

	err := app.initialize()
	if err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) initialize() error {
	cfg := app.cfg

	logger, err := log.NewZapLogger(&cfg.Log)
	if err != nil {
		return err
	}
	app.log = logger

	sqlDB, err := db.NewSqlDB(cfg.Database)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		app.log.Warnf("database is unreachable at startup: %v", err)
	}

	database, err := db.NewDB(sqlDB, logger)
	if err != nil {
		return err
	}
	app.db = database

	accessLogger := accesslog.NewLogger(cfg.Log.Format, os.Stdout)

	handler := api.NewAPI(api.Options{
		Config: cfg,
		Events: database.Events,
		Ping:   database.Ping,
		Stats:  database.Stats,
		Middlewares: []mux.MiddlewareFunc{
			accesslog.NewMiddleware(accessLogger),
		},
	}).Handler()

	app.srv = server.NewServer(cfg.Server, handler)

	return nil
}

func (app *Application) Start() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if app.started {
		return ErrApplicationStarted
	}

	go func() {
		if err := app.srv.Start(); err != nil {
			app.log.Errorf("failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	app.started = true
	app.log.Infof("gitpulse started")

	return nil
}

func (app *Application) Stop() error {
	app.mux.Lock()
	defer app.mux.Unlock()

	if !app.started {
		return ErrApplicationStopped
	}

	app.log.Infof("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	if err := app.srv.Stop(ctx); err != nil {
		app.log.Errorf("server shutdown: %v", err)
	}
	if err := app.db.Close(); err != nil {
		app.log.Errorf("closing database: %v", err)
	}

	app.started = false
	close(app.stop)

	return nil
}

func (app *Application) Wait() {
	<-app.stop
}
