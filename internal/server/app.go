// Package server initializes and runs the pixelboard server. It opens
// the database, runs migrations, wires services and transport, and
// handles graceful shutdown.
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

	"github.com/dmitrijs2005/pixelboard/internal/logging"
	"github.com/dmitrijs2005/pixelboard/internal/server/config"
	"github.com/dmitrijs2005/pixelboard/internal/server/hackatime"
	"github.com/dmitrijs2005/pixelboard/internal/server/httpapi"
	"github.com/dmitrijs2005/pixelboard/internal/server/notifier"
	"github.com/dmitrijs2005/pixelboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pixelboard/internal/server/services"
	"github.com/dmitrijs2005/pixelboard/internal/server/snapshot"
)

const notifierBuffer = 64

type App struct {
	config           *config.Config
	logger           logging.Logger
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	placementService *services.PlacementService
	projectService   *services.ProjectService
	hub              *notifier.Hub
	exporter         *snapshot.Exporter
}

func NewApp(cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(cfg.OverwriteAllowed)
	if err != nil {
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}

	hub := notifier.NewHub(notifierBuffer, logger)
	timeSource := hackatime.NewClient(cfg.HackatimeBaseURL, cfg.UpstreamTimeout, logger)

	budget := services.NewBudgetService(db, rm, cfg, logger)
	ps := services.NewPlacementService(db, rm, budget, timeSource, hub, cfg, logger)
	js := services.NewProjectService(db, rm, logger)

	return &App{
		config:           cfg,
		logger:           logger,
		db:               db,
		repomanager:      rm,
		placementService: ps,
		projectService:   js,
		hub:              hub,
		exporter:         snapshot.NewExporter(ps, cfg, logger),
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := httpapi.NewHTTPServer(app.config.EndpointAddr, app.logger,
		app.placementService, app.projectService, app.hub, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		app.logger.Error(ctx, "migration error", "error", err.Error())
		return
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.exporter.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
