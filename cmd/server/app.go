package main

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/phrazzld/tasklane-api/internal/config"
	"github.com/phrazzld/tasklane-api/internal/events"
	"github.com/phrazzld/tasklane-api/internal/ingest"
	"github.com/phrazzld/tasklane-api/internal/platform/gormdb"
	"github.com/phrazzld/tasklane-api/internal/service"
	"github.com/phrazzld/tasklane-api/internal/service/auth"
	"github.com/phrazzld/tasklane-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *gorm.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService  auth.JWTService
	userService service.UserService
	taskService service.TaskService

	bus *events.Bus
}

// newApplication opens the database and wires every dependency.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := gormdb.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	app, err := newApplicationWithDB(cfg, logger, db)
	if err != nil {
		_ = gormdb.Close(db)
		return nil, err
	}
	return app, nil
}

// newApplicationWithDB wires the application around an open database.
func newApplicationWithDB(cfg *config.Config, logger *slog.Logger, db *gorm.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	taskStore := gormdb.NewTaskStore(db, logger, cfg.Upload.BatchSize)
	app.taskStore = taskStore
	app.userStore = gormdb.NewUserStore(db, logger)

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	app.userService, err = service.NewUserService(app.userStore, hasher, hasher, app.jwtService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize user service: %w", err)
	}

	app.bus = events.NewBus(logger,
		events.WithBufferSize(cfg.Stream.BufferSize),
		events.WithHeartbeatInterval(cfg.Stream.HeartbeatInterval))

	pipeline, err := ingest.NewPipeline(taskStore, ingest.Options{
		MaxRows:           cfg.Upload.MaxRows,
		MaxReportedErrors: cfg.Upload.MaxReportedErrors,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize import pipeline: %w", err)
	}

	app.taskService, err = service.NewTaskService(taskStore, pipeline, app.bus, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task service: %w", err)
	}

	return app, nil
}

// cleanup releases the database connection.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := gormdb.Close(app.db); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
	app.db = nil
}
