package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/sqlstore"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sqlx.DB
	dialect sqlstore.Dialect

	userStore    store.UserStore
	projectStore store.ProjectStore
	tagStore     store.TagStore
	taskStore    store.TaskStore

	keySet   *auth.KeySetCache
	resolver auth.TokenResolver

	projectService service.ProjectService
	tagService     service.TagService
	taskService    service.TaskService
}

// newApplication creates a new application instance with all dependencies initialized.
// keys is the identity provider's key source; nil selects the configured JWKS URL.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *sqlx.DB,
	dialect sqlstore.Dialect,
	keys auth.KeySource,
) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		dialect: dialect,
	}

	app.userStore = sqlstore.NewUserStore(db, logger)
	app.projectStore = sqlstore.NewProjectStore(db, logger)
	app.tagStore = sqlstore.NewTagStore(db, logger)
	app.taskStore = sqlstore.NewTaskStore(db, logger)

	if keys == nil {
		keys = auth.NewHTTPKeySource(cfg.Auth.JWKSURL(), cfg.Auth.JWKSFetchTimeout())
	}
	app.keySet = auth.NewKeySetCache(keys, cfg.Auth.JWKSCacheTTL(), cfg.Auth.JWKSMaxKeys,
		auth.WithMinRefetchInterval(cfg.Auth.JWKSMinRefetch()))

	verifier, err := auth.NewTokenVerifier(app.keySet, auth.VerifierConfig{
		Algorithms: cfg.Auth.Algorithms,
		Issuer:     cfg.Auth.Issuer(),
		Audience:   cfg.Auth.Issuer(),
		Leeway:     cfg.Auth.Leeway(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}
	app.resolver, err = auth.NewResolver(verifier, app.userStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create token resolver: %w", err)
	}
	logger.Info("token authentication configured",
		slog.String("jwks_url", cfg.Auth.JWKSURL()),
		slog.Duration("jwks_cache_ttl", cfg.Auth.JWKSCacheTTL()),
		slog.Any("algorithms", cfg.Auth.Algorithms))

	app.projectService, err = service.NewProjectService(db, app.projectStore, app.taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create project service: %w", err)
	}
	app.tagService, err = service.NewTagService(db, app.tagStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag service: %w", err)
	}
	app.taskService, err = service.NewTaskService(db, app.taskStore, app.projectStore, app.tagStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
