package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/platform/sqlstore"
)

// openDatabase connects to the configured database. SQLite databases are migrated
// on open so that a local file or in-memory database is usable immediately;
// PostgreSQL schemas are managed with the migrate command.
func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, sqlstore.Dialect, error) {
	log := logger.FromContext(ctx)

	db, dialect, err := sqlstore.Open(ctx, cfg.Database.URL, sqlstore.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	log.Info("database connection established", slog.String("dialect", string(dialect)))

	if dialect == sqlstore.DialectSQLite {
		if err := sqlstore.Migrate(ctx, db.DB, dialect); err != nil {
			_ = db.Close()
			return nil, "", err
		}
	}
	return db, dialect, nil
}
