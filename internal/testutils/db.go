package testutils

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/platform/sqlstore"
	"github.com/phrazzld/tasks-api/internal/store"
	"github.com/stretchr/testify/require"
)

// InMemoryDatabaseURL is a private SQLite database that lives as long as its connection.
const InMemoryDatabaseURL = "sqlite::memory:"

// NewTestDB opens a fresh in-memory SQLite database with every migration applied.
// The database is closed when the test finishes.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	db, dialect, err := sqlstore.Open(ctx, InMemoryDatabaseURL, sqlstore.Options{})
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, sqlstore.Migrate(ctx, db.DB, dialect), "Failed to migrate test database")
	return db
}

// TestStores bundles the SQL stores over one connection.
type TestStores struct {
	Users    store.UserStore
	Projects store.ProjectStore
	Tags     store.TagStore
	Tasks    store.TaskStore
}

// NewTestStores creates every store over db with a discarding logger.
func NewTestStores(db store.DBTX) TestStores {
	logger := DiscardLogger()
	return TestStores{
		Users:    sqlstore.NewUserStore(db, logger),
		Projects: sqlstore.NewProjectStore(db, logger),
		Tags:     sqlstore.NewTagStore(db, logger),
		Tasks:    sqlstore.NewTaskStore(db, logger),
	}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
