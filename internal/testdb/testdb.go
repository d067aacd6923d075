package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/platform/sqlstore"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds connecting to and migrating the test database.
const TestTimeout = 30 * time.Second

// Environment variables consulted for the test database, in order.
const (
	EnvDatabaseURL     = "DATABASE_URL"
	EnvTestDatabaseURL = "TASKS_TEST_DATABASE_URL"
)

// GetTestDatabaseURL returns the first non-empty database URL from the environment.
func GetTestDatabaseURL() string {
	for _, name := range []string{EnvDatabaseURL, EnvTestDatabaseURL} {
		if url := os.Getenv(name); url != "" {
			return url
		}
	}
	return ""
}

// IsIntegrationTestEnvironment reports whether a PostgreSQL test database is configured.
func IsIntegrationTestEnvironment() bool {
	dialect, _, _, err := sqlstore.ParseURL(GetTestDatabaseURL())
	return err == nil && dialect == sqlstore.DialectPostgres
}

// Open connects to the configured PostgreSQL database and applies every migration.
// The test is skipped when no database is configured. The connection is closed
// when the test finishes.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	if !IsIntegrationTestEnvironment() {
		t.Skip("PostgreSQL integration tests need DATABASE_URL set to a postgres:// URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, dialect, err := sqlstore.Open(ctx, GetTestDatabaseURL(), sqlstore.Options{MaxOpenConns: 4})
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, sqlstore.Migrate(ctx, db.DB, dialect), "Failed to migrate test database")
	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sqlx.DB, fn func(t *testing.T, tx *sqlx.Tx)) {
	t.Helper()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		// sql.ErrTxDone is expected when fn already ended the transaction.
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
