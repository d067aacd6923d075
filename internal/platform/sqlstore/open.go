package sqlstore

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"

	// Register the pgx driver with database/sql as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dialect identifies the SQL database behind a connection.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Options tune the connection pool. Zero values keep the defaults.
type Options struct {
	MaxOpenConns int
}

// ParseURL returns the dialect, driver name and driver DSN for a database URL.
// PostgreSQL URLs (postgres:// or postgresql://) are passed through; SQLite URLs
// have the form sqlite:<path> or sqlite::memory:.
func ParseURL(url string) (Dialect, string, string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, "pgx", url, nil
	case strings.HasPrefix(url, "sqlite:"):
		dsn := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite:"), "//")
		if dsn == "" {
			return "", "", "", fmt.Errorf("sqlite url %q has no path", url)
		}
		return DialectSQLite, "sqlite", dsn, nil
	default:
		return "", "", "", fmt.Errorf("unsupported database url scheme")
	}
}

// Open connects to the database at url, configures the pool and verifies the
// connection with a ping.
func Open(ctx context.Context, url string, opts Options) (*sqlx.DB, Dialect, error) {
	dialect, driver, dsn, err := ParseURL(url)
	if err != nil {
		return nil, "", err
	}

	if dialect == DialectSQLite {
		if err := registerSQLiteFunctions(); err != nil {
			return nil, "", err
		}
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database connection: %w", err)
	}

	switch dialect {
	case DialectSQLite:
		// One connection: an in-memory database exists per connection, and SQLite
		// serializes writers anyway.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	default:
		maxOpen := opts.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 10
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen / 2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	if dialect == DialectSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, "", fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
	}

	return db, dialect, nil
}

var (
	sqliteFuncsOnce sync.Once
	sqliteFuncsErr  error
)

// registerSQLiteFunctions replaces SQLite's ASCII-only lower() with a Unicode-aware
// one on every connection opened afterwards. Case-insensitive uniqueness indexes,
// name lookups and task search all go through lower(), and search terms are folded
// with strings.ToLower, so both sides must fold the same way.
func registerSQLiteFunctions() error {
	sqliteFuncsOnce.Do(func() {
		if err := sqlite.RegisterDeterministicScalarFunction("lower", 1, unicodeLower); err != nil {
			sqliteFuncsErr = fmt.Errorf("failed to register sqlite lower(): %w", err)
		}
	})
	return sqliteFuncsErr
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return fmt.Sprint(v), nil
	}
}
