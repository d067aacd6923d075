package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
)

// TxFn is one unit of work. Stores built over tx see each other's writes.
type TxFn func(ctx context.Context, tx *sqlx.Tx) error

// RunInTransaction commits the writes of fn when it returns nil and discards them
// otherwise. fn's error is returned unchanged so callers can still match it with
// errors.Is and errors.As. A panic in fn rolls back and then propagates.
func RunInTransaction(ctx context.Context, db *sqlx.DB, fn TxFn) (err error) {
	log := logger.FromContext(ctx).With(slog.String("component", "transaction"))

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("begin failed", slog.String("error", redact.Error(err)))
		return NewStoreError("transaction", "begin", "failed to begin transaction", err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		log.Error("unit of work panicked, rolling back", slog.Any("panic", p))
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("rollback after panic failed", slog.String("error", redact.Error(rbErr)))
		}
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		return rollback(log, tx, err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("commit failed", slog.String("error", redact.Error(err)))
		return NewStoreError("transaction", "commit", "failed to commit transaction", err)
	}
	return nil
}

// rollback discards tx after cause. A failed rollback is joined onto cause.
func rollback(log *slog.Logger, tx *sqlx.Tx, cause error) error {
	rbErr := tx.Rollback()
	if rbErr == nil {
		log.Debug("rolled back", slog.String("cause", redact.Error(cause)))
		return cause
	}
	log.Error("rollback failed",
		slog.String("cause", redact.Error(cause)),
		slog.String("error", redact.Error(rbErr)))
	return errors.Join(cause, NewStoreError("transaction", "rollback", "failed to roll back transaction", rbErr))
}
