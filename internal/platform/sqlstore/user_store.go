package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

// UserStore implements store.UserStore.
type UserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewUserStore creates a UserStore over a database connection or transaction.
// If logger is nil, a default logger will be used.
func NewUserStore(db store.DBTX, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*UserStore)(nil)

type userRow struct {
	ID          string         `db:"id"`
	Email       sql.NullString `db:"email"`
	DisplayName string         `db:"display_name"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:          r.ID,
		Email:       r.Email.String,
		DisplayName: r.DisplayName,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

// Create inserts the user. An empty email is stored as NULL so that users without
// an email do not collide on the unique index.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return err
	}

	email := sql.NullString{String: user.Email, Valid: user.Email != ""}
	query := s.db.Rebind(`
		INSERT INTO users (id, email, display_name, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if _, err := s.db.ExecContext(ctx, query, user.ID, email, user.DisplayName, user.CreatedAt.UTC()); err != nil {
		if IsUniqueViolation(err) {
			log.Debug("user already exists", slog.String("user_id", user.ID))
			return store.ErrUserExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID))
		return MapError(err, domain.ResourceUser, "create")
	}

	log.Info("user provisioned", slog.String("user_id", user.ID))
	return nil
}

// GetByID returns store.ErrUserNotFound if the user does not exist.
func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var row userRow
	query := s.db.Rebind(`SELECT id, email, display_name, created_at FROM users WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
			slog.String("error", err.Error()),
			slog.String("user_id", id))
		return nil, MapError(err, domain.ResourceUser, "get")
	}
	return row.toDomain(), nil
}

func (s *UserStore) WithTx(tx *sqlx.Tx) store.UserStore {
	return &UserStore{db: tx, logger: s.logger}
}
