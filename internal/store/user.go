package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// UserStore persists identities first seen in a verified token.
type UserStore interface {
	// Create saves a new user.
	// Returns ErrUserExists if the ID or email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by the identity provider's subject.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sqlx.Tx) UserStore
}
