package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// TagStore defines the interface for tag persistence.
type TagStore interface {
	// Create saves a new tag. Returns ErrTagLabelExists when the
	// case-insensitive unique index rejects the label.
	Create(ctx context.Context, tag *domain.Tag) error

	// GetByID returns ErrTagNotFound if the tag is missing or owned by another user.
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Tag, error)

	// FindByLabel looks a tag up by case-insensitive label.
	// Returns ErrTagNotFound when there is none.
	FindByLabel(ctx context.Context, userID, label string) (*domain.Tag, error)

	// List returns one page of the user's tags ordered by label, and the total count.
	List(ctx context.Context, userID string, page domain.PageRequest) ([]domain.Tag, int, error)

	// Update persists label and color. Returns ErrTagNotFound if no row matched.
	Update(ctx context.Context, tag *domain.Tag) error

	// Delete removes the tag; its task associations are removed by cascade.
	// Returns ErrTagNotFound if no row matched.
	Delete(ctx context.Context, userID string, id uuid.UUID) error

	// CountTasks returns the number of tasks carrying each tag.
	CountTasks(ctx context.Context, tagIDs []uuid.UUID) (map[uuid.UUID]int, error)

	WithTx(tx *sqlx.Tx) TagStore
}
